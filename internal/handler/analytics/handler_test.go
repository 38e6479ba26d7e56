package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myabroadportal/portal/backend/internal/model/funnel"
	analyticsService "github.com/myabroadportal/portal/backend/internal/service/analytics"
	funnelService "github.com/myabroadportal/portal/backend/internal/service/funnel"
	"github.com/myabroadportal/portal/backend/internal/store/memory"
)

func TestFunnelReport(t *testing.T) {
	repo := memory.NewFunnelRepo()
	require.NoError(t, repo.Hit(context.Background(), "quiz", funnel.QuestionStep("reading-inference"), "r1"))
	require.NoError(t, repo.Hit(context.Background(), "quiz", "gate", "r1"))

	store := funnel.NewMemoryStore([]funnel.Definition{
		funnelService.QuizDefinition(0),
		funnelService.MatchmakerDefinition(0, 0),
	})
	r := chi.NewRouter()
	New(analyticsService.NewService(repo, nil), store, nil).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/funnel?kind=quiz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var reports []analyticsService.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "quiz", reports[0].Funnel)
	require.Len(t, reports[0].Steps, 13)
	assert.Equal(t, 1, reports[0].Steps[0].Count)
	assert.Equal(t, 1, reports[0].Steps[11].Count)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/funnel", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reports))
	assert.Len(t, reports, 2)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/funnel?kind=nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
