package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myabroadportal/portal/backend/internal/model/lead"
)

func TestFunnelRepoCountsDistinctRuns(t *testing.T) {
	ctx := context.Background()
	r := NewFunnelRepo()

	require.NoError(t, r.Hit(ctx, "quiz", "gate", "a"))
	require.NoError(t, r.Hit(ctx, "quiz", "gate", "a"))
	require.NoError(t, r.Hit(ctx, "quiz", "gate", "b"))
	require.NoError(t, r.Hit(ctx, "matchmaker", "gate", "c"))

	counts, err := r.Counts(ctx, "quiz")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"gate": 2}, counts)

	counts, err = r.Counts(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestLeadRepoList(t *testing.T) {
	r := NewLeadRepo()
	require.NoError(t, r.SaveLead(lead.Record{Name: "a"}))
	require.NoError(t, r.SaveLead(lead.Record{Name: "b"}))

	got := r.List()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
}
