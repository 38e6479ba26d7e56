package analytics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/myabroadportal/portal/backend/internal/logger"
	"github.com/myabroadportal/portal/backend/internal/model/funnel"
	analyticsService "github.com/myabroadportal/portal/backend/internal/service/analytics"
	"github.com/myabroadportal/portal/backend/pkg/utils"
)

// Handler 漏斗到达报表的HTTP处理器
type Handler struct {
	analytics *analyticsService.Service
	funnels   funnel.Store
	logger    *zap.Logger
}

func New(analytics *analyticsService.Service, funnels funnel.Store, log *zap.Logger) *Handler {
	return &Handler{
		analytics: analytics,
		funnels:   funnels,
		logger:    logger.OrNop(log).Named("analytics-handler"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/funnel", h.handleFunnelReport)
}

// handleFunnelReport 为每个漏斗返回一份报表，指定 kind 时只返回该漏斗。
func (h *Handler) handleFunnelReport(w http.ResponseWriter, r *http.Request) {
	defs := h.funnels.List()
	if kind := r.URL.Query().Get("kind"); kind != "" {
		def, ok := h.funnels.FindByKind(funnel.Kind(kind))
		if !ok {
			utils.RespondError(w, http.StatusNotFound, "unknown funnel")
			return
		}
		defs = []funnel.Definition{def}
	}

	reports := make([]analyticsService.Report, 0, len(defs))
	for _, def := range defs {
		report, err := h.analytics.Report(r.Context(), string(def.Kind), def.Steps())
		if err != nil {
			h.logger.Error("build funnel report failed", zap.String("funnel", string(def.Kind)), zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "analytics unavailable")
			return
		}
		reports = append(reports, report)
	}
	utils.RespondJSON(w, http.StatusOK, reports)
}
