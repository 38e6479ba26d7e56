package funnel

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/myabroadportal/portal/backend/internal/logger"
	"github.com/myabroadportal/portal/backend/internal/model/funnel"
	funnelService "github.com/myabroadportal/portal/backend/internal/service/funnel"
	"github.com/myabroadportal/portal/backend/pkg/utils"
)

// Handler funnel服务的HTTP处理器
type Handler struct {
	funnels *funnelService.Service
	logger  *zap.Logger
}

// New 创建funnel处理器
func New(funnels *funnelService.Service, log *zap.Logger) *Handler {
	return &Handler{
		funnels: funnels,
		logger:  logger.OrNop(log).Named("funnel-handler"),
	}
}

// RegisterRoutes 注册funnel相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleListFunnels)
	r.Post("/{kind}/runs", h.handleStartRun)
	r.Route("/runs/{runID}", func(run chi.Router) {
		run.Get("/", h.handleGetRun)
		run.Delete("/", h.handleCloseRun)
		run.Post("/answer", h.handleSelect)
		run.Post("/next", h.handleNext)
		run.Post("/contact", h.handleContact)
		run.Get("/stream", h.handleStream)
	})
}

// handleListFunnels 列出所有funnel
func (h *Handler) handleListFunnels(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.funnels.Definitions())
}

func (h *Handler) handleStartRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.funnels.Start(r.Context(), funnel.Kind(chi.URLParam(r, "kind")))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, run)
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.funnels.Get(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, run)
}

func (h *Handler) handleCloseRun(w http.ResponseWriter, r *http.Request) {
	if err := h.funnels.Close(r.Context(), chi.URLParam(r, "runID")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Index *int `json:"index"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil || payload.Index == nil {
		utils.RespondError(w, http.StatusBadRequest, "index is required")
		return
	}

	run, err := h.funnels.Select(r.Context(), chi.URLParam(r, "runID"), *payload.Index)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, run)
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	run, err := h.funnels.Next(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, run)
}

func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	run, err := h.funnels.SubmitContact(r.Context(), chi.URLParam(r, "runID"), payload.Name, payload.Phone)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, run)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, funnelService.ErrRunNotFound), errors.Is(err, funnelService.ErrUnknownFunnel):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, funnelService.ErrNoAnswer),
		errors.Is(err, funnelService.ErrInvalidOption),
		errors.Is(err, funnelService.ErrContactRequired):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, funnelService.ErrWrongStage):
		utils.RespondError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("funnel request failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
