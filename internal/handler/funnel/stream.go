package funnel

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/myabroadportal/portal/backend/internal/model/funnel"
	"github.com/myabroadportal/portal/backend/pkg/utils"
)

const heartbeatInterval = 15 * time.Second

// handleStream 先发送当前 run，之后每次变化发送一个 "run" 事件，
// 直到 run 到达 result、被关闭或客户端断开。
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	updates, cancel, err := h.funnels.Subscribe(runID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	defer cancel()

	current, err := h.funnels.Get(r.Context(), runID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	if err := utils.SendSSEEvent(w, flusher, "run", current); err != nil {
		return
	}
	if current.Stage == funnel.StageResult {
		return
	}

	ctx := r.Context()
	h.logger.Debug("opening funnel stream", zap.String("runId", runID))
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("closing funnel stream", zap.String("runId", runID))
			return
		case run, open := <-updates:
			if !open {
				_ = utils.SendSSEEvent(w, flusher, "closed", map[string]string{"runId": runID})
				return
			}
			if err := utils.SendSSEEvent(w, flusher, "run", run); err != nil {
				return
			}
			if run.Stage == funnel.StageResult {
				return
			}
		case t := <-ticker.C:
			if err := utils.SendSSEEvent(w, flusher, "heartbeat", map[string]string{"time": t.UTC().Format(time.RFC3339)}); err != nil {
				return
			}
		}
	}
}
