package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	analyticsHandler "github.com/myabroadportal/portal/backend/internal/handler/analytics"
	"github.com/myabroadportal/portal/backend/internal/handler/chat"
	"github.com/myabroadportal/portal/backend/internal/handler/funnel"
	middlewarePkg "github.com/myabroadportal/portal/backend/internal/middleware"
	funnelModel "github.com/myabroadportal/portal/backend/internal/model/funnel"
	analyticsService "github.com/myabroadportal/portal/backend/internal/service/analytics"
	chatService "github.com/myabroadportal/portal/backend/internal/service/chat"
	funnelService "github.com/myabroadportal/portal/backend/internal/service/funnel"
	"github.com/myabroadportal/portal/backend/pkg/utils"
)

// Services 路由依赖的服务集合
type Services struct {
	Chat      *chatService.Service
	Funnels   *funnelService.Service
	Store     funnelModel.Store
	Analytics *analyticsService.Service
	Logger    *zap.Logger

	// AllowedOrigins 跨域与 websocket 握手的来源白名单
	AllowedOrigins []string
}

// NewRouter 把 HTTP 路由接到核心服务上
func NewRouter(svc Services) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(svc.AllowedOrigins))

	chatHandler := chat.New(svc.Chat, svc.AllowedOrigins, svc.Logger)
	funnelHandler := funnel.New(svc.Funnels, svc.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Route("/chat", chatHandler.RegisterRoutes)
		api.Route("/funnels", funnelHandler.RegisterRoutes)

		if svc.Analytics != nil {
			api.Route("/analytics", analyticsHandler.New(svc.Analytics, svc.Store, svc.Logger).RegisterRoutes)
		}
	})

	return r
}
