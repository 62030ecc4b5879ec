package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/niiodoi/venda/internal/admin"
	"github.com/niiodoi/venda/internal/middleware"
	"github.com/niiodoi/venda/internal/server"
	"github.com/niiodoi/venda/internal/webhook"
)

type Handlers struct {
	Webhook *webhook.WebhookHandler
	Admin   *admin.AdminHandler
}

func NewRouter(s *server.Server, h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	mw := middleware.NewMiddlewares(s)

	// Apply middleware in order
	r.Use(middleware.RequestID)
	r.Use(mw.Tracing.NewRelicMiddleware())
	r.Use(mw.Tracing.EnhanceTracing)
	r.Use(mw.ContextEnhancer.EnhanceContext)
	r.Use(mw.Global.RequestLogger)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("venda data vendor is running"))
	})

	r.Get("/healthz", healthz(s))

	r.Post("/webhooks/paystack", h.Webhook.HandleWebhook)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminAuth(s.Config.Admin.Secret))
		r.Get("/summary", h.Admin.Summary)
	})

	return r
}

func healthz(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if s.Db != nil {
			if err := s.Db.Ping(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if s.Redis != nil {
			if err := s.Redis.Ping(ctx); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Write([]byte("ok"))
	}
}
