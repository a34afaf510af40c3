package main

import (
	"context"
	"net/http"
	"time"

	"study-notes/auth"
	"study-notes/handlers"
	appmw "study-notes/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type routerConfig struct {
	Handler     *handlers.Handler
	Issuer      *auth.Issuer
	Log         logrus.FieldLogger
	DB          pinger
	Registry    *prometheus.Registry
	CORSOrigins []string
}

func newRouter(cfg routerConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(appmw.RequestLogger(cfg.Log))
	r.Use(appmw.NewMetrics(cfg.Registry).Handler)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(appmw.GlobalLimiter())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Hello from AI Study Buddy backend!"))
	})
	r.Method("GET", "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := cfg.DB.Ping(ctx); err != nil {
			cfg.Log.WithError(err).Warn("health check failed")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})

	cfg.Handler.Register(r, handlers.RouteOptions{
		RequireAuth:  appmw.RequireAuth(cfg.Issuer, cfg.Log),
		LoginLimiter: appmw.LoginLimiter(),
		AILimiter:    appmw.AILimiter(),
	})
	return r
}
