// Package server assembles the HTTP routes.
package server

import (
	"net/http"

	"sevagan-backend/internal/config"
	"sevagan-backend/internal/handlers"
	"sevagan-backend/internal/middleware"
	"sevagan-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services are the dependencies the routes are served from
type Services struct {
	Donors   *services.DonorService
	Needs    *services.NeedService
	OTP      *services.OTPService
	Accounts *services.AccountService
	Relay    *services.RelayService
	Admin    *services.AdminService
}

// NewRouter builds the router. Application routes live under /api;
// /healthz and /metrics sit at the root.
func NewRouter(cfg *config.Config, svc Services) http.Handler {
	donorHandler := handlers.NewDonorHandler(svc.Donors)
	needHandler := handlers.NewNeedHandler(svc.Needs, svc.Relay)
	streamHandler := handlers.NewStreamHandler(svc.Needs, cfg.Feed.Heartbeat)
	wsHandler := handlers.NewWebSocketHandler(svc.Needs)
	authHandler := handlers.NewAuthHandler(svc.OTP)
	meHandler := handlers.NewMeHandler(svc.Accounts)
	adminHandler := handlers.NewAdminHandler(svc.Admin)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", handlers.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/donors", donorHandler.CreateDonor)
		r.Get("/donors", donorHandler.SearchDonors)

		r.Post("/needs", needHandler.CreateNeed)
		r.Get("/needs", needHandler.ListNeeds)
		r.Get("/needs/stream", streamHandler.Stream)
		r.Get("/needs/ws", wsHandler.HandleWebSocket)
		r.Post("/needs/respond", needHandler.Respond)
		r.Get("/needs/{id}", needHandler.GetNeed)

		r.Post("/notify", needHandler.NotifyDonor)
		r.Get("/stats", adminHandler.Stats)

		r.Route("/auth", func(r chi.Router) {
			if cfg.RateLimit.Enabled {
				r.Use(httprate.LimitByIP(cfg.RateLimit.Requests, cfg.RateLimit.Window))
			}
			r.Post("/request-otp", authHandler.RequestOTP)
			r.Post("/verify-otp", authHandler.VerifyOTP)
			r.Get("/exists", authHandler.Exists)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(svc.Accounts))
			r.Get("/me", meHandler.GetMe)
			r.Post("/me", meHandler.UpdateMe)
		})

		if cfg.Admin.Enabled {
			r.Route("/admin", func(r chi.Router) {
				r.Get("/data", adminHandler.Data)
				r.Get("/seed", adminHandler.Seed)
				r.Post("/seed", adminHandler.Seed)
				r.Post("/clear", adminHandler.Clear)
			})
		}
	})

	return r
}
