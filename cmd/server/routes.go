package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unclebandit/campaign-crm/internal/auth"
	"github.com/unclebandit/campaign-crm/internal/controller"
	"github.com/unclebandit/campaign-crm/internal/handler"
)

type routes struct {
	tokens    *auth.TokenIssuer
	campaigns *controller.CampaignController
	ingestion *controller.IngestionController
	reads     *handler.CampaignHandler
	login     *handler.AuthHandler
	health    *handler.HealthHandler
}

func newRouter(rt routes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", rt.health.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/auth/google", rt.login.LoginHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(rt.tokens))

		r.Get("/customers", rt.ingestion.ListCustomers)
		r.Post("/customers", rt.ingestion.AddCustomers)
		r.Get("/orders", rt.ingestion.ListOrders)
		r.Post("/orders", rt.ingestion.AddOrders)

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", rt.reads.ListCampaignsHandler)
			r.Post("/", rt.campaigns.CreateCampaign)
			r.Post("/preview", rt.campaigns.PreviewAudience)
			r.Get("/suggestions", rt.reads.SuggestionsHandler)
			r.Get("/{id}", rt.reads.GetCampaignHandler)
			r.Get("/{id}/summary", rt.reads.GetCampaignSummaryHandler)
		})
	})

	return r
}
