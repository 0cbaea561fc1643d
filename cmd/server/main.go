// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/unclebandit/campaign-crm/internal/auth"
	"github.com/unclebandit/campaign-crm/internal/cache"
	"github.com/unclebandit/campaign-crm/internal/config"
	"github.com/unclebandit/campaign-crm/internal/controller"
	"github.com/unclebandit/campaign-crm/internal/db"
	"github.com/unclebandit/campaign-crm/internal/delivery"
	"github.com/unclebandit/campaign-crm/internal/handler"
	"github.com/unclebandit/campaign-crm/internal/queue"
	"github.com/unclebandit/campaign-crm/internal/repository"
	"github.com/unclebandit/campaign-crm/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	if err := config.SetupLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
		logrus.WithError(err).Fatal("invalid logging config")
	}
	if err := cfg.ValidateServer(); err != nil {
		logrus.WithError(err).Fatal("invalid config")
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	customerRepo := &repository.CustomerRepository{DB: database}
	orderRepo := &repository.OrderRepository{DB: database}
	campaignRepo := &repository.CampaignRepository{DB: database}
	userRepo := &repository.UserRepository{DB: database}

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		CustomerRepo: customerRepo,
		OrderRepo:    orderRepo,
		Delivery:     delivery.NewSimulatedProvider(cfg.DeliverySendRate, cfg.DeliveryOpenRate),
	}

	if cfg.RedisAddr != "" {
		summaryCache, err := cache.NewRedisSummaryCache(cfg.RedisAddr, cfg.SummaryCacheTTL)
		if err != nil {
			logrus.WithError(err).Warn("summary cache disabled")
		} else {
			defer summaryCache.Close()
			campaignService.Cache = summaryCache
		}
	}

	// Events go to the broker when one is configured, otherwise they are
	// summarized in-process.
	if cfg.AMQPURL != "" {
		amqpQueue, err := queue.DialAMQP(cfg.AMQPURL)
		if err != nil {
			logrus.WithError(err).Fatal("failed to connect to broker")
		}
		defer amqpQueue.Close()
		campaignService.Queue = amqpQueue
	} else {
		memQueue := queue.NewInMemoryQueue()
		if err := queue.StartCampaignEventSubscriber(memQueue, campaignService.GetCampaignSummary); err != nil {
			logrus.WithError(err).Fatal("failed to subscribe to campaign events")
		}
		campaignService.Queue = memQueue
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := auth.NewGoogleVerifier(ctx, cfg.GoogleClientID)
	if err != nil {
		logrus.WithError(err).Fatal("failed to set up identity verifier")
	}
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to set up token issuer")
	}

	router := newRouter(routes{
		tokens:    tokens,
		campaigns: &controller.CampaignController{CampaignService: campaignService},
		ingestion: &controller.IngestionController{IngestionService: &service.IngestionService{
			CustomerRepo: customerRepo,
			OrderRepo:    orderRepo,
		}},
		reads: handler.NewCampaignHandler(campaignService),
		login: &handler.AuthHandler{Service: &service.AuthService{
			UserRepo: userRepo,
			Identity: verifier,
			Tokens:   tokens,
		}},
		health: &handler.HealthHandler{DB: database},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logrus.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
		}).Info("request")
	})
}
