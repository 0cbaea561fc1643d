// cmd/worker/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/campaign-crm/internal/cache"
	"github.com/unclebandit/campaign-crm/internal/config"
	"github.com/unclebandit/campaign-crm/internal/db"
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
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid config")
	}
	if cfg.AMQPURL == "" {
		logrus.Fatal("AMQP_URL is required for the worker")
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer database.Close()

	svc := &service.CampaignService{
		CampaignRepo: &repository.CampaignRepository{DB: database},
		CustomerRepo: &repository.CustomerRepository{DB: database},
		OrderRepo:    &repository.OrderRepository{DB: database},
	}
	if cfg.RedisAddr != "" {
		summaryCache, err := cache.NewRedisSummaryCache(cfg.RedisAddr, cfg.SummaryCacheTTL)
		if err != nil {
			logrus.WithError(err).Warn("summary cache disabled")
		} else {
			defer summaryCache.Close()
			svc.Cache = summaryCache
		}
	}

	q, err := queue.DialAMQP(cfg.AMQPURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to broker")
	}
	defer q.Close()

	if err := startWorker(q, svc); err != nil {
		logrus.WithError(err).Fatal("failed to register consumer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logrus.Info("worker running, waiting for campaign events")
	<-ctx.Done()
	logrus.Info("worker stopping")
}

// startWorker summarizes every campaign.created event that arrives on q.
func startWorker(q queue.Queue, svc *service.CampaignService) error {
	return queue.StartCampaignEventSubscriber(q, svc.GetCampaignSummary)
}
