package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-payments/config"
	"github.com/oksasatya/go-ddd-payments/internal/application"
	pginfra "github.com/oksasatya/go-ddd-payments/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-payments/internal/infrastructure/settlement"
	"github.com/oksasatya/go-ddd-payments/pkg/helpers"
	"github.com/oksasatya/go-ddd-payments/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-settlement", cfg.Env, cfg.LogLevel)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventsQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
		DSN:         cfg.PostgresDSN(),
		AppName:     cfg.AppName + "-settlement",
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
	})
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	// Side effects are optional; a nil interface disables one.
	var (
		archiver application.Archiver
		indexer  application.Indexer
		notifier application.Notifier
	)
	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcs.Close() }()
		archiver = settlement.NewGCSArchiver(gcs, cfg.GCSBucket, cfg.GCSEventsPrefix)
	}
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.Fatalf("failed to init elasticsearch client: %v", err)
		}
		indexer = settlement.NewESIndexer(es, cfg.ESEventsIndex)
	}
	if cfg.MailSendEnabled {
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
			logger.Fatal("Mailgun not configured")
		}
		mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunAPIBase)
		notifier = settlement.NewMailNotifier(mg, cfg.AppName, cfg.SupportURL)
	} else {
		logger.Info("MAIL_SEND_ENABLED=false; payment receipts disabled")
	}

	processor := application.NewSettlementProcessor(pginfra.NewLedgerRepository(pool), archiver, indexer, notifier, logger)

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue, cfg.RabbitMQPrefetch)
	if err != nil {
		logger.Fatalf("amqp: %v", err)
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries("")
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range msgs {
			c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := processor.HandleMessage(c, msg.Body)
			cancel()
			if err != nil {
				logger.WithError(err).WithField("message_id", msg.MessageId).Warn("settlement failed")
			}
			if aerr := helpers.Settle(msg, err); aerr != nil {
				logger.WithError(aerr).Error("ack failed")
			}
		}
	}()

	logger.Infof("settlement worker listening on queue=%s", cfg.RabbitMQEventsQueue)
	<-ctx.Done()
	logger.Info("shutting down...")
	consumer.Close()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
}
