// The outbox worker re-dispatches events whose handlers did not all succeed
// in process. Rows are cleared by MarkDispatched only after every handler
// for the event ran without error, so delivery is at-least-once and handlers
// are written to be idempotent.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"user-service/config"
	"user-service/internal/application"
	"user-service/internal/bootstrap"
	"user-service/internal/bus"
	"user-service/internal/domain/message"
	"user-service/internal/infrastructure/notification"
	pginfra "user-service/internal/infrastructure/postgres"
	"user-service/internal/infrastructure/search"
	"user-service/pkg/helpers"
	"user-service/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-outbox", cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	esClient, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch unavailable, indexing handler will no-op")
		esClient = nil
	}

	var notifier application.Notifier = notification.NewFileSender(cfg.MockEmailDir)
	if cfg.MailSendEnabled {
		q, err := mailer.NewQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, falling back to file notifier")
		} else {
			defer q.Close()
			notifier = notification.NewQueueSender(q)
		}
	}

	b := bootstrap.New(bootstrap.Options{
		UoW:         pginfra.NewUnitOfWork(pool),
		Credentials: helpers.NewCredentials(cfg.TOTPIssuer, uint(cfg.TOTPPeriod)),
		Notifier:    notifier,
		Indexer:     search.NewIndexer(esClient, cfg.ESUsersIndex, logger),
		Logger:      logger,
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	logger.WithFields(logrus.Fields{
		"interval": cfg.OutboxPollInterval.String(),
		"grace":    cfg.OutboxGrace.String(),
	}).Info("outbox worker started")

	ticker := time.NewTicker(cfg.OutboxPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			logger.Info("outbox worker stopped")
			return
		case <-ticker.C:
			sweep(ctx, pool, b, cfg, logger)
		}
	}
}

// sweep re-dispatches one batch of stale rows. Dispatch errors are logged per
// row; the row stays undispatched and comes back on the next pass.
func sweep(ctx context.Context, pool *pgxpool.Pool, b *bus.Bus, cfg *config.Config, logger *logrus.Logger) {
	rows, err := pginfra.Undispatched(ctx, pool, cfg.OutboxGrace, cfg.OutboxBatchSize)
	if err != nil {
		logger.WithError(err).Error("outbox query failed")
		return
	}
	for _, row := range rows {
		ev, err := message.DecodeEvent(row.Name, row.Payload)
		if err != nil {
			logger.WithError(err).WithField("outbox_id", row.ID).Error("undecodable outbox row")
			continue
		}
		if _, err := b.Handle(ctx, ev); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"event":      row.Name,
				"message_id": row.ID,
			}).Warn("outbox redispatch failed")
		}
	}
	if len(rows) > 0 {
		logger.WithField("count", len(rows)).Info("outbox batch processed")
	}
}
