// Seeds demo accounts through the command bus, so the full register cascade
// runs: user row, outbox row, profile projection.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"user-service/config"
	"user-service/internal/application"
	"user-service/internal/bootstrap"
	"user-service/internal/domain/entity"
	"user-service/internal/domain/message"
	"user-service/internal/infrastructure/notification"
	pginfra "user-service/internal/infrastructure/postgres"
	"user-service/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	b := bootstrap.New(bootstrap.Options{
		UoW:         pginfra.NewUnitOfWork(pool),
		Credentials: helpers.NewCredentials(cfg.TOTPIssuer, uint(cfg.TOTPPeriod)),
		Notifier:    notification.NewFileSender(cfg.MockEmailDir),
		Logger:      logger,
	})

	demo := []*message.Register{
		message.NewRegister("alice", "alice@example.com", "Sup3r$ecret", "Alice", "Anderson", "", "female", "1990-04-01"),
		message.NewRegister("bob", "bob@example.com", "Sup3r$ecret", "Bob", "Brown", "", "male", "1988-11-23"),
	}

	for _, cmd := range demo {
		results, err := b.Handle(ctx, cmd)
		if err != nil {
			if errors.Is(err, application.ErrEmailExisted) || errors.Is(err, application.ErrUsernameExisted) {
				log.Printf("seed %s skipped: already present", cmd.Username)
				continue
			}
			log.Fatalf("seed %s failed: %v", cmd.Username, err)
		}
		user := results[0].(*entity.User)
		fmt.Printf("seeded user: id=%s username=%s email=%s password=Sup3r$ecret\n", user.ID, user.Username, user.Email)
	}
}
