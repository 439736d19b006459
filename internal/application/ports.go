package application

import (
	"context"

	"user-service/internal/domain/entity"
)

// Credentials is the opaque hashing/OTP capability consumed by handlers.
type Credentials interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool

	GenerateSeed(account string) (string, error)
	TOTPNow(seed string) (string, error)
	TOTPVerify(seed, code string) bool
}

// Notifier delivers out-of-band payloads (OTP codes, reset passwords) to an
// address. Implementations range from a mock file sink to a RabbitMQ-backed
// email queue.
type Notifier interface {
	Deliver(ctx context.Context, address, subject, payload string) error
}

// SearchIndexer projects users into the search store. A nil indexer disables
// the projection.
type SearchIndexer interface {
	IndexUser(ctx context.Context, u *entity.User) error
}
