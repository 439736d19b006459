package repository

import (
	"context"

	"user-service/internal/domain/entity"
	"user-service/internal/domain/message"
)

// Filters selects entities by attribute equality. Filtering on an attribute
// a store does not know is a programmer error and panics.
type Filters map[string]any

// Repository persists domain aggregates and records every entity passed to
// Add or returned by a query as "seen", in append order, for the lifetime of
// the owning unit-of-work scope. Seen order makes cross-entity event
// ordering deterministic.
type Repository interface {
	Add(ctx context.Context, ag entity.Aggregate) error
	Remove(ctx context.Context, ag entity.Aggregate) error

	Users(ctx context.Context, by Filters) ([]*entity.User, error)
	Profiles(ctx context.Context, by Filters) ([]*entity.Profile, error)
	FriendRequests(ctx context.Context, by Filters) ([]*entity.FriendRequest, error)
	Friends(ctx context.Context, by Filters) ([]*entity.Friend, error)

	Seen() []entity.Aggregate
}

// Scope is one transactional use of a unit of work. Exit always rolls back
// and releases the connection unless Commit was called first, so a handler
// error leaves no partial writes.
type Scope interface {
	Repo() Repository
	Commit(ctx context.Context) error
	Exit(ctx context.Context)
}

// UnitOfWork opens scopes over a long-lived store binding. CollectNewEvents
// drains pending events from the entities the most recent scope saw: FIFO
// per entity, entities in seen order. It is consumed exactly once per
// dispatch, after the handler returns.
//
// A unit of work assumes a single in-flight scope at a time; concurrency
// control is delegated to the storage engine's transaction isolation.
type UnitOfWork interface {
	Enter(ctx context.Context) (Scope, error)
	CollectNewEvents() []message.Event

	// MarkDispatched records that every handler for the event ran
	// successfully, so the outbox will not redeliver it.
	MarkDispatched(ctx context.Context, ev message.Event) error
}
