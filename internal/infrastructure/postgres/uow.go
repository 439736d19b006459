package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"user-service/internal/domain/message"
	"user-service/internal/domain/repository"
)

// UnitOfWork opens serializable transactions over a shared pool. The object
// is long-lived and shared by all dispatches in a process; each Enter yields
// a fresh scope with a fresh repository. It assumes one in-flight scope at a
// time, matching the bus's synchronous dispatch.
type UnitOfWork struct {
	pool *pgxpool.Pool
	last *Repo
}

func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

func (u *UnitOfWork) Enter(ctx context.Context) (repository.Scope, error) {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	repo := newRepo(tx)
	u.last = repo
	return &scope{tx: tx, repo: repo}, nil
}

// CollectNewEvents drains pending events from the entities the most recent
// scope saw: FIFO per entity, entities in seen (append) order.
func (u *UnitOfWork) CollectNewEvents() []message.Event {
	if u.last == nil {
		return nil
	}
	var evs []message.Event
	for _, ag := range u.last.Seen() {
		for {
			ev, ok := ag.PopEvent()
			if !ok {
				break
			}
			evs = append(evs, ev)
		}
	}
	return evs
}

func (u *UnitOfWork) MarkDispatched(ctx context.Context, ev message.Event) error {
	_, err := u.pool.Exec(ctx, `
		UPDATE outbox SET dispatched_at = now() WHERE id = $1
	`, ev.MessageID())
	return err
}

type scope struct {
	tx        pgx.Tx
	repo      *Repo
	committed bool
}

func (s *scope) Repo() repository.Repository { return s.repo }

// Commit flushes mutated entities, writes every pending event into the
// outbox in the same transaction, then commits. The events stay on their
// entities for the bus to collect and dispatch in process; the outbox row is
// the crash-safety net.
func (s *scope) Commit(ctx context.Context) error {
	if err := s.repo.flush(ctx); err != nil {
		return err
	}
	for _, ag := range s.repo.Seen() {
		for _, ev := range ag.PendingEvents() {
			if err := insertOutbox(ctx, s.tx, ev); err != nil {
				return err
			}
		}
	}
	if err := s.tx.Commit(ctx); err != nil {
		return err
	}
	s.committed = true
	return nil
}

// Exit rolls back and releases the connection unless Commit ran first.
func (s *scope) Exit(ctx context.Context) {
	if s.committed {
		return
	}
	_ = s.tx.Rollback(ctx)
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)
