package memory

import (
	"context"
	"testing"

	"user-service/internal/domain/entity"
	"user-service/internal/domain/repository"
)

func TestExitWithoutCommitRollsBack(t *testing.T) {
	uow := NewUnitOfWork()
	ctx := context.Background()

	scope, err := uow.Enter(ctx)
	if err != nil {
		t.Fatalf("enter: %v", err)
	}
	user := entity.NewUser("msg-1", "ada", "ada@example.com", "hash", "seed")
	if err := scope.Repo().Add(ctx, user); err != nil {
		t.Fatalf("add: %v", err)
	}
	scope.Exit(ctx)

	if uow.Committed {
		t.Fatal("scope must not report committed")
	}

	scope, _ = uow.Enter(ctx)
	defer scope.Exit(ctx)
	users, err := scope.Repo().Users(ctx, repository.Filters{"id": user.ID})
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if len(users) != 0 {
		t.Fatal("uncommitted add must be discarded on exit")
	}
}

func TestCommitPersistsAcrossScopes(t *testing.T) {
	uow := NewUnitOfWork()
	ctx := context.Background()

	scope, _ := uow.Enter(ctx)
	user := entity.NewUser("msg-1", "ada", "ada@example.com", "hash", "seed")
	_ = scope.Repo().Add(ctx, user)
	if err := scope.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	scope.Exit(ctx)

	scope, _ = uow.Enter(ctx)
	defer scope.Exit(ctx)
	users, err := scope.Repo().Users(ctx, repository.Filters{"email": "ada@example.com"})
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}
}

func TestStagedWritesVisibleInsideScope(t *testing.T) {
	uow := NewUnitOfWork()
	ctx := context.Background()

	scope, _ := uow.Enter(ctx)
	defer scope.Exit(ctx)
	repo := scope.Repo()

	user := entity.NewUser("msg-1", "ada", "ada@example.com", "hash", "seed")
	_ = repo.Add(ctx, user)

	users, err := repo.Users(ctx, repository.Filters{"username": "ada"})
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if len(users) != 1 {
		t.Fatal("staged add must be visible to queries in the same scope")
	}
}

func TestCollectNewEventsDrainsInSeenOrder(t *testing.T) {
	uow := NewUnitOfWork()
	ctx := context.Background()

	scope, _ := uow.Enter(ctx)
	fr1 := entity.NewFriendRequest("msg-1", "a", "b")
	fr2 := entity.NewFriendRequest("msg-2", "c", "d")
	_ = scope.Repo().Add(ctx, fr1)
	_ = scope.Repo().Add(ctx, fr2)
	fr1.Accept()
	fr2.Accept()
	_ = scope.Commit(ctx)
	scope.Exit(ctx)

	evs := uow.CollectNewEvents()
	if len(evs) != 2 {
		t.Fatalf("got %d events, want 2", len(evs))
	}
	if evs[0].MessageID() == evs[1].MessageID() {
		t.Fatal("events must be distinct")
	}

	if extra := uow.CollectNewEvents(); len(extra) != 0 {
		t.Fatalf("events must drain once, got %d more", len(extra))
	}
}
