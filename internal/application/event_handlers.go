package application

import (
	"context"

	"user-service/internal/domain/entity"
	"user-service/internal/domain/message"
	"user-service/internal/domain/repository"
)

// Event handlers run at least once: the outbox redelivers an event whose
// handlers did not all succeed, so every handler here checks whether its
// effect already happened before applying it.

// CreateUserProfile builds the one-to-one profile for a freshly registered
// user.
func (h *Handlers) CreateUserProfile(ctx context.Context, ev *message.Registered) error {
	scope, err := h.uow.Enter(ctx)
	if err != nil {
		return err
	}
	defer scope.Exit(ctx)
	repo := scope.Repo()

	existing, err := repo.Profiles(ctx, repository.Filters{"user_id": ev.UserID})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	profile := entity.NewProfile(ev.MessageID(), ev.UserID, ev.FirstName, ev.LastName, ev.BackupEmail, ev.Gender, ev.DateOfBirth)
	if err := repo.Add(ctx, profile); err != nil {
		return err
	}
	return scope.Commit(ctx)
}

// AddToFriendList materializes the accepted request: one Friend edge, both
// parties' friends counters incremented, and the spent request deleted, all
// inside one unit of work. If either profile does not exist yet the handler
// fails and the outbox retries once the Registered cascade has caught up.
func (h *Handlers) AddToFriendList(ctx context.Context, ev *message.AcceptedFriendRequest) error {
	scope, err := h.uow.Enter(ctx)
	if err != nil {
		return err
	}
	defer scope.Exit(ctx)
	repo := scope.Repo()

	existing, err := repo.Friends(ctx, repository.Filters{"sender_id": ev.SenderID, "receiver_id": ev.ReceiverID})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	friend := entity.NewFriend(ev.MessageID(), ev.SenderID, ev.ReceiverID)
	if err := repo.Add(ctx, friend); err != nil {
		return err
	}

	for _, userID := range []string{ev.SenderID, ev.ReceiverID} {
		profiles, err := repo.Profiles(ctx, repository.Filters{"user_id": userID})
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			return ErrProfileNotFound
		}
		profiles[0].IncrementFriends()
	}

	frs, err := repo.FriendRequests(ctx, repository.Filters{"id": ev.FriendRequestID})
	if err != nil {
		return err
	}
	if len(frs) > 0 {
		if err := repo.Remove(ctx, frs[0]); err != nil {
			return err
		}
	}

	return scope.Commit(ctx)
}

// IndexRegisteredUser projects the new user into the search store. It is a
// second consumer of Registered, independent of profile creation.
func (h *Handlers) IndexRegisteredUser(ctx context.Context, ev *message.Registered) error {
	if h.indexer == nil {
		return nil
	}
	scope, err := h.uow.Enter(ctx)
	if err != nil {
		return err
	}
	defer scope.Exit(ctx)

	users, err := scope.Repo().Users(ctx, repository.Filters{"id": ev.UserID})
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}
	return h.indexer.IndexUser(ctx, users[0])
}
