package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"user-service/internal/domain/entity"
	"user-service/internal/domain/message"
	"user-service/internal/domain/repository"
)

// Handlers holds the dependencies shared by all command and event handlers.
// Every handler opens its own unit-of-work scope and must commit explicitly;
// any exit path without a commit rolls back.
type Handlers struct {
	uow      repository.UnitOfWork
	creds    Credentials
	notifier Notifier
	indexer  SearchIndexer
	logger   *logrus.Logger
}

func NewHandlers(uow repository.UnitOfWork, creds Credentials, notifier Notifier, indexer SearchIndexer, logger *logrus.Logger) *Handlers {
	return &Handlers{uow: uow, creds: creds, notifier: notifier, indexer: indexer, logger: logger}
}

// Register creates the user only. The profile is created asynchronously by
// the Registered event handler, so account creation never blocks on
// profile-table writes and additional consumers can subscribe to the same
// event.
func (h *Handlers) Register(ctx context.Context, cmd *message.Register) (*entity.User, error) {
	scope, err := h.uow.Enter(ctx)
	if err != nil {
		return nil, err
	}
	defer scope.Exit(ctx)
	repo := scope.Repo()

	existing, err := repo.Users(ctx, repository.Filters{"email": cmd.Email})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmailExisted, cmd.Email)
	}
	existing, err = repo.Users(ctx, repository.Filters{"username": cmd.Username})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUsernameExisted, cmd.Username)
	}

	hashed, err := h.creds.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}
	seed, err := h.creds.GenerateSeed(cmd.Email)
	if err != nil {
		return nil, err
	}

	user := entity.NewUser(cmd.MessageID(), cmd.Username, cmd.Email, hashed, seed)
	if err := repo.Add(ctx, user); err != nil {
		return nil, err
	}
	user.Emit(message.NewRegistered(user.ID, cmd.FirstName, cmd.LastName, cmd.BackupEmail, cmd.Gender, cmd.DateOfBirth))

	if err := scope.Commit(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

// SetupTwoFactorAuth computes the current TOTP value from the stored seed
// and delivers it out of band. Stored state does not change, so the scope
// exits without committing.
func (h *Handlers) SetupTwoFactorAuth(ctx context.Context, cmd *message.SetupTwoFactorAuth) error {
	scope, err := h.uow.Enter(ctx)
	if err != nil {
		return err
	}
	defer scope.Exit(ctx)

	users, err := scope.Repo().Users(ctx, repository.Filters{"id": cmd.UserID})
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return ErrIncorrectCredentials
	}
	user := users[0]

	code, err := h.creds.TOTPNow(user.SecretToken)
	if err != nil {
		return err
	}
	return h.notifier.Deliver(ctx, user.Email, "Your one-time password", code)
}

// VerifyTwoFactorAuth recomputes the code against the seed within the time
// window; on match it enables 2FA and commits, on mismatch the state is
// untouched.
func (h *Handlers) VerifyTwoFactorAuth(ctx context.Context, cmd *message.VerifyTwoFactorAuth) error {
	scope, err := h.uow.Enter(ctx)
	if err != nil {
		return err
	}
	defer scope.Exit(ctx)

	users, err := scope.Repo().Users(ctx, repository.Filters{"id": cmd.UserID})
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return ErrIncorrectCredentials
	}
	user := users[0]

	if !h.creds.TOTPVerify(user.SecretToken, cmd.OTPCode) {
		return ErrInvalidOTP
	}
	user.EnableTwoFactorAuth()

	return scope.Commit(ctx)
}

// Login checks credentials and the 2FA gate. 2FA is mandatory once past the
// credential check: correct password with 2FA disabled fails with the user
// id attached so the caller can redirect to setup.
func (h *Handlers) Login(ctx context.Context, cmd *message.Login) (*entity.User, error) {
	scope, err := h.uow.Enter(ctx)
	if err != nil {
		return nil, err
	}
	defer scope.Exit(ctx)
	repo := scope.Repo()

	users, err := repo.Users(ctx, repository.Filters{"username": cmd.Username})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		users, err = repo.Users(ctx, repository.Filters{"email": cmd.Username})
		if err != nil {
			return nil, err
		}
	}
	if len(users) == 0 {
		return nil, ErrIncorrectCredentials
	}
	user := users[0]

	if !h.creds.Verify(cmd.Password, user.Password) {
		return nil, ErrIncorrectCredentials
	}
	if !user.TwoFactorAuthEnabled {
		return nil, &TwoFactorAuthNotEnabledError{UserID: user.ID}
	}
	return user, nil
}

// ResetPassword issues a fresh random password, commits the new hash, and
// only then delivers the plaintext: a delivery failure after commit is
// recoverable by resetting again, while delivering first could hand out a
// password that was never stored.
func (h *Handlers) ResetPassword(ctx context.Context, cmd *message.ResetPassword) error {
	scope, err := h.uow.Enter(ctx)
	if err != nil {
		return err
	}
	defer scope.Exit(ctx)

	users, err := scope.Repo().Users(ctx, repository.Filters{"email": cmd.Email})
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return ErrIncorrectCredentials
	}
	user := users[0]
	if user.Username != cmd.Username {
		return ErrIncorrectCredentials
	}

	newPassword := randomValidPassword(12)
	hashed, err := h.creds.Hash(newPassword)
	if err != nil {
		return err
	}
	user.ChangePassword(hashed)

	if err := scope.Commit(ctx); err != nil {
		return err
	}
	return h.notifier.Deliver(ctx, user.Email, "Your new password", newPassword)
}

// CreateFriendRequest persists a pending request. Self-requests are
// rejected.
func (h *Handlers) CreateFriendRequest(ctx context.Context, cmd *message.CreateFriendRequest) (*entity.FriendRequest, error) {
	if cmd.SenderID == cmd.ReceiverID {
		return nil, ErrSelfFriendRequest
	}
	scope, err := h.uow.Enter(ctx)
	if err != nil {
		return nil, err
	}
	defer scope.Exit(ctx)

	fr := entity.NewFriendRequest(cmd.MessageID(), cmd.SenderID, cmd.ReceiverID)
	if err := scope.Repo().Add(ctx, fr); err != nil {
		return nil, err
	}
	if err := scope.Commit(ctx); err != nil {
		return nil, err
	}
	return fr, nil
}

// AcceptFriendRequest records the acceptance fact. Materializing the Friend
// edge, bumping both counters and deleting the spent request happens in the
// AcceptedFriendRequest event handler, in its own unit of work.
func (h *Handlers) AcceptFriendRequest(ctx context.Context, cmd *message.AcceptFriendRequest) error {
	scope, err := h.uow.Enter(ctx)
	if err != nil {
		return err
	}
	defer scope.Exit(ctx)

	frs, err := scope.Repo().FriendRequests(ctx, repository.Filters{"id": cmd.FriendRequestID})
	if err != nil {
		return err
	}
	if len(frs) == 0 {
		return ErrFriendRequestNotFound
	}
	frs[0].Accept()

	return scope.Commit(ctx)
}

// DeclineFriendRequest deletes the request without a trace: no Friend edge,
// no event, no declined notification.
func (h *Handlers) DeclineFriendRequest(ctx context.Context, cmd *message.DeclineFriendRequest) error {
	scope, err := h.uow.Enter(ctx)
	if err != nil {
		return err
	}
	defer scope.Exit(ctx)
	repo := scope.Repo()

	frs, err := repo.FriendRequests(ctx, repository.Filters{"id": cmd.FriendRequestID})
	if err != nil {
		return err
	}
	if len(frs) == 0 {
		return ErrFriendRequestNotFound
	}
	if err := repo.Remove(ctx, frs[0]); err != nil {
		return err
	}

	return scope.Commit(ctx)
}

// UpdateProfileAvatar records an uploaded avatar URL on the profile.
func (h *Handlers) UpdateProfileAvatar(ctx context.Context, cmd *message.UpdateProfileAvatar) error {
	scope, err := h.uow.Enter(ctx)
	if err != nil {
		return err
	}
	defer scope.Exit(ctx)

	profiles, err := scope.Repo().Profiles(ctx, repository.Filters{"user_id": cmd.UserID})
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		return ErrProfileNotFound
	}
	profiles[0].SetAvatarURL(cmd.AvatarURL)

	return scope.Commit(ctx)
}
