package application_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"user-service/internal/application"
	"user-service/internal/bootstrap"
	"user-service/internal/bus"
	"user-service/internal/domain/entity"
	"user-service/internal/domain/message"
	"user-service/internal/domain/repository"
	"user-service/internal/infrastructure/memory"
)

// fakeCreds is deterministic: hashing prefixes, the OTP is always 123456.
type fakeCreds struct{}

func (fakeCreds) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (fakeCreds) Verify(plain, hash string) bool { return hash == "hashed:"+plain }

func (fakeCreds) GenerateSeed(account string) (string, error) { return "seed:" + account, nil }

func (fakeCreds) TOTPNow(seed string) (string, error) { return "123456", nil }

func (fakeCreds) TOTPVerify(seed, code string) bool { return code == "123456" }

type delivery struct {
	Address string
	Subject string
	Payload string
}

type fakeNotifier struct {
	sent []delivery
}

func (n *fakeNotifier) Deliver(ctx context.Context, address, subject, payload string) error {
	n.sent = append(n.sent, delivery{address, subject, payload})
	return nil
}

type fakeIndexer struct {
	indexed []string
}

func (ix *fakeIndexer) IndexUser(ctx context.Context, u *entity.User) error {
	ix.indexed = append(ix.indexed, u.ID)
	return nil
}

type fixture struct {
	bus      *bus.Bus
	uow      *memory.UnitOfWork
	notifier *fakeNotifier
	indexer  *fakeIndexer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	uow := memory.NewUnitOfWork()
	notifier := &fakeNotifier{}
	indexer := &fakeIndexer{}
	b := bootstrap.New(bootstrap.Options{
		UoW:         uow,
		Credentials: fakeCreds{},
		Notifier:    notifier,
		Indexer:     indexer,
		Logger:      logger,
	})
	return &fixture{bus: b, uow: uow, notifier: notifier, indexer: indexer}
}

func (f *fixture) register(t *testing.T, username, email string) *entity.User {
	t.Helper()
	cmd := message.NewRegister(username, email, "Sup3r$ecret", "Ada", "Lovelace", "", "female", "1990-01-01")
	results, err := f.bus.Handle(context.Background(), cmd)
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return results[0].(*entity.User)
}

// query opens a throwaway scope for assertions against committed state.
func query[T any](t *testing.T, f *fixture, fn func(repo repository.Repository) (T, error)) T {
	t.Helper()
	scope, err := f.uow.Enter(context.Background())
	if err != nil {
		t.Fatalf("enter: %v", err)
	}
	defer scope.Exit(context.Background())
	out, err := fn(scope.Repo())
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	return out
}

func TestRegisterCreatesUserAndProfile(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada", "ada@example.com")

	if user.Password != "hashed:Sup3r$ecret" {
		t.Fatalf("password stored as %q, want the hash", user.Password)
	}
	if user.SecretToken == "" {
		t.Fatal("user must get a TOTP seed at registration")
	}
	if user.TwoFactorAuthEnabled {
		t.Fatal("2FA must start disabled")
	}

	profiles := query(t, f, func(repo repository.Repository) ([]*entity.Profile, error) {
		return repo.Profiles(context.Background(), repository.Filters{"user_id": user.ID})
	})
	if len(profiles) != 1 {
		t.Fatalf("got %d profiles, want the cascade to create one", len(profiles))
	}
	if profiles[0].FirstName != "Ada" || profiles[0].DateOfBirth != "1990-01-01" {
		t.Fatalf("profile fields not carried over: %+v", profiles[0])
	}

	if len(f.indexer.indexed) != 1 || f.indexer.indexed[0] != user.ID {
		t.Fatalf("indexed = %v, want [%s]", f.indexer.indexed, user.ID)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada", "ada@example.com")

	_, err := f.bus.Handle(context.Background(),
		message.NewRegister("other", "ada@example.com", "Sup3r$ecret", "", "", "", "", ""))
	if !errors.Is(err, application.ErrEmailExisted) {
		t.Fatalf("err = %v, want ErrEmailExisted", err)
	}

	_, err = f.bus.Handle(context.Background(),
		message.NewRegister("ada", "fresh@example.com", "Sup3r$ecret", "", "", "", "", ""))
	if !errors.Is(err, application.ErrUsernameExisted) {
		t.Fatalf("err = %v, want ErrUsernameExisted", err)
	}
}

func enable2FA(t *testing.T, f *fixture, userID string) {
	t.Helper()
	if _, err := f.bus.Handle(context.Background(), message.NewVerifyTwoFactorAuth(userID, "123456")); err != nil {
		t.Fatalf("verify 2fa: %v", err)
	}
}

func TestLoginRequiresTwoFactorAuth(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada", "ada@example.com")

	_, err := f.bus.Handle(context.Background(), message.NewLogin("ada", "wrong"))
	if !errors.Is(err, application.ErrIncorrectCredentials) {
		t.Fatalf("err = %v, want ErrIncorrectCredentials", err)
	}

	_, err = f.bus.Handle(context.Background(), message.NewLogin("ada", "Sup3r$ecret"))
	var gate *application.TwoFactorAuthNotEnabledError
	if !errors.As(err, &gate) {
		t.Fatalf("err = %v, want TwoFactorAuthNotEnabledError", err)
	}
	if gate.UserID != user.ID {
		t.Fatalf("gate.UserID = %s, want %s", gate.UserID, user.ID)
	}

	enable2FA(t, f, user.ID)
	results, err := f.bus.Handle(context.Background(), message.NewLogin("ada", "Sup3r$ecret"))
	if err != nil {
		t.Fatalf("login after 2fa: %v", err)
	}
	if got := results[0].(*entity.User); got.ID != user.ID {
		t.Fatalf("logged in as %s, want %s", got.ID, user.ID)
	}
}

func TestLoginFallsBackToEmail(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada", "ada@example.com")
	enable2FA(t, f, user.ID)

	results, err := f.bus.Handle(context.Background(), message.NewLogin("ada@example.com", "Sup3r$ecret"))
	if err != nil {
		t.Fatalf("login by email: %v", err)
	}
	if got := results[0].(*entity.User); got.ID != user.ID {
		t.Fatalf("logged in as %s, want %s", got.ID, user.ID)
	}
}

func TestSetupTwoFactorAuthDeliversCode(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada", "ada@example.com")

	if _, err := f.bus.Handle(context.Background(), message.NewSetupTwoFactorAuth(user.ID)); err != nil {
		t.Fatalf("setup 2fa: %v", err)
	}
	if len(f.notifier.sent) != 1 {
		t.Fatalf("got %d deliveries, want 1", len(f.notifier.sent))
	}
	d := f.notifier.sent[0]
	if d.Address != "ada@example.com" || d.Payload != "123456" {
		t.Fatalf("delivery = %+v, want the code at the account email", d)
	}
}

func TestVerifyTwoFactorAuthRejectsWrongCode(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada", "ada@example.com")

	_, err := f.bus.Handle(context.Background(), message.NewVerifyTwoFactorAuth(user.ID, "000000"))
	if !errors.Is(err, application.ErrInvalidOTP) {
		t.Fatalf("err = %v, want ErrInvalidOTP", err)
	}

	users := query(t, f, func(repo repository.Repository) ([]*entity.User, error) {
		return repo.Users(context.Background(), repository.Filters{"id": user.ID})
	})
	if users[0].TwoFactorAuthEnabled {
		t.Fatal("2FA must stay disabled after a failed verify")
	}
}

func TestResetPasswordRotatesAndDelivers(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada", "ada@example.com")
	enable2FA(t, f, user.ID)

	if _, err := f.bus.Handle(context.Background(), message.NewResetPassword("ada@example.com", "ada")); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if len(f.notifier.sent) != 1 {
		t.Fatalf("got %d deliveries, want 1", len(f.notifier.sent))
	}
	newPassword := f.notifier.sent[0].Payload

	if _, err := f.bus.Handle(context.Background(), message.NewLogin("ada", "Sup3r$ecret")); !errors.Is(err, application.ErrIncorrectCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := f.bus.Handle(context.Background(), message.NewLogin("ada", newPassword)); err != nil {
		t.Fatalf("new password login: %v", err)
	}
}

func TestResetPasswordChecksUsernameEmailPair(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada", "ada@example.com")

	_, err := f.bus.Handle(context.Background(), message.NewResetPassword("ada@example.com", "mallory"))
	if !errors.Is(err, application.ErrIncorrectCredentials) {
		t.Fatalf("err = %v, want ErrIncorrectCredentials", err)
	}
	if len(f.notifier.sent) != 0 {
		t.Fatalf("no delivery expected, got %v", f.notifier.sent)
	}
}

func TestFriendRequestLifecycle(t *testing.T) {
	f := newFixture(t)
	ada := f.register(t, "ada", "ada@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	if _, err := f.bus.Handle(context.Background(), message.NewCreateFriendRequest(ada.ID, ada.ID)); !errors.Is(err, application.ErrSelfFriendRequest) {
		t.Fatalf("self request err = %v, want ErrSelfFriendRequest", err)
	}

	results, err := f.bus.Handle(context.Background(), message.NewCreateFriendRequest(ada.ID, bob.ID))
	if err != nil {
		t.Fatalf("create friend request: %v", err)
	}
	fr := results[0].(*entity.FriendRequest)

	if _, err := f.bus.Handle(context.Background(), message.NewAcceptFriendRequest(fr.ID)); err != nil {
		t.Fatalf("accept friend request: %v", err)
	}

	friends := query(t, f, func(repo repository.Repository) ([]*entity.Friend, error) {
		return repo.Friends(context.Background(), repository.Filters{"sender_id": ada.ID, "receiver_id": bob.ID})
	})
	if len(friends) != 1 {
		t.Fatalf("got %d friend edges, want 1", len(friends))
	}

	for _, uid := range []string{ada.ID, bob.ID} {
		profiles := query(t, f, func(repo repository.Repository) ([]*entity.Profile, error) {
			return repo.Profiles(context.Background(), repository.Filters{"user_id": uid})
		})
		if profiles[0].Friends != 1 {
			t.Fatalf("friends counter for %s = %d, want 1", uid, profiles[0].Friends)
		}
	}

	remaining := query(t, f, func(repo repository.Repository) ([]*entity.FriendRequest, error) {
		return repo.FriendRequests(context.Background(), repository.Filters{"id": fr.ID})
	})
	if len(remaining) != 0 {
		t.Fatal("accepted request must be deleted")
	}

	if _, err := f.bus.Handle(context.Background(), message.NewAcceptFriendRequest(fr.ID)); !errors.Is(err, application.ErrFriendRequestNotFound) {
		t.Fatalf("re-accept err = %v, want ErrFriendRequestNotFound", err)
	}
}

func TestDeclineFriendRequestLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	ada := f.register(t, "ada", "ada@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	results, err := f.bus.Handle(context.Background(), message.NewCreateFriendRequest(ada.ID, bob.ID))
	if err != nil {
		t.Fatalf("create friend request: %v", err)
	}
	fr := results[0].(*entity.FriendRequest)

	if _, err := f.bus.Handle(context.Background(), message.NewDeclineFriendRequest(fr.ID)); err != nil {
		t.Fatalf("decline friend request: %v", err)
	}

	friends := query(t, f, func(repo repository.Repository) ([]*entity.Friend, error) {
		return repo.Friends(context.Background(), repository.Filters{"sender_id": ada.ID})
	})
	if len(friends) != 0 {
		t.Fatal("declined request must not create a friend edge")
	}
	remaining := query(t, f, func(repo repository.Repository) ([]*entity.FriendRequest, error) {
		return repo.FriendRequests(context.Background(), repository.Filters{"id": fr.ID})
	})
	if len(remaining) != 0 {
		t.Fatal("declined request must be deleted")
	}
}

func TestUpdateProfileAvatar(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada", "ada@example.com")

	url := "https://storage.googleapis.com/bucket/avatars/ada.png"
	if _, err := f.bus.Handle(context.Background(), message.NewUpdateProfileAvatar(user.ID, url)); err != nil {
		t.Fatalf("update avatar: %v", err)
	}
	profiles := query(t, f, func(repo repository.Repository) ([]*entity.Profile, error) {
		return repo.Profiles(context.Background(), repository.Filters{"user_id": user.ID})
	})
	if profiles[0].AvatarURL != url {
		t.Fatalf("avatar = %q, want %q", profiles[0].AvatarURL, url)
	}
}

func TestGeneratedPasswordIsWellFormed(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ada", "ada@example.com")
	enable2FA(t, f, user.ID)

	if _, err := f.bus.Handle(context.Background(), message.NewResetPassword("ada@example.com", "ada")); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	pwd := f.notifier.sent[0].Payload
	if len(pwd) < 8 {
		t.Fatalf("generated password %q too short", pwd)
	}
	checks := map[string]string{
		"lowercase": "abcdefghijklmnopqrstuvwxyz",
		"uppercase": "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		"digit":     "0123456789",
		"special":   "!#$%&*+-=?@^_",
	}
	for name, set := range checks {
		if !strings.ContainsAny(pwd, set) {
			t.Fatalf("generated password %q missing a %s character", pwd, name)
		}
	}
}
