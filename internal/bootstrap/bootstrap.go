package bootstrap

import (
	"context"

	"github.com/sirupsen/logrus"

	"user-service/internal/application"
	"user-service/internal/bus"
	"user-service/internal/domain/message"
	"user-service/internal/domain/repository"
)

// Options carries every collaborator the handler set needs. Nothing here is
// global: process mains construct one Options and own the lifetimes.
type Options struct {
	UoW         repository.UnitOfWork
	Credentials application.Credentials
	Notifier    application.Notifier
	Indexer     application.SearchIndexer // optional
	Logger      *logrus.Logger
}

// New wires every command and event handler onto a bus. The command table is
// total over the closed command set; a command name without a handler is a
// wiring bug the bus turns into a panic at dispatch.
func New(opts Options) *bus.Bus {
	h := application.NewHandlers(opts.UoW, opts.Credentials, opts.Notifier, opts.Indexer, opts.Logger)
	b := bus.New(opts.UoW, opts.Logger)

	b.RegisterCommand(message.NameRegister, func(ctx context.Context, cmd message.Command) (any, error) {
		return h.Register(ctx, cmd.(*message.Register))
	})
	b.RegisterCommand(message.NameSetupTwoFactorAuth, func(ctx context.Context, cmd message.Command) (any, error) {
		return nil, h.SetupTwoFactorAuth(ctx, cmd.(*message.SetupTwoFactorAuth))
	})
	b.RegisterCommand(message.NameVerifyTwoFactorAuth, func(ctx context.Context, cmd message.Command) (any, error) {
		return nil, h.VerifyTwoFactorAuth(ctx, cmd.(*message.VerifyTwoFactorAuth))
	})
	b.RegisterCommand(message.NameLogin, func(ctx context.Context, cmd message.Command) (any, error) {
		return h.Login(ctx, cmd.(*message.Login))
	})
	b.RegisterCommand(message.NameResetPassword, func(ctx context.Context, cmd message.Command) (any, error) {
		return nil, h.ResetPassword(ctx, cmd.(*message.ResetPassword))
	})
	b.RegisterCommand(message.NameCreateFriendRequest, func(ctx context.Context, cmd message.Command) (any, error) {
		return h.CreateFriendRequest(ctx, cmd.(*message.CreateFriendRequest))
	})
	b.RegisterCommand(message.NameAcceptFriendRequest, func(ctx context.Context, cmd message.Command) (any, error) {
		return nil, h.AcceptFriendRequest(ctx, cmd.(*message.AcceptFriendRequest))
	})
	b.RegisterCommand(message.NameDeclineFriendRequest, func(ctx context.Context, cmd message.Command) (any, error) {
		return nil, h.DeclineFriendRequest(ctx, cmd.(*message.DeclineFriendRequest))
	})
	b.RegisterCommand(message.NameUpdateProfileAvatar, func(ctx context.Context, cmd message.Command) (any, error) {
		return nil, h.UpdateProfileAvatar(ctx, cmd.(*message.UpdateProfileAvatar))
	})

	b.RegisterEvent(message.NameRegistered, func(ctx context.Context, ev message.Event) error {
		return h.CreateUserProfile(ctx, ev.(*message.Registered))
	})
	b.RegisterEvent(message.NameRegistered, func(ctx context.Context, ev message.Event) error {
		return h.IndexRegisteredUser(ctx, ev.(*message.Registered))
	})
	b.RegisterEvent(message.NameAcceptedFriendRequest, func(ctx context.Context, ev message.Event) error {
		return h.AddToFriendList(ctx, ev.(*message.AcceptedFriendRequest))
	})

	return b
}
