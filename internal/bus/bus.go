package bus

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"user-service/internal/domain/message"
	"user-service/internal/domain/repository"
)

// CommandHandler runs the business logic for one command type. The returned
// value, if any, is surfaced to the caller of Handle.
type CommandHandler func(ctx context.Context, cmd message.Command) (any, error)

// EventHandler reacts to a fact. Errors are logged and swallowed by the bus;
// the outbox redelivers the event later, so handlers must be idempotent.
type EventHandler func(ctx context.Context, ev message.Event) error

// Bus dispatches commands to their single handler and events to their
// ordered handler list, propagating cascaded events breadth-first. One bus
// shares one unit of work; each handler invocation runs inside a fresh
// unit-of-work scope opened by the handler itself.
type Bus struct {
	uow      repository.UnitOfWork
	commands map[string]CommandHandler
	events   map[string][]EventHandler
	logger   *logrus.Logger
}

func New(uow repository.UnitOfWork, logger *logrus.Logger) *Bus {
	return &Bus{
		uow:      uow,
		commands: make(map[string]CommandHandler),
		events:   make(map[string][]EventHandler),
		logger:   logger,
	}
}

// RegisterCommand binds the single handler for a command name. Registering a
// name twice is a wiring bug and panics at startup.
func (b *Bus) RegisterCommand(name string, h CommandHandler) {
	if _, dup := b.commands[name]; dup {
		panic(fmt.Sprintf("bus: command %q already has a handler", name))
	}
	b.commands[name] = h
}

// RegisterEvent appends a handler to the event's ordered handler list.
func (b *Bus) RegisterEvent(name string, h EventHandler) {
	b.events[name] = append(b.events[name], h)
}

// Handle dispatches a command or event and then drains and dispatches every
// event the unit of work collected, breadth-first: all events emitted by the
// command run before events they themselves cause. It returns the non-nil
// results of the command handlers invoked, in invocation order; event
// handlers are side-effect only.
//
// A command handler error aborts the dispatch and propagates. An event
// handler error is logged and does not stop remaining handlers; the event's
// outbox row stays undispatched so the worker can retry it.
func (b *Bus) Handle(ctx context.Context, msg message.Message) ([]any, error) {
	var results []any
	queue := []message.Message{msg}

	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]

		switch m := m.(type) {
		case message.Command:
			res, err := b.handleCommand(ctx, m)
			if err != nil {
				return results, err
			}
			if res != nil {
				results = append(results, res)
			}
			queue = append(queue, b.collect()...)
		case message.Event:
			b.handleEvent(ctx, m, &queue)
		default:
			panic(fmt.Sprintf("bus: message %T is neither command nor event", m))
		}
	}
	return results, nil
}

func (b *Bus) handleCommand(ctx context.Context, cmd message.Command) (any, error) {
	h, ok := b.commands[cmd.CommandName()]
	if !ok {
		panic(fmt.Sprintf("bus: no handler registered for command %q", cmd.CommandName()))
	}
	return h(ctx, cmd)
}

func (b *Bus) handleEvent(ctx context.Context, ev message.Event, queue *[]message.Message) {
	failed := false
	for _, h := range b.events[ev.EventName()] {
		if err := h(ctx, ev); err != nil {
			failed = true
			b.logger.WithFields(logrus.Fields{
				"event":      ev.EventName(),
				"message_id": ev.MessageID(),
			}).WithError(err).Error("event handler failed")
			continue
		}
		// Collect only after success: a failed handler's scope rolled back,
		// so anything it emitted must not cascade.
		*queue = append(*queue, b.collect()...)
	}
	if !failed {
		if err := b.uow.MarkDispatched(ctx, ev); err != nil {
			b.logger.WithFields(logrus.Fields{
				"event":      ev.EventName(),
				"message_id": ev.MessageID(),
			}).WithError(err).Warn("mark dispatched failed")
		}
	}
}

func (b *Bus) collect() []message.Message {
	evs := b.uow.CollectNewEvents()
	msgs := make([]message.Message, 0, len(evs))
	for _, ev := range evs {
		msgs = append(msgs, ev)
	}
	return msgs
}
