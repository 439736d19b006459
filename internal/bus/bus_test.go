package bus

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"user-service/internal/domain/message"
	"user-service/internal/domain/repository"
)

type testCommand struct {
	message.Base
	name string
}

func (c *testCommand) CommandName() string { return c.name }

type testEvent struct {
	message.Base
	name string
}

func (e *testEvent) EventName() string { return e.name }

// stubUoW lets handlers stage events; each CollectNewEvents call drains what
// was staged since the previous call, like the real unit of work drains the
// entities a scope saw.
type stubUoW struct {
	staged     []message.Event
	dispatched []string
}

func (s *stubUoW) Enter(ctx context.Context) (repository.Scope, error) { return nil, nil }

func (s *stubUoW) CollectNewEvents() []message.Event {
	out := s.staged
	s.staged = nil
	return out
}

func (s *stubUoW) MarkDispatched(ctx context.Context, ev message.Event) error {
	s.dispatched = append(s.dispatched, ev.MessageID())
	return nil
}

func (s *stubUoW) emit(name string) *testEvent {
	ev := &testEvent{Base: message.NewBase(), name: name}
	s.staged = append(s.staged, ev)
	return ev
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestHandleCommandReturnsResult(t *testing.T) {
	uow := &stubUoW{}
	b := New(uow, quietLogger())
	b.RegisterCommand("Greet", func(ctx context.Context, cmd message.Command) (any, error) {
		return "hello", nil
	})

	results, err := b.Handle(context.Background(), &testCommand{Base: message.NewBase(), name: "Greet"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0] != "hello" {
		t.Fatalf("results = %v, want [hello]", results)
	}
}

func TestHandleCommandErrorPropagates(t *testing.T) {
	uow := &stubUoW{}
	b := New(uow, quietLogger())
	boom := errors.New("boom")
	b.RegisterCommand("Fail", func(ctx context.Context, cmd message.Command) (any, error) {
		return nil, boom
	})

	_, err := b.Handle(context.Background(), &testCommand{Base: message.NewBase(), name: "Fail"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestHandleUnregisteredCommandPanics(t *testing.T) {
	b := New(&stubUoW{}, quietLogger())
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unregistered command")
		}
	}()
	_, _ = b.Handle(context.Background(), &testCommand{Base: message.NewBase(), name: "Nobody"})
}

func TestRegisterCommandTwicePanics(t *testing.T) {
	b := New(&stubUoW{}, quietLogger())
	h := func(ctx context.Context, cmd message.Command) (any, error) { return nil, nil }
	b.RegisterCommand("Dup", h)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for duplicate registration")
		}
	}()
	b.RegisterCommand("Dup", h)
}

func TestCascadeIsBreadthFirst(t *testing.T) {
	uow := &stubUoW{}
	b := New(uow, quietLogger())

	var order []string
	b.RegisterCommand("Start", func(ctx context.Context, cmd message.Command) (any, error) {
		uow.emit("First")
		uow.emit("Second")
		return nil, nil
	})
	b.RegisterEvent("First", func(ctx context.Context, ev message.Event) error {
		order = append(order, "First")
		uow.emit("Third")
		return nil
	})
	b.RegisterEvent("Second", func(ctx context.Context, ev message.Event) error {
		order = append(order, "Second")
		return nil
	})
	b.RegisterEvent("Third", func(ctx context.Context, ev message.Event) error {
		order = append(order, "Third")
		return nil
	})

	if _, err := b.Handle(context.Background(), &testCommand{Base: message.NewBase(), name: "Start"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"First", "Second", "Third"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestEventHandlerErrorIsSwallowed(t *testing.T) {
	uow := &stubUoW{}
	b := New(uow, quietLogger())

	var ran []string
	b.RegisterCommand("Start", func(ctx context.Context, cmd message.Command) (any, error) {
		uow.emit("Thing")
		return nil, nil
	})
	b.RegisterEvent("Thing", func(ctx context.Context, ev message.Event) error {
		ran = append(ran, "failing")
		return errors.New("handler broke")
	})
	b.RegisterEvent("Thing", func(ctx context.Context, ev message.Event) error {
		ran = append(ran, "second")
		return nil
	})

	if _, err := b.Handle(context.Background(), &testCommand{Base: message.NewBase(), name: "Start"}); err != nil {
		t.Fatalf("event handler error leaked: %v", err)
	}
	if len(ran) != 2 {
		t.Fatalf("ran = %v, want both handlers", ran)
	}
	if len(uow.dispatched) != 0 {
		t.Fatalf("failed event must stay undispatched, got %v", uow.dispatched)
	}
}

func TestFailedHandlerEmissionsDoNotCascade(t *testing.T) {
	uow := &stubUoW{}
	b := New(uow, quietLogger())

	var ran []string
	b.RegisterCommand("Start", func(ctx context.Context, cmd message.Command) (any, error) {
		uow.emit("Thing")
		return nil, nil
	})
	b.RegisterEvent("Thing", func(ctx context.Context, ev message.Event) error {
		uow.emit("Orphan")
		return errors.New("handler broke")
	})
	b.RegisterEvent("Orphan", func(ctx context.Context, ev message.Event) error {
		ran = append(ran, "orphan")
		return nil
	})

	if _, err := b.Handle(context.Background(), &testCommand{Base: message.NewBase(), name: "Start"}); err != nil {
		t.Fatalf("event handler error leaked: %v", err)
	}
	if len(ran) != 0 {
		t.Fatalf("events emitted by a failed handler must not run, got %v", ran)
	}
}

func TestMarkDispatchedOnSuccess(t *testing.T) {
	uow := &stubUoW{}
	b := New(uow, quietLogger())

	var evID string
	b.RegisterCommand("Start", func(ctx context.Context, cmd message.Command) (any, error) {
		evID = uow.emit("Thing").MessageID()
		return nil, nil
	})
	b.RegisterEvent("Thing", func(ctx context.Context, ev message.Event) error { return nil })

	if _, err := b.Handle(context.Background(), &testCommand{Base: message.NewBase(), name: "Start"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(uow.dispatched) != 1 || uow.dispatched[0] != evID {
		t.Fatalf("dispatched = %v, want [%s]", uow.dispatched, evID)
	}
}

func TestEventWithoutHandlersIsDispatched(t *testing.T) {
	uow := &stubUoW{}
	b := New(uow, quietLogger())
	b.RegisterCommand("Start", func(ctx context.Context, cmd message.Command) (any, error) {
		uow.emit("Nobody")
		return nil, nil
	})

	if _, err := b.Handle(context.Background(), &testCommand{Base: message.NewBase(), name: "Start"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(uow.dispatched) != 1 {
		t.Fatalf("dispatched = %v, want one entry", uow.dispatched)
	}
}
