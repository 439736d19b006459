package message

import (
	"time"

	"github.com/google/uuid"
)

// Message is anything the bus can dispatch. Every message carries an opaque
// correlation id so the API layer can re-query rows written by an in-flight
// command before the handler's return value is available.
type Message interface {
	MessageID() string
}

// Command is an intent to change state. Exactly one handler per command;
// the handler may return a result.
type Command interface {
	Message
	CommandName() string
	CreatedTime() time.Time
}

// Event is a fact that already happened, broadcast to zero or more handlers.
// Handler results are side effects only.
type Event interface {
	Message
	EventName() string
	CreatedTime() time.Time
}

// Base carries the correlation id and creation timestamp shared by all
// commands and events.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

func NewBase() Base {
	return Base{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
}

func (b Base) MessageID() string      { return b.ID }
func (b Base) CreatedTime() time.Time { return b.CreatedAt }
