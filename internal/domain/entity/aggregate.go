package entity

import "user-service/internal/domain/message"

// Aggregate is an entity the repository can persist and the unit of work can
// harvest pending events from.
type Aggregate interface {
	EntityID() string
	PendingEvents() []message.Event
	PopEvent() (message.Event, bool)
}

// recorder holds the pending-events list appended during business
// operations. Events stay on the entity until the unit of work drains them
// after the owning handler commits.
type recorder struct {
	events []message.Event
}

func (r *recorder) Emit(ev message.Event) {
	r.events = append(r.events, ev)
}

// PendingEvents returns the not-yet-drained events in emission order.
func (r *recorder) PendingEvents() []message.Event {
	return r.events
}

// PopEvent removes and returns the oldest pending event.
func (r *recorder) PopEvent() (message.Event, bool) {
	if len(r.events) == 0 {
		return nil, false
	}
	ev := r.events[0]
	r.events = r.events[1:]
	return ev, true
}
