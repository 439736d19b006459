package message

import (
	"encoding/json"
	"fmt"
)

const (
	NameRegistered            = "Registered"
	NameAcceptedFriendRequest = "AcceptedFriendRequest"
)

// Registered is emitted by the Register handler once the user row is
// persisted. It carries the profile fields so downstream consumers can build
// the profile without re-reading the command.
type Registered struct {
	Base
	UserID      string `json:"user_id"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	BackupEmail string `json:"backup_email,omitempty"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

func NewRegistered(userID, firstName, lastName, backupEmail, gender, dateOfBirth string) *Registered {
	return &Registered{
		Base:        NewBase(),
		UserID:      userID,
		FirstName:   firstName,
		LastName:    lastName,
		BackupEmail: backupEmail,
		Gender:      gender,
		DateOfBirth: dateOfBirth,
	}
}

func (*Registered) EventName() string { return NameRegistered }

// AcceptedFriendRequest is emitted by the AcceptFriendRequest handler. The
// spent request row is deleted by the event handler, atomically with the
// Friend edge creation.
type AcceptedFriendRequest struct {
	Base
	FriendRequestID string `json:"friend_request_id"`
	SenderID        string `json:"sender_id"`
	ReceiverID      string `json:"receiver_id"`
}

func NewAcceptedFriendRequest(friendRequestID, senderID, receiverID string) *AcceptedFriendRequest {
	return &AcceptedFriendRequest{
		Base:            NewBase(),
		FriendRequestID: friendRequestID,
		SenderID:        senderID,
		ReceiverID:      receiverID,
	}
}

func (*AcceptedFriendRequest) EventName() string { return NameAcceptedFriendRequest }

// EncodeEvent serializes an event for the outbox table.
func EncodeEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}

// DecodeEvent rebuilds an event from its outbox row. Unknown names are a
// decoding error, not a panic: old rows may outlive a deploy that removed
// their event type.
func DecodeEvent(name string, payload []byte) (Event, error) {
	var ev Event
	switch name {
	case NameRegistered:
		ev = &Registered{}
	case NameAcceptedFriendRequest:
		ev = &AcceptedFriendRequest{}
	default:
		return nil, fmt.Errorf("unknown event name %q", name)
	}
	if err := json.Unmarshal(payload, ev); err != nil {
		return nil, err
	}
	return ev, nil
}
