package entity

import (
	"time"

	"github.com/google/uuid"

	"user-service/internal/domain/message"
)

// FriendRequest is a transient record: pending until accepted or declined,
// and deleted on either outcome.
type FriendRequest struct {
	recorder

	ID          string
	SenderID    string
	ReceiverID  string
	MessageID   string
	CreatedTime time.Time
	UpdatedTime time.Time
}

func NewFriendRequest(messageID, senderID, receiverID string) *FriendRequest {
	now := time.Now().UTC()
	return &FriendRequest{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		ReceiverID:  receiverID,
		MessageID:   messageID,
		CreatedTime: now,
		UpdatedTime: now,
	}
}

func (f *FriendRequest) EntityID() string { return f.ID }

// Accept emits the AcceptedFriendRequest event. The row itself is removed by
// the event handler, atomically with the Friend edge creation.
func (f *FriendRequest) Accept() {
	f.Emit(message.NewAcceptedFriendRequest(f.ID, f.SenderID, f.ReceiverID))
}

// Friend is the materialized undirected edge, stored as one directed row per
// accepted request. Created only by the AcceptedFriendRequest event handler.
type Friend struct {
	recorder

	ID          string
	SenderID    string
	ReceiverID  string
	MessageID   string
	CreatedTime time.Time
}

func NewFriend(messageID, senderID, receiverID string) *Friend {
	return &Friend{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		ReceiverID:  receiverID,
		MessageID:   messageID,
		CreatedTime: time.Now().UTC(),
	}
}

func (f *Friend) EntityID() string { return f.ID }
