package message

import "testing"

func TestEventCodecRoundTrip(t *testing.T) {
	ev := NewRegistered("user-1", "Ada", "Lovelace", "backup@example.com", "female", "1990-01-01")
	payload, err := EncodeEvent(ev)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeEvent(NameRegistered, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, ok := decoded.(*Registered)
	if !ok {
		t.Fatalf("decoded %T, want *Registered", decoded)
	}
	if got.MessageID() != ev.MessageID() || got.UserID != "user-1" || got.FirstName != "Ada" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestDecodeAcceptedFriendRequest(t *testing.T) {
	ev := NewAcceptedFriendRequest("fr-1", "a", "b")
	payload, err := EncodeEvent(ev)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeEvent(NameAcceptedFriendRequest, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := decoded.(*AcceptedFriendRequest)
	if got.FriendRequestID != "fr-1" || got.SenderID != "a" || got.ReceiverID != "b" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestDecodeUnknownEventName(t *testing.T) {
	if _, err := DecodeEvent("Vanished", []byte(`{}`)); err == nil {
		t.Fatal("unknown event name must be an error")
	}
}
