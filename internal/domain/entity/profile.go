package entity

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the one-to-one extension of User, created asynchronously by the
// Registered event handler. A window exists where a user has no profile yet;
// profile-dependent operations must tolerate absence.
type Profile struct {
	recorder

	ID          string
	UserID      string
	FirstName   string
	LastName    string
	BackupEmail string
	Gender      string
	DateOfBirth string
	AvatarURL   string
	Friends     int
	Followers   int
	MessageID   string
	CreatedTime time.Time
	UpdatedTime time.Time
}

func NewProfile(messageID, userID, firstName, lastName, backupEmail, gender, dateOfBirth string) *Profile {
	now := time.Now().UTC()
	return &Profile{
		ID:          uuid.NewString(),
		UserID:      userID,
		FirstName:   firstName,
		LastName:    lastName,
		BackupEmail: backupEmail,
		Gender:      gender,
		DateOfBirth: dateOfBirth,
		MessageID:   messageID,
		CreatedTime: now,
		UpdatedTime: now,
	}
}

func (p *Profile) EntityID() string { return p.ID }

// IncrementFriends bumps the friends counter. Only the friend-acceptance
// side effect calls this.
func (p *Profile) IncrementFriends() {
	p.Friends++
	p.UpdatedTime = time.Now().UTC()
}

func (p *Profile) SetAvatarURL(url string) {
	p.AvatarURL = url
	p.UpdatedTime = time.Now().UTC()
}
