package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the aggregate root for the account domain. Password holds a bcrypt
// hash, never the plaintext; SecretToken is the TOTP seed.
type User struct {
	recorder

	ID                   string
	Username             string
	Email                string
	Password             string
	SecretToken          string
	TwoFactorAuthEnabled bool
	Locked               bool
	MessageID            string
	CreatedTime          time.Time
	UpdatedTime          time.Time
}

// NewUser builds a user from an already-hashed password and a freshly
// generated TOTP seed. messageID correlates the row to the register command.
func NewUser(messageID, username, email, hashedPassword, secretToken string) *User {
	now := time.Now().UTC()
	return &User{
		ID:          uuid.NewString(),
		Username:    username,
		Email:       email,
		Password:    hashedPassword,
		SecretToken: secretToken,
		MessageID:   messageID,
		CreatedTime: now,
		UpdatedTime: now,
	}
}

func (u *User) EntityID() string { return u.ID }

// EnableTwoFactorAuth flips the 2FA flag; terminal until administratively
// reset, which is out of scope here.
func (u *User) EnableTwoFactorAuth() {
	u.TwoFactorAuthEnabled = true
	u.UpdatedTime = time.Now().UTC()
}

// ChangePassword replaces the stored hash.
func (u *User) ChangePassword(hashedPassword string) {
	u.Password = hashedPassword
	u.UpdatedTime = time.Now().UTC()
}
