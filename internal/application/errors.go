package application

import "errors"

// Caller-visible failures. The HTTP layer is solely responsible for mapping
// these to transport responses; the core never retries.
var (
	ErrEmailExisted          = errors.New("email already existed")
	ErrUsernameExisted       = errors.New("username already existed")
	ErrIncorrectCredentials  = errors.New("incorrect username, email or password")
	ErrInvalidOTP            = errors.New("invalid otp code")
	ErrSelfFriendRequest     = errors.New("cannot send a friend request to yourself")
	ErrFriendRequestNotFound = errors.New("friend request not found")
	ErrProfileNotFound       = errors.New("profile not found")
)

// TwoFactorAuthNotEnabledError blocks a login that passed the credential
// check but has 2FA disabled. It carries the user id so the caller can
// redirect to 2FA setup.
type TwoFactorAuthNotEnabledError struct {
	UserID string
}

func (e *TwoFactorAuthNotEnabledError) Error() string {
	return "two-factor authentication not enabled for user " + e.UserID
}
