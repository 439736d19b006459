package message

// Command names form a closed set; the bus dispatch table is keyed by them
// and bootstrap registers exactly one handler per name.
const (
	NameRegister             = "Register"
	NameSetupTwoFactorAuth   = "SetupTwoFactorAuth"
	NameVerifyTwoFactorAuth  = "VerifyTwoFactorAuth"
	NameLogin                = "Login"
	NameResetPassword        = "ResetPassword"
	NameCreateFriendRequest  = "CreateFriendRequest"
	NameAcceptFriendRequest  = "AcceptFriendRequest"
	NameDeclineFriendRequest = "DeclineFriendRequest"
	NameUpdateProfileAvatar  = "UpdateProfileAvatar"
)

type Register struct {
	Base
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	BackupEmail string
	Gender      string
	DateOfBirth string
}

func NewRegister(username, email, password, firstName, lastName, backupEmail, gender, dateOfBirth string) *Register {
	return &Register{
		Base:        NewBase(),
		Username:    username,
		Email:       email,
		Password:    password,
		FirstName:   firstName,
		LastName:    lastName,
		BackupEmail: backupEmail,
		Gender:      gender,
		DateOfBirth: dateOfBirth,
	}
}

func (*Register) CommandName() string { return NameRegister }

type SetupTwoFactorAuth struct {
	Base
	UserID string
}

func NewSetupTwoFactorAuth(userID string) *SetupTwoFactorAuth {
	return &SetupTwoFactorAuth{Base: NewBase(), UserID: userID}
}

func (*SetupTwoFactorAuth) CommandName() string { return NameSetupTwoFactorAuth }

type VerifyTwoFactorAuth struct {
	Base
	UserID  string
	OTPCode string
}

func NewVerifyTwoFactorAuth(userID, otpCode string) *VerifyTwoFactorAuth {
	return &VerifyTwoFactorAuth{Base: NewBase(), UserID: userID, OTPCode: otpCode}
}

func (*VerifyTwoFactorAuth) CommandName() string { return NameVerifyTwoFactorAuth }

type Login struct {
	Base
	// Username also matches against email as a fallback.
	Username string
	Password string
}

func NewLogin(username, password string) *Login {
	return &Login{Base: NewBase(), Username: username, Password: password}
}

func (*Login) CommandName() string { return NameLogin }

type ResetPassword struct {
	Base
	Email    string
	Username string
}

func NewResetPassword(email, username string) *ResetPassword {
	return &ResetPassword{Base: NewBase(), Email: email, Username: username}
}

func (*ResetPassword) CommandName() string { return NameResetPassword }

type CreateFriendRequest struct {
	Base
	SenderID   string
	ReceiverID string
}

func NewCreateFriendRequest(senderID, receiverID string) *CreateFriendRequest {
	return &CreateFriendRequest{Base: NewBase(), SenderID: senderID, ReceiverID: receiverID}
}

func (*CreateFriendRequest) CommandName() string { return NameCreateFriendRequest }

type AcceptFriendRequest struct {
	Base
	FriendRequestID string
}

func NewAcceptFriendRequest(friendRequestID string) *AcceptFriendRequest {
	return &AcceptFriendRequest{Base: NewBase(), FriendRequestID: friendRequestID}
}

func (*AcceptFriendRequest) CommandName() string { return NameAcceptFriendRequest }

type DeclineFriendRequest struct {
	Base
	FriendRequestID string
}

func NewDeclineFriendRequest(friendRequestID string) *DeclineFriendRequest {
	return &DeclineFriendRequest{Base: NewBase(), FriendRequestID: friendRequestID}
}

func (*DeclineFriendRequest) CommandName() string { return NameDeclineFriendRequest }

type UpdateProfileAvatar struct {
	Base
	UserID    string
	AvatarURL string
}

func NewUpdateProfileAvatar(userID, avatarURL string) *UpdateProfileAvatar {
	return &UpdateProfileAvatar{Base: NewBase(), UserID: userID, AvatarURL: avatarURL}
}

func (*UpdateProfileAvatar) CommandName() string { return NameUpdateProfileAvatar }
