package helpers

// Credentials bundles the password-hash and TOTP primitives behind the
// capability interface the command handlers consume.
type Credentials struct {
	Issuer     string
	TOTPPeriod uint
}

func NewCredentials(issuer string, totpPeriod uint) Credentials {
	return Credentials{Issuer: issuer, TOTPPeriod: totpPeriod}
}

func (c Credentials) Hash(plain string) (string, error) {
	return HashPassword(plain)
}

func (c Credentials) Verify(plain, hash string) bool {
	return CompareHashAndPassword(hash, plain)
}

func (c Credentials) GenerateSeed(account string) (string, error) {
	return GenerateTOTPSecret(c.Issuer, account)
}

func (c Credentials) TOTPNow(seed string) (string, error) {
	return TOTPCode(seed, c.TOTPPeriod)
}

func (c Credentials) TOTPVerify(seed, code string) bool {
	return VerifyTOTPCode(seed, code, c.TOTPPeriod)
}
