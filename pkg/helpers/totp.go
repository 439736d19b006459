package helpers

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTP helpers. The step size is a configuration concern; tests shrink it to
// a second to exercise expiry.

// GenerateTOTPSecret creates a fresh random seed for the account.
func GenerateTOTPSecret(issuer, account string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		SecretSize:  32,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

// TOTPCode computes the code for the current time step.
func TOTPCode(secret string, period uint) (string, error) {
	return totp.GenerateCodeCustom(secret, time.Now(), validateOpts(period))
}

// VerifyTOTPCode time-window-compares a submitted code against the seed,
// accepting one step of clock skew either way.
func VerifyTOTPCode(secret, code string, period uint) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now(), validateOpts(period))
	return err == nil && ok
}

func validateOpts(period uint) totp.ValidateOpts {
	if period == 0 {
		period = 30
	}
	return totp.ValidateOpts{
		Period:    period,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}
