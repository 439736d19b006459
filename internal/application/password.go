package application

import (
	"crypto/rand"
	"math/big"
)

const (
	lowercaseLetters  = "abcdefghijklmnopqrstuvwxyz"
	uppercaseLetters  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits            = "0123456789"
	specialCharacters = "!#$%&*+-=?@^_"
)

// randomValidPassword produces a password that always contains at least one
// lowercase letter, uppercase letter, digit and special character.
func randomValidPassword(length int) string {
	if length < 8 {
		length = 8
	}
	all := lowercaseLetters + uppercaseLetters + digits + specialCharacters

	buf := make([]byte, 0, length)
	for i := 0; i < length-4; i++ {
		buf = append(buf, randomChar(all))
	}
	buf = append(buf, randomChar(lowercaseLetters))
	buf = append(buf, randomChar(uppercaseLetters))
	buf = append(buf, randomChar(digits))
	buf = append(buf, randomChar(specialCharacters))
	return string(buf)
}

func randomChar(set string) byte {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		// crypto/rand failing means the platform RNG is broken; there is
		// nothing sensible to fall back to for password material.
		panic(err)
	}
	return set[n.Int64()]
}
