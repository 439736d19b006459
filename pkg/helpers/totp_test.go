package helpers

import (
	"testing"
	"time"
)

func TestTOTPRoundTrip(t *testing.T) {
	seed, err := GenerateTOTPSecret("user-service", "ada@example.com")
	if err != nil {
		t.Fatalf("generate seed: %v", err)
	}
	if seed == "" {
		t.Fatal("empty seed")
	}

	code, err := TOTPCode(seed, 30)
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("code %q, want 6 digits", code)
	}
	if !VerifyTOTPCode(seed, code, 30) {
		t.Fatal("freshly generated code must verify")
	}
}

func TestTOTPRejectsWrongSeed(t *testing.T) {
	seedA, _ := GenerateTOTPSecret("user-service", "a@example.com")
	seedB, _ := GenerateTOTPSecret("user-service", "b@example.com")

	code, err := TOTPCode(seedA, 30)
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if VerifyTOTPCode(seedB, code, 30) {
		t.Fatal("code from another seed must not verify")
	}
}

func TestTOTPRejectsMalformedCode(t *testing.T) {
	seed, _ := GenerateTOTPSecret("user-service", "ada@example.com")
	for _, code := range []string{"", "12345", "abcdef", "0000000"} {
		if VerifyTOTPCode(seed, code, 30) {
			t.Fatalf("code %q must not verify", code)
		}
	}
}

func TestTOTPCodeExpiresPastSkewWindow(t *testing.T) {
	seed, err := GenerateTOTPSecret("user-service", "ada@example.com")
	if err != nil {
		t.Fatalf("generate seed: %v", err)
	}

	// One-second steps so the wait stays short. Skew admits one step either
	// way, so after three seconds the code is at least two steps stale.
	code, err := TOTPCode(seed, 1)
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	time.Sleep(3 * time.Second)

	if VerifyTOTPCode(seed, code, 1) {
		t.Fatal("code older than the skew window must not verify")
	}
}

func TestTOTPZeroPeriodDefaults(t *testing.T) {
	seed, _ := GenerateTOTPSecret("user-service", "ada@example.com")
	code, err := TOTPCode(seed, 0)
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if !VerifyTOTPCode(seed, code, 0) {
		t.Fatal("zero period must fall back to the default step")
	}
}
