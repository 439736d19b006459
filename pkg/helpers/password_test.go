package helpers

import "testing"

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPassword("Sup3r$ecret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "Sup3r$ecret" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CompareHashAndPassword(hash, "Sup3r$ecret") {
		t.Fatal("correct password must verify")
	}
	if CompareHashAndPassword(hash, "wrong") {
		t.Fatal("wrong password must not verify")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h1, _ := HashPassword("Sup3r$ecret")
	h2, _ := HashPassword("Sup3r$ecret")
	if h1 == h2 {
		t.Fatal("two hashes of the same password must differ")
	}
}
