package auth

import "testing"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Secure1pass")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	t.Run("HashIsNotPlaintext", func(t *testing.T) {
		if hash == "Secure1pass" {
			t.Error("Expected password to be hashed")
		}
	})

	t.Run("CorrectPasswordMatches", func(t *testing.T) {
		if !CheckPassword(hash, "Secure1pass") {
			t.Error("Expected matching password to verify")
		}
	})

	t.Run("WrongPasswordFails", func(t *testing.T) {
		if CheckPassword(hash, "Wrong1pass") {
			t.Error("Expected wrong password to fail")
		}
	})

	t.Run("HashesAreSalted", func(t *testing.T) {
		other, err := HashPassword("Secure1pass")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if other == hash {
			t.Error("Expected a different salt per hash")
		}
	})
}
