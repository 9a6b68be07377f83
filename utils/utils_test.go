package utils

import (
	"errors"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("HashPassword returned the plaintext")
	}
	if !CheckPasswordHash("s3cret", hash) {
		t.Error("CheckPasswordHash rejected the right password")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("CheckPasswordHash accepted the wrong password")
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	if _, err := HashPassword(""); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("HashPassword(\"\") err = %v; want ErrEmptyPassword", err)
	}
}
