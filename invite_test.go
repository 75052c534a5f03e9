package main

import (
	"testing"
	"time"
)

func TestInviteRoundTrip(t *testing.T) {
	signer := NewInviteSigner("test-secret", time.Hour)
	token, err := signer.Generate("K7PQ2X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := signer.RoomCode(token); got != "K7PQ2X" {
		t.Errorf("wrong code expected: %v got: %v", "K7PQ2X", got)
	}
}

func TestInviteRejectsGarbage(t *testing.T) {
	signer := NewInviteSigner("test-secret", time.Hour)
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if got := signer.RoomCode(token); got != "" {
			t.Errorf("token %q resolved to %q, want empty", token, got)
		}
	}
}

func TestInviteRejectsExpired(t *testing.T) {
	signer := NewInviteSigner("test-secret", -time.Minute)
	token, err := signer.Generate("K7PQ2X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := signer.RoomCode(token); got != "" {
		t.Errorf("expired token resolved to %q", got)
	}
}

func TestInviteRejectsWrongSecret(t *testing.T) {
	token, err := NewInviteSigner("secret-one", time.Hour).Generate("K7PQ2X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := NewInviteSigner("secret-two", time.Hour).RoomCode(token); got != "" {
		t.Errorf("cross-secret token resolved to %q", got)
	}
}
