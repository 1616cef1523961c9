package auth

import (
	"testing"
	"time"
)

func TestChangeTicket_RoundTrip(t *testing.T) {
	ticket, err := IssueChangeTicket("secret", 7, "alice", 15*time.Minute)
	if err != nil {
		t.Fatalf("IssueChangeTicket() error = %v", err)
	}

	claims, err := ParseChangeTicket("secret", ticket)
	if err != nil {
		t.Fatalf("ParseChangeTicket() error = %v", err)
	}
	if claims.UserID != 7 || claims.Username != "alice" {
		t.Errorf("claims = {%d, %q}, want {7, alice}", claims.UserID, claims.Username)
	}
}

func TestChangeTicket_WrongSecret(t *testing.T) {
	ticket, err := IssueChangeTicket("secret", 7, "alice", 15*time.Minute)
	if err != nil {
		t.Fatalf("IssueChangeTicket() error = %v", err)
	}

	if _, err := ParseChangeTicket("other-secret", ticket); err == nil {
		t.Error("ParseChangeTicket() with wrong secret error = nil, want error")
	}
}

func TestChangeTicket_Expired(t *testing.T) {
	ticket, err := IssueChangeTicket("secret", 7, "alice", -time.Minute)
	if err != nil {
		t.Fatalf("IssueChangeTicket() error = %v", err)
	}

	if _, err := ParseChangeTicket("secret", ticket); err == nil {
		t.Error("ParseChangeTicket() with expired ticket error = nil, want error")
	}
}

func TestChangeTicket_Garbage(t *testing.T) {
	if _, err := ParseChangeTicket("secret", "not-a-token"); err == nil {
		t.Error("ParseChangeTicket() with garbage error = nil, want error")
	}
}
