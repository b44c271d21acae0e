package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSignParseRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := Sign("secret", "hiremind", Identity{Email: "Ada@Example.com", Name: "Ada", Role: RoleRecruiter}, time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	got, err := Parse("secret", "hiremind", token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Email != "ada@example.com" || got.Role != RoleRecruiter || got.Name != "Ada" {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	valid, err := Sign("secret", "hiremind", Identity{Email: "ada@example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	expired, err := Sign("secret", "hiremind", Identity{Email: "ada@example.com"}, -time.Minute)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	noEmail, err := Sign("secret", "hiremind", Identity{}, time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	tests := []struct {
		name   string
		secret string
		issuer string
		token  string
	}{
		{name: "wrong secret", secret: "other", issuer: "hiremind", token: valid},
		{name: "wrong issuer", secret: "secret", issuer: "someone-else", token: valid},
		{name: "expired", secret: "secret", issuer: "hiremind", token: expired},
		{name: "missing email", secret: "secret", issuer: "hiremind", token: noEmail},
		{name: "garbage", secret: "secret", issuer: "hiremind", token: "not-a-token"},
		{name: "no secret", secret: "", issuer: "hiremind", token: valid},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse(tt.secret, tt.issuer, tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestIdentityOwns(t *testing.T) {
	t.Parallel()

	candidate := Identity{Email: "ada@example.com", Role: RoleCandidate}
	if !candidate.Owns("ADA@example.com ") {
		t.Fatal("candidate should own their own email")
	}
	if candidate.Owns("bob@example.com") {
		t.Fatal("candidate must not own another email")
	}
	if !(Identity{Email: "r@example.com", Role: RoleRecruiter}).Owns("bob@example.com") {
		t.Fatal("recruiter owns every record")
	}
}
