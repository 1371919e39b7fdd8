package auth

import (
	"testing"

	"github.com/spec-kit/parking-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, issued, err := tm.GenerateToken("staff-42", domain.RoleStaff)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if issued.ID == "" {
		t.Fatal("expected a token id")
	}
	if !issued.ExpiresAt.After(issued.IssuedAt) {
		t.Fatalf("expiry %v not after issue %v", issued.ExpiresAt, issued.IssuedAt)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.SubjectID != "staff-42" {
		t.Fatalf("unexpected subject: %s", claims.SubjectID)
	}
	if claims.Role != domain.RoleStaff {
		t.Fatalf("unexpected role: %s", claims.Role)
	}
	if claims.ID != issued.ID {
		t.Fatalf("token id mismatch: %s vs %s", claims.ID, issued.ID)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", 60)
	token, _, err := tm.GenerateToken("admin-1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other := NewTokenManager("secret-b", 60)
	if _, err := other.ParseToken(token); err == nil {
		t.Fatal("expected parse failure with wrong secret")
	}
}

func TestTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	if _, err := tm.ParseToken("not-a-jwt"); err == nil {
		t.Fatal("expected parse failure")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("pw", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := ComparePassword(hash, "pw"); err != nil {
		t.Fatalf("ComparePassword: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch")
	}
}
