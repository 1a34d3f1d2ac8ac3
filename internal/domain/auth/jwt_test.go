package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))
	user := NewUser("ana@example.com", "hash", "Ana", RoleOperator)

	token, expiresAt, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if time.Until(expiresAt) < 11*time.Hour {
		t.Errorf("expiry too close: %v", expiresAt)
	}

	uc, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if uc.UserID != user.ID.String() {
		t.Errorf("user id = %q, want %q", uc.UserID, user.ID.String())
	}
	if uc.Email != "ana@example.com" {
		t.Errorf("email = %q", uc.Email)
	}
	if uc.Role != RoleOperator {
		t.Errorf("role = %q", uc.Role)
	}
	if uc.IsAdmin {
		t.Error("operator must not be admin")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig("secret-a"))
	verifier := NewJWTService(DefaultJWTConfig("secret-b"))
	user := NewUser("ana@example.com", "hash", "Ana", RoleAdmin)

	token, _, err := issuer.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatal("expected validation error for wrong secret")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	cfg := DefaultJWTConfig("test-secret")
	cfg.AccessTokenTTL = -time.Minute
	svc := NewJWTService(cfg)
	user := NewUser("ana@example.com", "hash", "Ana", RoleAdmin)

	token, _, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected validation error for expired token")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))
	if _, err := svc.ValidateToken("not-a-jwt"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestAdminClaimRoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))
	user := NewUser("root@example.com", "hash", "Root", RoleAdmin)

	token, _, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	uc, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if !uc.IsAdmin {
		t.Error("admin claim lost in round trip")
	}
}
