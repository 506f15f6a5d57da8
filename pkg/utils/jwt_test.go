package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, "repairshop-api")
	id := uuid.New()

	token, err := m.GenerateAccessToken(id, "ana", []string{"sales", "technician"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != id || claims.Username != "ana" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if len(claims.AllRoles()) != 2 {
		t.Errorf("expected 2 roles, got %v", claims.AllRoles())
	}
}

func TestJWTRejectsOtherSecret(t *testing.T) {
	token, _ := NewJWTManager("one", time.Hour, "x").GenerateAccessToken(uuid.New(), "ana", nil)
	if _, err := NewJWTManager("two", time.Hour, "x").ValidateAccessToken(token); err == nil {
		t.Fatal("expected validation to fail with a different secret")
	}
}

func TestAllRolesMergesLegacyClaim(t *testing.T) {
	claims := &JWTClaims{Roles: []string{"sales"}, Role: "admin"}
	roles := claims.AllRoles()
	if len(roles) != 2 || roles[1] != "admin" {
		t.Errorf("got %v", roles)
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPasswordHash("s3cret", hash) {
		t.Error("expected password to match")
	}
	if CheckPasswordHash("other", hash) {
		t.Error("expected mismatch")
	}
}
