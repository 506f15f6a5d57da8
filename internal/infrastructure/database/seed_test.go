package database

import (
	"context"
	"testing"

	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/infrastructure/memory"
	"github.com/sangkips/repairshop-api/pkg/utils"
	"go.uber.org/zap"
)

func TestSeedAdminCreatesOnce(t *testing.T) {
	ctx := context.Background()
	users := memory.New().Users()

	if err := SeedAdmin(ctx, users, "admin", "pw", zap.NewNop()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := SeedAdmin(ctx, users, "admin", "other", zap.NewNop()); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	admin, _ := users.GetByUsername(ctx, "admin")
	if admin == nil {
		t.Fatal("expected admin user")
	}
	if !admin.HasRole(enum.RoleAdmin) {
		t.Errorf("expected admin role, got %v", admin.Roles)
	}
	if !utils.CheckPasswordHash("pw", admin.Password) {
		t.Error("second seed must not overwrite the password")
	}
}

func TestSeedAdminSkipsWithoutPassword(t *testing.T) {
	users := memory.New().Users()
	if err := SeedAdmin(context.Background(), users, "admin", "", zap.NewNop()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if u, _ := users.GetByUsername(context.Background(), "admin"); u != nil {
		t.Fatal("no user should be created")
	}
}
