package database

import (
	"context"
	"fmt"

	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/pkg/utils"
	"go.uber.org/zap"
)

// SeedAdmin creates the initial administrator when credentials are configured
// and no user with that username exists yet
func SeedAdmin(ctx context.Context, users domainRepo.UserRepository, username, password string, log *zap.Logger) error {
	if username == "" || password == "" {
		log.Warn("ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	existing, err := users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}
	if existing != nil {
		log.Debug("Admin user already exists", zap.String("username", username))
		return nil
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &entity.User{
		Username: username,
		Name:     "Administrator",
		Password: hashedPassword,
		Roles:    enum.NewRoleSet(enum.RoleAdmin),
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Info("Admin user created", zap.String("username", username))
	return nil
}
