package auth

import (
	"context"
	"errors"
	"fmt"

	"notebook-loans-backend/config"
	"notebook-loans-backend/internal/model"
)

// ErrNoBootstrapPassword is returned when the user table is empty and no
// administrator password is configured.
var ErrNoBootstrapPassword = errors.New("auth.bootstrap_admin.password is required on an empty user table")

// UserCreator is the part of the store EnsureAdmin needs.
type UserCreator interface {
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, u *model.User) error
}

// EnsureAdmin creates the configured administrator when no user exists yet.
// It reports whether an account was created.
func EnsureAdmin(ctx context.Context, users UserCreator, cfg config.BootstrapConfig) (bool, error) {
	n, err := users.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if cfg.Password == "" {
		return false, ErrNoBootstrapPassword
	}

	username := cfg.Username
	if username == "" {
		username = "admin"
	}
	hash, err := HashPassword(cfg.Password)
	if err != nil {
		return false, err
	}
	u := &model.User{
		Username:     username,
		Email:        cfg.Email,
		Role:         model.RoleAdmin,
		IsActive:     true,
		PasswordHash: hash,
	}
	if err := users.CreateUser(ctx, u); err != nil {
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}
	return true, nil
}
