package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"notebook-loans-backend/config"
	"notebook-loans-backend/internal/model"
)

type fakeUsers struct {
	count   int64
	created []*model.User
}

func (f *fakeUsers) CountUsers(context.Context) (int64, error) { return f.count, nil }

func (f *fakeUsers) CreateUser(_ context.Context, u *model.User) error {
	f.created = append(f.created, u)
	return nil
}

func TestEnsureAdmin(t *testing.T) {
	Cost = bcrypt.MinCost

	tests := []struct {
		name        string
		count       int64
		cfg         config.BootstrapConfig
		wantCreated bool
		wantErr     error
		wantName    string
	}{
		{
			name:        "creates on empty table",
			cfg:         config.BootstrapConfig{Username: "root", Password: "s3nha-forte", Email: "ti@example.com"},
			wantCreated: true,
			wantName:    "root",
		},
		{
			name:        "default username",
			cfg:         config.BootstrapConfig{Password: "s3nha-forte"},
			wantCreated: true,
			wantName:    "admin",
		},
		{
			name:  "users already exist",
			count: 3,
			cfg:   config.BootstrapConfig{Password: "s3nha-forte"},
		},
		{
			name:    "missing password",
			wantErr: ErrNoBootstrapPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsers{count: tt.count}
			created, err := EnsureAdmin(context.Background(), users, tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)
			if !tt.wantCreated {
				assert.Empty(t, users.created)
				return
			}
			require.Len(t, users.created, 1)
			u := users.created[0]
			assert.Equal(t, tt.wantName, u.Username)
			assert.Equal(t, model.RoleAdmin, u.Role)
			assert.True(t, u.IsActive)
			assert.NoError(t, CheckPassword(u.PasswordHash, tt.cfg.Password))
		})
	}
}
