package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"notebook-loans-backend/internal/model"
	"notebook-loans-backend/internal/query"
)

const userResource = "Usuário"

var userColumns = []string{
	"username", "email", "first_name", "last_name", "role", "is_active", "password_hash",
}

func userUniques(u *model.User) []uniqueField {
	return []uniqueField{{column: "username", value: u.Username}}
}

func (s *gormStore) ListUsers(ctx context.Context, q query.Query) ([]model.User, int64, error) {
	return list[model.User](ctx, s.db, UserFields, q)
}

func (s *gormStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, userResource, id)
	}
	return &u, nil
}

func (s *gormStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err, userResource, username)
	}
	return &u, nil
}

func (s *gormStore) CreateUser(ctx context.Context, u *model.User) error {
	u.ID = 0
	u.OnCreate(s.timestamp())
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, &model.User{}, userResource, 0, userUniques(u)...); err != nil {
			return err
		}
		if err := tx.Create(u).Error; err != nil {
			return conflictFrom(fmt.Errorf("create user: %w", err), userResource, userUniques(u)...)
		}
		return nil
	})
}

func (s *gormStore) UpdateUser(ctx context.Context, u *model.User) error {
	u.OnUpdate(s.timestamp())
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, &model.User{}, userResource, u.ID, userUniques(u)...); err != nil {
			return err
		}
		res := tx.Model(u).Select(userColumns).Updates(u)
		if res.Error != nil {
			return conflictFrom(fmt.Errorf("update user %d: %w", u.ID, res.Error), userResource, userUniques(u)...)
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, userResource, u.ID)
		}
		return nil
	})
}

// DeleteUser also drops the user's push subscriptions.
func (s *gormStore) DeleteUser(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.PushSubscription{}).Error; err != nil {
			return fmt.Errorf("delete subscriptions of user %d: %w", id, err)
		}
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete user %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, userResource, id)
		}
		return nil
	})
}

func (s *gormStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *gormStore) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	at = at.UTC().Truncate(time.Microsecond)
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_login", at).Error; err != nil {
		return fmt.Errorf("touch last login of user %d: %w", id, err)
	}
	return nil
}
