package model

import "time"

// User is an operator of the inventory: an administrator or a technician.
type User struct {
	ID           int64      `gorm:"primaryKey"`
	Username     string     `gorm:"size:150;uniqueIndex;not null"`
	Email        string     `gorm:"size:254;not null"`
	FirstName    string     `gorm:"size:150;not null"`
	LastName     string     `gorm:"size:150;not null"`
	Role         UserRole   `gorm:"size:16;not null"`
	IsActive     bool       `gorm:"not null"`
	PasswordHash string     `gorm:"size:255;not null"`
	DateJoined   time.Time  `gorm:"not null"`
	LastLogin    *time.Time `gorm:"index"`
}

func (u *User) OnCreate(now time.Time) { u.DateJoined = now }

func (u *User) OnUpdate(time.Time) {}

// IsAdmin reports whether u may manage users and delete loans.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
