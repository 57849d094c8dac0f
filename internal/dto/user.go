package dto

import (
	"time"

	"notebook-loans-backend/internal/model"
)

// UserInput is the writable part of a user payload. Password is write-only.
type UserInput struct {
	Username  string         `json:"username" validate:"required,max=150,username"`
	Email     string         `json:"email" validate:"omitempty,max=254,email"`
	FirstName string         `json:"first_name" validate:"max=150"`
	LastName  string         `json:"last_name" validate:"max=150"`
	Role      model.UserRole `json:"role" validate:"required,choice"`
	IsActive  bool           `json:"is_active"`
	Password  string         `json:"password" validate:"omitempty,min=8,max=128"`
}

// NewUserInput returns an input carrying the create defaults.
func NewUserInput() UserInput {
	return UserInput{Role: model.RoleTechnician, IsActive: true}
}

func (in *UserInput) binding(mode Mode) schema {
	required := []string{"username"}
	if mode == Create {
		required = append(required, "password")
	}
	return schema{
		fields: fieldSet{
			"username":   str(&in.Username),
			"email":      str(&in.Email),
			"first_name": str(&in.FirstName),
			"last_name":  str(&in.LastName),
			"role":       choice(&in.Role),
			"is_active":  boolean(&in.IsActive),
			"password":   rawStr(&in.Password),
		},
		required: required,
		readOnly: []string{"id", "date_joined", "last_login"},
	}
}

// Decode overlays body on in. Seed in with NewUserInput or UserInputFrom first.
func (in *UserInput) Decode(body []byte, mode Mode) error {
	_, err := decode(body, in, in.binding(mode), mode)
	return err
}

// Apply copies everything but the password onto u; hashing is the caller's job.
func (in UserInput) Apply(u *model.User) {
	u.Username = in.Username
	u.Email = in.Email
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.Role = in.Role
	u.IsActive = in.IsActive
}

func UserInputFrom(u *model.User) UserInput {
	return UserInput{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
	}
}

type UserResponse struct {
	ID         int64          `json:"id"`
	Username   string         `json:"username"`
	Email      string         `json:"email"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	Role       model.UserRole `json:"role"`
	IsActive   bool           `json:"is_active"`
	DateJoined time.Time      `json:"date_joined"`
	LastLogin  *time.Time     `json:"last_login"`
}

func NewUserResponse(u *model.User) UserResponse {
	var lastLogin *time.Time
	if u.LastLogin != nil {
		t := u.LastLogin.UTC()
		lastLogin = &t
	}
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		IsActive:   u.IsActive,
		DateJoined: u.DateJoined.UTC(),
		LastLogin:  lastLogin,
	}
}

func NewUserResponses(us []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(us))
	for i := range us {
		out = append(out, NewUserResponse(&us[i]))
	}
	return out
}
