package dto

import "time"

// LoginInput is the body of POST /auth/login/.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (in *LoginInput) Decode(body []byte) error {
	_, err := decode(body, in, schema{
		fields: fieldSet{
			"username": str(&in.Username),
			"password": rawStr(&in.Password),
		},
		required: []string{"username", "password"},
	}, Create)
	return err
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// SubscriptionInput is a browser push subscription.
type SubscriptionInput struct {
	Endpoint string `json:"endpoint" validate:"required,url,max=2048"`
	P256DH   string `json:"p256dh" validate:"required"`
	Auth     string `json:"auth" validate:"required"`
}

func (in *SubscriptionInput) Decode(body []byte) error {
	_, err := decode(body, in, schema{
		fields: fieldSet{
			"endpoint": str(&in.Endpoint),
			"p256dh":   str(&in.P256DH),
			"auth":     str(&in.Auth),
		},
		required: []string{"endpoint", "p256dh", "auth"},
	}, Create)
	return err
}

// UnsubscribeInput names the subscription to drop.
type UnsubscribeInput struct {
	Endpoint string `json:"endpoint" validate:"required"`
}

func (in *UnsubscribeInput) Decode(body []byte) error {
	_, err := decode(body, in, schema{
		fields:   fieldSet{"endpoint": str(&in.Endpoint)},
		required: []string{"endpoint"},
	}, Create)
	return err
}

// Page is the paginated list envelope.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
