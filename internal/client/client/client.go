package client

import (
	"context"
	"time"
)

// Client is the transport contract of the remote auth service.
type Client interface {
	Close() error
	Register(ctx context.Context, email, password string) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	// Health checks the conventional health endpoint. Any 2xx is healthy.
	Health(ctx context.Context) error
	// ProbeRoot requests the service root. A 404 still proves a live server.
	ProbeRoot(ctx context.Context) error
	ListUsers(ctx context.Context) ([]RemoteUser, error)
}

// RemoteUser is the user record returned by the service.
type RemoteUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse is the body of a successful register or login call.
type AuthResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	User    RemoteUser `json:"user"`
	Token   string     `json:"token,omitempty"`
}
