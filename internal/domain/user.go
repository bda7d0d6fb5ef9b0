package domain

import (
	"context"
	"time"
)

const (
	RoleAdmin     = "admin"
	RoleRecruiter = "recruiter"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Nombre       string    `json:"nombre"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SignInResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type AuthUsecase interface {
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	GetCurrentUser(ctx context.Context, id string) (*User, error)
	// Register creates a user with a bcrypt hash of password. Used for seeding.
	Register(ctx context.Context, email, nombre, password, role string) (*User, error)
}
