package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore provides account and profile operations.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash, fullName string, isProvider bool) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (Profile, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// TokenStore provides refresh token persistence.
type TokenStore interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, time.Time, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

// Repository combines all auth repository operations.
type Repository interface {
	UserStore
	TokenStore
}

var _ Repository = (*Repo)(nil)
