package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"marketplace_backend/internal/auth/password"
	"marketplace_backend/internal/auth/repository"
	"marketplace_backend/internal/auth/token"
	"marketplace_backend/internal/events"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/phone"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTokenExpired = errors.New("token expired")
var ErrTokenInvalid = errors.New("token invalid")
var ErrEmailTaken = errors.New("email already in use")
var ErrInvalidCurrentPassword = errors.New("current password is incorrect")
var ErrInvalidPhone = errors.New("invalid phone number")
var ErrNotFound = errors.New("not found")

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"

	RoleCustomer = "customer"
	RoleProvider = "provider"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type SignUpParams struct {
	Email      string
	Password   string
	FullName   string
	IsProvider bool
}

type Service struct {
	repo repository.Repository
	cfg  config.AuthServiceConfig
	bus  events.Bus
	log  *logger.Logger
}

func New(repo repository.Repository, cfg config.AuthServiceConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, bus: bus, log: log}
}

// SignUp creates the account and signs the user straight in.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) (TokenPair, error) {
	hash, err := password.Hash(params.Password)
	if err != nil {
		return TokenPair{}, err
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	user, err := s.repo.CreateUser(ctx, email, hash, strings.TrimSpace(params.FullName), params.IsProvider)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return TokenPair{}, ErrEmailTaken
		}
		return TokenPair{}, err
	}

	s.bus.Publish(ctx, events.UserSignedUp{
		BaseEvent:  events.NewBaseEvent(),
		UserID:     user.ID,
		Email:      user.Email,
		FullName:   params.FullName,
		IsProvider: params.IsProvider,
	})

	return s.issueTokens(ctx, user.ID)
}

func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (TokenPair, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user.ID)
}

// Refresh rotates the refresh token: the presented token is revoked and a new
// pair is issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	hash := token.HashSHA256(refreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return TokenPair{}, ErrTokenInvalid
	}

	if time.Now().After(expiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return TokenPair{}, ErrTokenExpired
	}

	_ = s.repo.RevokeRefreshToken(ctx, hash)
	return s.issueTokens(ctx, userID)
}

func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	hash := token.HashSHA256(refreshToken)
	return s.repo.RevokeRefreshToken(ctx, hash)
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := password.Compare(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCurrentPassword
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	// Existing sessions stay valid until their access token expires, but no
	// new tokens can be minted from old refresh tokens.
	_ = s.repo.RevokeAllRefreshTokens(ctx, userID)
	return nil
}

type AccountProfile struct {
	Profile repository.Profile
	Email   string
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (AccountProfile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AccountProfile{}, ErrNotFound
		}
		return AccountProfile{}, err
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AccountProfile{}, ErrNotFound
		}
		return AccountProfile{}, err
	}

	return AccountProfile{Profile: profile, Email: user.Email}, nil
}

func (s *Service) GetPublicProfile(ctx context.Context, userID uuid.UUID) (repository.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Profile{}, ErrNotFound
	}
	return profile, err
}

func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, update repository.ProfileUpdate) (AccountProfile, error) {
	if update.Phone != nil && *update.Phone != "" {
		if !phone.IsValid(*update.Phone) {
			return AccountProfile{}, ErrInvalidPhone
		}
		normalized := phone.NormalizeE164(*update.Phone)
		update.Phone = &normalized
	}

	profile, err := s.repo.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AccountProfile{}, ErrNotFound
		}
		return AccountProfile{}, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return AccountProfile{}, err
	}

	return AccountProfile{Profile: profile, Email: user.Email}, nil
}

func (s *Service) issueTokens(ctx context.Context, userID uuid.UUID) (TokenPair, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return TokenPair{}, err
	}

	roles := []string{RoleCustomer}
	if profile.IsProvider {
		roles = append(roles, RoleProvider)
	}

	accessToken, err := s.signJWT(userID, roles, s.cfg.GetAccessTokenTTL(), accessTokenType, s.cfg.GetJWTAccessSecret())
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := token.GenerateRandomToken(48)
	if err != nil {
		return TokenPair{}, err
	}

	hash := token.HashSHA256(refreshToken)
	expiresAt := time.Now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, userID, hash, expiresAt); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *Service) signJWT(userID uuid.UUID, roles []string, ttl time.Duration, tokenType, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"type":  tokenType,
		"roles": roles,
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(secret))
}
