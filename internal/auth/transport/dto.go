package transport

import "time"

type SignUpRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	FullName   string `json:"fullName" validate:"required,max=120"`
	IsProvider bool   `json:"isProvider"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

type UpdateProfileRequest struct {
	FullName   *string `json:"fullName" validate:"omitempty,max=120"`
	AvatarURL  *string `json:"avatarUrl" validate:"omitempty,url"`
	Phone      *string `json:"phone" validate:"omitempty,max=32"`
	Location   *string `json:"location" validate:"omitempty,max=120"`
	IsProvider *bool   `json:"isProvider"`
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type ProfileResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	AvatarURL  *string   `json:"avatarUrl,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Location   *string   `json:"location,omitempty"`
	IsProvider bool      `json:"isProvider"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PublicProfileResponse omits contact details for viewing other users.
type PublicProfileResponse struct {
	ID         string  `json:"id"`
	FullName   string  `json:"fullName"`
	AvatarURL  *string `json:"avatarUrl,omitempty"`
	Location   *string `json:"location,omitempty"`
	IsProvider bool    `json:"isProvider"`
}
