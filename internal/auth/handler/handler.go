package handler

import (
	"errors"
	"net/http"

	"marketplace_backend/internal/auth/repository"
	"marketplace_backend/internal/auth/service"
	"marketplace_backend/internal/auth/transport"
	"marketplace_backend/platform/httpkit"
	"marketplace_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sign-up", h.SignUp)
	rg.POST("/sign-in", h.SignIn)
	rg.POST("/refresh", h.Refresh)
	rg.POST("/sign-out", h.SignOut)
}

func (h *Handler) SignUp(c *gin.Context) {
	var req transport.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	pair, err := h.svc.SignUp(c.Request.Context(), service.SignUpParams{
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		IsProvider: req.IsProvider,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			httpkit.Error(c, http.StatusConflict, err.Error(), nil)
			return
		}
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handler) SignIn(c *gin.Context) {
	var req transport.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	pair, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httpkit.Error(c, http.StatusUnauthorized, service.ErrInvalidCredentials.Error(), nil)
		return
	}

	httpkit.OK(c, transport.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	var req transport.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httpkit.Error(c, http.StatusUnauthorized, err.Error(), nil)
		return
	}

	httpkit.OK(c, transport.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handler) SignOut(c *gin.Context) {
	var req transport.SignOutRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		if err := h.svc.SignOut(c.Request.Context(), req.RefreshToken); err != nil {
			httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
	}

	httpkit.OK(c, gin.H{"message": "signed out"})
}

func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}

	account, err := h.svc.GetMe(c.Request.Context(), userID)
	if err != nil {
		httpkit.Error(c, http.StatusNotFound, err.Error(), nil)
		return
	}

	httpkit.OK(c, toProfileResponse(account))
}

func (h *Handler) UpdateMe(c *gin.Context) {
	userID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}

	var req transport.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	account, err := h.svc.UpdateMe(c.Request.Context(), userID, reqToProfileUpdate(req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPhone):
			httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrNotFound):
			httpkit.Error(c, http.StatusNotFound, err.Error(), nil)
		default:
			httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		}
		return
	}

	httpkit.OK(c, toProfileResponse(account))
}

func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := httpkit.CurrentUserID(c)
	if !ok {
		return
	}

	var req transport.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCurrentPassword) {
			httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	httpkit.OK(c, gin.H{"message": "password updated"})
}

func (h *Handler) GetPublicProfile(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	profile, err := h.svc.GetPublicProfile(c.Request.Context(), userID)
	if err != nil {
		httpkit.Error(c, http.StatusNotFound, err.Error(), nil)
		return
	}

	httpkit.OK(c, transport.PublicProfileResponse{
		ID:         profile.UserID.String(),
		FullName:   profile.FullName,
		AvatarURL:  profile.AvatarURL,
		Location:   profile.Location,
		IsProvider: profile.IsProvider,
	})
}

func toProfileResponse(account service.AccountProfile) transport.ProfileResponse {
	p := account.Profile
	return transport.ProfileResponse{
		ID:         p.UserID.String(),
		Email:      account.Email,
		FullName:   p.FullName,
		AvatarURL:  p.AvatarURL,
		Phone:      p.Phone,
		Location:   p.Location,
		IsProvider: p.IsProvider,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func reqToProfileUpdate(req transport.UpdateProfileRequest) repository.ProfileUpdate {
	return repository.ProfileUpdate{
		FullName:   req.FullName,
		AvatarURL:  req.AvatarURL,
		Phone:      req.Phone,
		Location:   req.Location,
		IsProvider: req.IsProvider,
	}
}
