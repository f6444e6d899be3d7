package handler

import (
	"time"

	"github.com/adboard/board-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type credentialsRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=25"`
	Password string `json:"password" form:"password" validate:"required"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// --- Users ---

type profileResponse struct {
	*domain.User
	Advertisements []*domain.Advertisement `json:"advertisements"`
}

type updateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=25"`
	Password *string `json:"password" validate:"omitempty,min=1"`
	Fullname *string `json:"fullname" validate:"omitempty,max=50"`
	Email    *string `json:"email"    validate:"omitempty,email,max=50"`
}

type adminUpdateRequest struct {
	Role     *string `json:"role"      validate:"omitempty,oneof=USER ADMIN MODERATOR"`
	IsActive *bool   `json:"is_active"`
}

// --- Advertisements ---

type listAdvertisementsQuery struct {
	Group string `query:"group" json:"group" validate:"omitempty,oneof=SELL BUY SERVICE"`
	Page  int    `query:"page"  json:"page"  validate:"omitempty,min=1"`
	Limit int    `query:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
}

type listAdvertisementsResponse struct {
	Items      []*domain.Advertisement `json:"items"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"total_pages"`
}

type createAdvertisementRequest struct {
	Title string `json:"title" validate:"required,min=3,max=50"`
	Body  string `json:"body"  validate:"max=2500"`
	Group string `json:"group" validate:"omitempty,oneof=SELL BUY SERVICE"`
}

type updateAdvertisementRequest struct {
	Title    *string `json:"title"     validate:"omitempty,min=3,max=50"`
	Body     *string `json:"body"      validate:"omitempty,max=2500"`
	Group    *string `json:"group"     validate:"omitempty,oneof=SELL BUY SERVICE"`
	IsActive *bool   `json:"is_active"`
}

// --- Comments ---

type commentRequest struct {
	Body string `json:"body" validate:"required,max=500"`
}
