package auth

import (
	"github.com/visionhut/optica-backend/internal/users"
)

type LoginRequest struct {
	UserCode  string `json:"user_code" validate:"required"`
	Password  string `json:"password" validate:"required"`
	StoreCode string `json:"store_code" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LoginResponse struct {
	User         *users.UserDTO `json:"user"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    int64          `json:"expires_in"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
