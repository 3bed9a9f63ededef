package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/visionhut/optica-backend/pkg/db/models"
	"github.com/visionhut/optica-backend/pkg/enums"
)

// UserDTO is the transport shape. It never carries the password hash.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	UserCode    string         `json:"user_code"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Role        enums.UserRole `json:"role"`
	Permissions []string       `json:"permissions,omitempty"`
	IsActive    bool           `json:"is_active"`
	StoreID     uuid.UUID      `json:"store_id"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	UserCode     string
	DisplayName  string
	Email        string
	Role         enums.UserRole
	Permissions  []string
	PasswordHash string
	StoreID      uuid.UUID
	IsActive     *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		UserCode:    u.UserCode,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Role:        u.Role,
		Permissions: append([]string(nil), []string(u.Permissions)...),
		IsActive:    u.IsActive,
		StoreID:     u.StoreID,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}

	return &models.User{
		UserCode:     c.UserCode,
		DisplayName:  c.DisplayName,
		Email:        c.Email,
		Role:         c.Role,
		Permissions:  pq.StringArray(append([]string(nil), c.Permissions...)),
		PasswordHash: c.PasswordHash,
		IsActive:     isActive,
		StoreID:      c.StoreID,
	}
}
