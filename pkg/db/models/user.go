package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/visionhut/optica-backend/pkg/enums"
)

// User is a store-scoped identity. The user code is unique within its store;
// the pair (user_code, store) forms the login identifier.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserCode     string         `gorm:"column:user_code;not null;uniqueIndex:idx_users_store_user_code,priority:2"`
	DisplayName  string         `gorm:"column:display_name;not null"`
	Email        string         `gorm:"column:email;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'staff'"`
	Permissions  pq.StringArray `gorm:"column:permissions;type:text[]"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	StoreID      uuid.UUID      `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_users_store_user_code,priority:1"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
