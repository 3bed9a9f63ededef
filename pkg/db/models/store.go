package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is a branch of the chain. The store code plus a user code forms the
// login identifier.
type Store struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string    `gorm:"column:code;not null;uniqueIndex"`
	Name        string    `gorm:"column:name;not null"`
	Address     *string   `gorm:"column:address"`
	Phone       *string   `gorm:"column:phone"`
	ManagerName *string   `gorm:"column:manager_name"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
