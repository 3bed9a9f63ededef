package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/visionhut/optica-backend/pkg/db/models"
)

// Repository exposes the credential-store persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByLogin retrieves the active user matching (userCode, storeCode),
// joined against an active store. ErrRecordNotFound covers missing user,
// inactive user, and inactive or unknown store alike.
func (r *Repository) FindByLogin(ctx context.Context, userCode, storeCode string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN stores ON stores.id = users.store_id").
		Where("users.user_code = ? AND stores.code = ? AND users.is_active = ? AND stores.is_active = ?",
			userCode, storeCode, true, true).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByID loads an active user by UUID. Deactivated users are
// indistinguishable from missing ones.
func (r *Repository) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ? AND is_active = ?", id, true).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}
