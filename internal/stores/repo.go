package stores

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/visionhut/optica-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, store *models.Store) (*models.Store, error) {
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return nil, err
	}

	return store, nil
}

// FindActiveByCode resolves a store by its human-facing code, skipping
// deactivated stores.
func (r *Repository) FindActiveByCode(ctx context.Context, code string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		First(&store, "code = ? AND is_active = ?", code, true).Error
	if err != nil {
		return nil, err
	}

	return &store, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return &store, nil
}
