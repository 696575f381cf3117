package postgres

import (
	"context"
	"errors"

	"github.com/villageofwisdom/genius-backend/internal/models"
	"github.com/villageofwisdom/genius-backend/internal/utils"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	ListByUser(ctx context.Context, userID string) ([]models.Profile, error)
	// Save persists the whole row; section/status/percent changes always go
	// through it together so they cannot drift apart.
	Save(ctx context.Context, p *models.Profile) error
}

type profileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Create(ctx context.Context, p *models.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &p, err
}

func (r *profileRepo) ListByUser(ctx context.Context, userID string) ([]models.Profile, error) {
	var rows []models.Profile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *profileRepo) Save(ctx context.Context, p *models.Profile) error {
	return r.db.WithContext(ctx).Save(p).Error
}
