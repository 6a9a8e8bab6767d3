package repository

import (
	"context"
	"errors"

	"github.com/elyaddev/Silo/internal/entity"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ProfileRepo is the repository for profile operations
type ProfileRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewProfileRepo creates a new ProfileRepo
func NewProfileRepo(db *gorm.DB, rdb *redis.Client) *ProfileRepo {
	return &ProfileRepo{db: db, rdb: rdb}
}

// Create creates a new profile
func (r *ProfileRepo) Create(ctx context.Context, p *entity.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// GetById gets a profile by id
func (r *ProfileRepo) GetById(ctx context.Context, id string) (*entity.Profile, error) {
	var p entity.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Exists checks if a profile exists
func (r *ProfileRepo) Exists(ctx context.Context, id string) (bool, error) {
	var p entity.Profile
	err := r.db.WithContext(ctx).Select("id").Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Update updates profile fields
func (r *ProfileRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&entity.Profile{}).Where("id = ?", id).Updates(updates).Error
}

// GetByIds gets profiles by a list of ids
func (r *ProfileRepo) GetByIds(ctx context.Context, ids []string) ([]*entity.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var profiles []*entity.Profile
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
