package repository

import (
	"context"

	"github.com/elyaddev/Silo/internal/entity"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ActivityRepo is the repository for activity log and report operations
type ActivityRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewActivityRepo creates a new ActivityRepo
func NewActivityRepo(db *gorm.DB, rdb *redis.Client) *ActivityRepo {
	return &ActivityRepo{db: db, rdb: rdb}
}

// Create creates a new activity entry
func (r *ActivityRepo) Create(ctx context.Context, a *entity.Activity) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// ListByUser lists a user's activity, newest first
func (r *ActivityRepo) ListByUser(ctx context.Context, userId string, limit int) ([]*entity.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var activities []*entity.Activity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// CreateReport creates a new report row
func (r *ActivityRepo) CreateReport(ctx context.Context, report *entity.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}
