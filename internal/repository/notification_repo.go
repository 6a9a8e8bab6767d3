package repository

import (
	"context"

	"github.com/elyaddev/Silo/internal/entity"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NotificationRepo is the repository for notification operations
type NotificationRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewNotificationRepo creates a new NotificationRepo
func NewNotificationRepo(db *gorm.DB, rdb *redis.Client) *NotificationRepo {
	return &NotificationRepo{db: db, rdb: rdb}
}

// Create creates notification rows
func (r *NotificationRepo) Create(ctx context.Context, tx *gorm.DB, notifications []*entity.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&notifications).Error
}

// ListLatest lists the latest notifications for a user
func (r *NotificationRepo) ListLatest(ctx context.Context, recipientId string, limit int) ([]*entity.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var notifications []*entity.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientId).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// CountUnread counts unread notifications for a user
func (r *NotificationRepo) CountUnread(ctx context.Context, recipientId string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientId).
		Count(&count).Error
	return count, err
}

// MarkRead marks one notification as read
func (r *NotificationRepo) MarkRead(ctx context.Context, recipientId string, id int64, at int64) error {
	return r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("id = ? AND recipient_id = ? AND read_at IS NULL", id, recipientId).
		Update("read_at", at).Error
}

// MarkAllRead marks all unread notifications as read
func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipientId string, at int64) error {
	return r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientId).
		Update("read_at", at).Error
}
