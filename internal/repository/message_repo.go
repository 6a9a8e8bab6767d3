package repository

import (
	"context"
	"errors"

	"github.com/elyaddev/Silo/internal/entity"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// MessageRepo is the repository for discussion reply operations
type MessageRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewMessageRepo creates a new MessageRepo
func NewMessageRepo(db *gorm.DB, rdb *redis.Client) *MessageRepo {
	return &MessageRepo{db: db, rdb: rdb}
}

// Create creates a new reply
func (r *MessageRepo) Create(ctx context.Context, tx *gorm.DB, msg *entity.Message) error {
	now := entity.NowUnixMilli()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	return tx.WithContext(ctx).Create(msg).Error
}

// GetById gets a reply by id
func (r *MessageRepo) GetById(ctx context.Context, id int64) (*entity.Message, error) {
	var msg entity.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// ListByDiscussion lists replies ascending by creation time, optionally
// only those created before a given timestamp (for paging backwards).
func (r *MessageRepo) ListByDiscussion(ctx context.Context, discussionId string, before int64, limit int) ([]*entity.Message, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}

	q := r.db.WithContext(ctx).Where("discussion_id = ?", discussionId)
	if before > 0 {
		q = q.Where("created_at < ?", before)
	}

	var messages []*entity.Message
	err := q.Order("created_at ASC, id ASC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkDeleted flips the soft-delete flag. Idempotent: flipping an
// already-deleted reply is a no-op.
func (r *MessageRepo) MarkDeleted(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"updated_at": entity.NowUnixMilli(),
		}).Error
}

// SearchByWord finds non-deleted replies whose content contains the
// query as a substring, newest first.
func (r *MessageRepo) SearchByWord(ctx context.Context, query string, limit int) ([]*entity.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var messages []*entity.Message
	err := r.db.WithContext(ctx).
		Where("content LIKE ? AND is_deleted = ?", "%"+query+"%", false).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
