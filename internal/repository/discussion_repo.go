package repository

import (
	"context"
	"errors"

	"github.com/elyaddev/Silo/internal/entity"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DiscussionRepo is the repository for discussion operations
type DiscussionRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewDiscussionRepo creates a new DiscussionRepo
func NewDiscussionRepo(db *gorm.DB, rdb *redis.Client) *DiscussionRepo {
	return &DiscussionRepo{db: db, rdb: rdb}
}

// Create creates a new discussion
func (r *DiscussionRepo) Create(ctx context.Context, tx *gorm.DB, d *entity.Discussion) error {
	return tx.WithContext(ctx).Create(d).Error
}

// GetById gets a discussion by id
func (r *DiscussionRepo) GetById(ctx context.Context, id string) (*entity.Discussion, error) {
	var d entity.Discussion
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// ListByRoom lists discussions in a room, newest first
func (r *DiscussionRepo) ListByRoom(ctx context.Context, roomId string, limit int) ([]*entity.Discussion, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var discussions []*entity.Discussion
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomId).
		Order("created_at DESC").
		Limit(limit).
		Find(&discussions).Error
	if err != nil {
		return nil, err
	}
	return discussions, nil
}

// GetByIds gets discussions by a list of ids
func (r *DiscussionRepo) GetByIds(ctx context.Context, ids []string) ([]*entity.Discussion, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var discussions []*entity.Discussion
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&discussions).Error
	if err != nil {
		return nil, err
	}
	return discussions, nil
}

// CountByRoom counts discussions in a room
func (r *DiscussionRepo) CountByRoom(ctx context.Context, roomId string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Discussion{}).
		Where("room_id = ?", roomId).
		Count(&count).Error
	return count, err
}

// CountReplies counts non-deleted replies in a discussion
func (r *DiscussionRepo) CountReplies(ctx context.Context, discussionId string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("discussion_id = ? AND is_deleted = ?", discussionId, false).
		Count(&count).Error
	return count, err
}

// SearchByWord finds discussions whose title or body contain the query
// as a substring. Word-boundary filtering happens in the service layer.
func (r *DiscussionRepo) SearchByWord(ctx context.Context, query string, limit int) ([]*entity.Discussion, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	like := "%" + query + "%"
	var discussions []*entity.Discussion
	err := r.db.WithContext(ctx).
		Where("title LIKE ? OR body LIKE ?", like, like).
		Order("created_at DESC").
		Limit(limit).
		Find(&discussions).Error
	if err != nil {
		return nil, err
	}
	return discussions, nil
}
