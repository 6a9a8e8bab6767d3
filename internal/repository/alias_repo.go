package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/elyaddev/Silo/internal/entity"
	"github.com/elyaddev/Silo/pkg/constant"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AliasRepo is the repository for discussion alias operations
type AliasRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewAliasRepo creates a new AliasRepo
func NewAliasRepo(db *gorm.DB, rdb *redis.Client) *AliasRepo {
	return &AliasRepo{db: db, rdb: rdb}
}

// Get gets the alias row for a (discussion, user) pair
func (r *AliasRepo) Get(ctx context.Context, discussionId, userId string) (*entity.DiscussionAlias, error) {
	var alias entity.DiscussionAlias
	err := r.db.WithContext(ctx).
		Where("discussion_id = ? AND user_id = ?", discussionId, userId).
		First(&alias).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alias, nil
}

// GetTx is Get inside a caller's transaction, so rows inserted earlier
// in the same transaction are visible.
func (r *AliasRepo) GetTx(ctx context.Context, tx *gorm.DB, discussionId, userId string) (*entity.DiscussionAlias, error) {
	var alias entity.DiscussionAlias
	err := tx.WithContext(ctx).
		Where("discussion_id = ? AND user_id = ?", discussionId, userId).
		First(&alias).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alias, nil
}

// AllocAliasNumber allocates the next alias integer for a discussion
// using Redis INCR. The counter starts at 1 for the first non-starter.
func (r *AliasRepo) AllocAliasNumber(ctx context.Context, discussionId string) (int32, error) {
	key := fmt.Sprintf(constant.RedisKeyAliasSeq(), discussionId)
	n, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}

// Create inserts an alias row. The unique (discussion_id, user_id) key
// makes concurrent first posts collapse onto one row.
func (r *AliasRepo) Create(ctx context.Context, tx *gorm.DB, alias *entity.DiscussionAlias) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "discussion_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(alias).Error
}

// GetByDiscussionAndUsers gets alias rows for several users in one discussion
func (r *AliasRepo) GetByDiscussionAndUsers(ctx context.Context, discussionId string, userIds []string) ([]*entity.DiscussionAlias, error) {
	if len(userIds) == 0 {
		return nil, nil
	}
	var aliases []*entity.DiscussionAlias
	err := r.db.WithContext(ctx).
		Where("discussion_id = ? AND user_id IN ?", discussionId, userIds).
		Find(&aliases).Error
	if err != nil {
		return nil, err
	}
	return aliases, nil
}
