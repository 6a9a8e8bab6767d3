package repository

import (
	"context"
	"errors"

	"github.com/elyaddev/Silo/internal/entity"
	"github.com/elyaddev/Silo/pkg/constant"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DirectRepo is the repository for direct message operations
type DirectRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewDirectRepo creates a new DirectRepo
func NewDirectRepo(db *gorm.DB, rdb *redis.Client) *DirectRepo {
	return &DirectRepo{db: db, rdb: rdb}
}

// ===== Requests =====

// CreateRequest creates a new direct request
func (r *DirectRepo) CreateRequest(ctx context.Context, req *entity.DirectRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// GetRequest gets a request by id
func (r *DirectRepo) GetRequest(ctx context.Context, id string) (*entity.DirectRequest, error) {
	var req entity.DirectRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// GetPendingBetween finds a pending request between two users in either direction
func (r *DirectRepo) GetPendingBetween(ctx context.Context, userA, userB string) (*entity.DirectRequest, error) {
	var req entity.DirectRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND ((requester_id = ? AND requested_id = ?) OR (requester_id = ? AND requested_id = ?))",
			constant.RequestStatusPending, userA, userB, userB, userA).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// ListPendingFor lists pending incoming requests for a user
func (r *DirectRepo) ListPendingFor(ctx context.Context, userId string) ([]*entity.DirectRequest, error) {
	var reqs []*entity.DirectRequest
	err := r.db.WithContext(ctx).
		Where("requested_id = ? AND status = ?", userId, constant.RequestStatusPending).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// UpdateRequest updates request fields
func (r *DirectRepo) UpdateRequest(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error {
	return tx.WithContext(ctx).Model(&entity.DirectRequest{}).Where("id = ?", id).Updates(updates).Error
}

// ===== Conversations and members =====

// CreateConversation creates a conversation with its two members
func (r *DirectRepo) CreateConversation(ctx context.Context, tx *gorm.DB, conv *entity.DirectConversation, userA, userB string) error {
	if err := tx.WithContext(ctx).Create(conv).Error; err != nil {
		return err
	}
	members := []*entity.DirectMember{
		{ConversationId: conv.Id, UserId: userA},
		{ConversationId: conv.Id, UserId: userB},
	}
	return tx.WithContext(ctx).Create(&members).Error
}

// GetMember gets a member row for (conversation, user)
func (r *DirectRepo) GetMember(ctx context.Context, conversationId, userId string) (*entity.DirectMember, error) {
	var m entity.DirectMember
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationId, userId).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// GetMembers gets all member rows of a conversation
func (r *DirectRepo) GetMembers(ctx context.Context, conversationId string) ([]*entity.DirectMember, error) {
	var members []*entity.DirectMember
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ListActiveMemberships lists conversations the user has not left
func (r *DirectRepo) ListActiveMemberships(ctx context.Context, userId string) ([]*entity.DirectMember, error) {
	var members []*entity.DirectMember
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND left_at IS NULL", userId).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// UpdateLastReadAt bumps the member's read marker
func (r *DirectRepo) UpdateLastReadAt(ctx context.Context, conversationId, userId string, at int64) error {
	return r.db.WithContext(ctx).Model(&entity.DirectMember{}).
		Where("conversation_id = ? AND user_id = ?", conversationId, userId).
		Update("last_read_at", at).Error
}

// MarkLeft marks the member as having left the conversation
func (r *DirectRepo) MarkLeft(ctx context.Context, conversationId, userId string, at int64) error {
	return r.db.WithContext(ctx).Model(&entity.DirectMember{}).
		Where("conversation_id = ? AND user_id = ?", conversationId, userId).
		Update("left_at", at).Error
}

// ===== Messages =====

// CreateMessage creates a new direct message
func (r *DirectRepo) CreateMessage(ctx context.Context, tx *gorm.DB, msg *entity.DirectMessage) error {
	now := entity.NowUnixMilli()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	return tx.WithContext(ctx).Create(msg).Error
}

// GetMessage gets a direct message by id
func (r *DirectRepo) GetMessage(ctx context.Context, id int64) (*entity.DirectMessage, error) {
	var msg entity.DirectMessage
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// ListMessages lists messages in a conversation ascending by creation time
func (r *DirectRepo) ListMessages(ctx context.Context, conversationId string, before int64, limit int) ([]*entity.DirectMessage, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}

	q := r.db.WithContext(ctx).Where("conversation_id = ?", conversationId)
	if before > 0 {
		q = q.Where("created_at < ?", before)
	}

	var messages []*entity.DirectMessage
	err := q.Order("created_at ASC, id ASC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// GetLastMessage gets the most recent message in a conversation
func (r *DirectRepo) GetLastMessage(ctx context.Context, conversationId string) (*entity.DirectMessage, error) {
	var msg entity.DirectMessage
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// CountUnread counts messages from others newer than the member's read marker
func (r *DirectRepo) CountUnread(ctx context.Context, conversationId, userId string, lastReadAt int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.DirectMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND created_at > ?", conversationId, userId, lastReadAt).
		Count(&count).Error
	return count, err
}

// MarkMessageDeleted flips the soft-delete flag on a direct message
func (r *DirectRepo) MarkMessageDeleted(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&entity.DirectMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"updated_at": entity.NowUnixMilli(),
		}).Error
}
