package service

import (
	"context"

	"github.com/elyaddev/Silo/internal/entity"
	"github.com/elyaddev/Silo/internal/repository"
	"github.com/elyaddev/Silo/pkg/constant"
	"github.com/elyaddev/Silo/pkg/errcode"
	"github.com/mbeoliero/kit/log"
)

// NotificationService handles reply notifications
type NotificationService struct {
	notificationRepo *repository.NotificationRepo
	messageRepo      *repository.MessageRepo
	aliasRepo        *repository.AliasRepo
	publisher        RowPublisher
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repos *repository.Repositories) *NotificationService {
	return &NotificationService{
		notificationRepo: repos.Notification,
		messageRepo:      repos.Message,
		aliasRepo:        repos.Alias,
		publisher:        noopPublisher{},
	}
}

// SetPublisher wires the realtime publisher after construction
func (s *NotificationService) SetPublisher(p RowPublisher) {
	if p != nil {
		s.publisher = p
	}
}

// List returns the caller's latest notifications enriched with the
// triggering reply's preview and the actor's in-discussion alias. The
// actor's user id never leaves the server.
func (s *NotificationService) List(ctx context.Context, userId string, limit int) ([]*entity.NotificationItem, error) {
	notifications, err := s.notificationRepo.ListLatest(ctx, userId, limit)
	if err != nil {
		log.CtxError(ctx, "list notifications failed: user_id=%s, error=%v", userId, err)
		return nil, errcode.ErrInternalServer
	}

	items := make([]*entity.NotificationItem, 0, len(notifications))
	for _, n := range notifications {
		item := &entity.NotificationItem{
			Id:           n.Id,
			Type:         n.Type,
			RoomId:       n.RoomId,
			DiscussionId: n.DiscussionId,
			MessageId:    n.MessageId,
			ReadAt:       n.ReadAt,
			CreatedAt:    n.CreatedAt,
		}

		msg, err := s.messageRepo.GetById(ctx, n.MessageId)
		if err != nil {
			log.CtxWarn(ctx, "get notification message failed: message_id=%d, error=%v", n.MessageId, err)
		}
		if msg != nil && !msg.IsDeleted {
			item.MessagePreview = previewText(msg.Content)
		}

		if n.DiscussionId != nil {
			alias, err := s.aliasRepo.Get(ctx, *n.DiscussionId, n.ActorId)
			if err != nil {
				log.CtxWarn(ctx, "get actor alias failed: discussion_id=%s, error=%v", *n.DiscussionId, err)
			}
			if alias != nil {
				item.ActorIsOp = alias.IsOp
				item.ActorAlias = alias.Alias
			}
		}

		items = append(items, item)
	}
	return items, nil
}

// CountUnread counts the caller's unread notifications
func (s *NotificationService) CountUnread(ctx context.Context, userId string) (int64, error) {
	count, err := s.notificationRepo.CountUnread(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "count unread notifications failed: user_id=%s, error=%v", userId, err)
		return 0, errcode.ErrInternalServer
	}
	return count, nil
}

// MarkRead marks one notification as read. Marking an already-read or
// foreign notification is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, userId string, notificationId int64) error {
	now := entity.NowUnixMilli()
	if err := s.notificationRepo.MarkRead(ctx, userId, notificationId, now); err != nil {
		log.CtxError(ctx, "mark notification read failed: id=%d, error=%v", notificationId, err)
		return errcode.ErrInternalServer
	}

	s.publisher.PublishRow(constant.TableNotifications, constant.EventUpdate,
		map[string]interface{}{"id": notificationId, "recipient_id": userId, "read_at": now},
		map[string]string{"recipient_id": userId})
	return nil
}

// MarkAllRead marks every unread notification of the caller as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userId string) error {
	now := entity.NowUnixMilli()
	if err := s.notificationRepo.MarkAllRead(ctx, userId, now); err != nil {
		log.CtxError(ctx, "mark all notifications read failed: user_id=%s, error=%v", userId, err)
		return errcode.ErrInternalServer
	}

	s.publisher.PublishRow(constant.TableNotifications, constant.EventUpdate,
		map[string]interface{}{"recipient_id": userId, "read_at": now},
		map[string]string{"recipient_id": userId})
	return nil
}
