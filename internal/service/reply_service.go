package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/elyaddev/Silo/internal/entity"
	"github.com/elyaddev/Silo/internal/repository"
	"github.com/elyaddev/Silo/pkg/constant"
	"github.com/elyaddev/Silo/pkg/errcode"
	"github.com/elyaddev/Silo/pkg/idgen"
	"github.com/mbeoliero/kit/log"
	"gorm.io/gorm"
)

// MaxReplyLength bounds reply content size
const MaxReplyLength = 4000

// ReplyService handles posting, listing and deleting discussion replies
type ReplyService struct {
	repos             *repository.Repositories
	messageRepo       *repository.MessageRepo
	discussionRepo    *repository.DiscussionRepo
	notificationRepo  *repository.NotificationRepo
	discussionService *DiscussionService
	activityService   *ActivityService
	publisher         RowPublisher
}

// NewReplyService creates a new ReplyService
func NewReplyService(repos *repository.Repositories, discussionService *DiscussionService, activityService *ActivityService) *ReplyService {
	return &ReplyService{
		repos:             repos,
		messageRepo:       repos.Message,
		discussionRepo:    repos.Discussion,
		notificationRepo:  repos.Notification,
		discussionService: discussionService,
		activityService:   activityService,
		publisher:         noopPublisher{},
	}
}

// SetPublisher wires the realtime publisher after construction
func (s *ReplyService) SetPublisher(p RowPublisher) {
	if p != nil {
		s.publisher = p
	}
}

// PostReplyRequest represents a reply submission
type PostReplyRequest struct {
	DiscussionId string `json:"discussion_id"`
	Content      string `json:"content"`
	ParentId     *int64 `json:"parent_id,omitempty"`
}

// PostReply posts a reply to a discussion. Threading is one level deep:
// replying to a nested reply re-parents the new reply onto the
// top-level parent.
func (s *ReplyService) PostReply(ctx context.Context, userId string, req *PostReplyRequest) (*entity.MessageInfo, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errcode.ErrEmptyContent
	}
	if len(content) > MaxReplyLength {
		return nil, errcode.ErrInvalidParam
	}

	discussion, err := s.discussionRepo.GetById(ctx, req.DiscussionId)
	if err != nil {
		log.CtxError(ctx, "get discussion failed: discussion_id=%s, error=%v", req.DiscussionId, err)
		return nil, errcode.ErrInternalServer
	}
	if discussion == nil {
		return nil, errcode.ErrDiscussionNotFound
	}

	var parent *entity.Message
	parentId := req.ParentId
	if parentId != nil {
		parent, err = s.messageRepo.GetById(ctx, *parentId)
		if err != nil {
			log.CtxError(ctx, "get parent reply failed: parent_id=%d, error=%v", *parentId, err)
			return nil, errcode.ErrInternalServer
		}
		if parent == nil || parent.DiscussionId != discussion.Id {
			return nil, errcode.ErrParentNotFound
		}
		// Flatten: a reply to a nested reply attaches to its top-level parent
		if parent.ParentId != nil {
			parentId = parent.ParentId
			top, err := s.messageRepo.GetById(ctx, *parentId)
			if err != nil {
				log.CtxError(ctx, "get top parent failed: parent_id=%d, error=%v", *parentId, err)
				return nil, errcode.ErrInternalServer
			}
			if top == nil {
				return nil, errcode.ErrParentNotFound
			}
		}
	}

	msgId, err := idgen.NextID()
	if err != nil {
		log.CtxError(ctx, "generate reply id failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	msg := &entity.Message{
		Id:           msgId,
		DiscussionId: discussion.Id,
		RoomId:       discussion.RoomId,
		ProfileId:    &userId,
		Content:      content,
		ParentId:     parentId,
	}

	notifications := s.buildNotifications(discussion, parent, msg, userId)

	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.discussionService.EnsureAlias(ctx, tx, discussion, userId); err != nil {
			return errcode.ErrAliasAssignFailed.Wrap(err)
		}
		if err := s.messageRepo.Create(ctx, tx, msg); err != nil {
			return err
		}
		return s.notificationRepo.Create(ctx, tx, notifications)
	})
	if err != nil {
		log.CtxError(ctx, "post reply failed: discussion_id=%s, error=%v", discussion.Id, err)
		if e, ok := err.(*errcode.Error); ok {
			return nil, e
		}
		return nil, errcode.ErrInternalServer
	}

	s.publisher.PublishRow(constant.TableMessages, constant.EventInsert, msg.ToMessageInfo(),
		map[string]string{"discussion_id": discussion.Id})
	for _, n := range notifications {
		s.publisher.PublishRow(constant.TableNotifications, constant.EventInsert, n.ToNotificationRow(),
			map[string]string{"recipient_id": n.RecipientId})
	}

	s.activityService.Log(ctx, userId, constant.ActivityReplyCreated, map[string]interface{}{
		"discussion_id": discussion.Id,
		"message_id":    strconv.FormatInt(msg.Id, 10),
	})

	log.CtxInfo(ctx, "reply posted: message_id=%d, discussion_id=%s", msg.Id, discussion.Id)
	return msg.ToMessageInfo(), nil
}

// buildNotifications decides who hears about a new reply. The starter
// gets reply_in_discussion, a threaded parent's author gets
// reply_to_you, and nobody is notified about their own reply. When the
// parent author is the starter only the more specific reply_to_you row
// is written.
func (s *ReplyService) buildNotifications(discussion *entity.Discussion, parent *entity.Message, msg *entity.Message, authorId string) []*entity.Notification {
	var notifications []*entity.Notification

	var parentAuthor string
	if parent != nil && parent.ProfileId != nil {
		parentAuthor = *parent.ProfileId
	}

	if parentAuthor != "" && parentAuthor != authorId {
		notifications = append(notifications, &entity.Notification{
			RecipientId:  parentAuthor,
			Type:         constant.NotifyReplyToYou,
			RoomId:       discussion.RoomId,
			DiscussionId: &discussion.Id,
			MessageId:    msg.Id,
			ActorId:      authorId,
		})
	}

	if discussion.StarterId != authorId && discussion.StarterId != parentAuthor {
		notifications = append(notifications, &entity.Notification{
			RecipientId:  discussion.StarterId,
			Type:         constant.NotifyReplyInDiscussion,
			RoomId:       discussion.RoomId,
			DiscussionId: &discussion.Id,
			MessageId:    msg.Id,
			ActorId:      authorId,
		})
	}

	return notifications
}

// ListReplies lists replies of a discussion ascending by creation time
func (s *ReplyService) ListReplies(ctx context.Context, discussionId string, before int64, limit int) ([]*entity.MessageInfo, error) {
	discussion, err := s.discussionRepo.GetById(ctx, discussionId)
	if err != nil {
		log.CtxError(ctx, "get discussion failed: discussion_id=%s, error=%v", discussionId, err)
		return nil, errcode.ErrInternalServer
	}
	if discussion == nil {
		return nil, errcode.ErrDiscussionNotFound
	}

	messages, err := s.messageRepo.ListByDiscussion(ctx, discussionId, before, limit)
	if err != nil {
		log.CtxError(ctx, "list replies failed: discussion_id=%s, error=%v", discussionId, err)
		return nil, errcode.ErrInternalServer
	}

	infos := make([]*entity.MessageInfo, 0, len(messages))
	for _, m := range messages {
		infos = append(infos, m.ToMessageInfo())
	}
	return infos, nil
}

// DeleteReply soft-deletes a reply. Only the author may delete, and
// deleting twice is a no-op.
func (s *ReplyService) DeleteReply(ctx context.Context, userId string, messageId int64) (*entity.MessageInfo, error) {
	msg, err := s.messageRepo.GetById(ctx, messageId)
	if err != nil {
		log.CtxError(ctx, "get reply failed: message_id=%d, error=%v", messageId, err)
		return nil, errcode.ErrInternalServer
	}
	if msg == nil {
		return nil, errcode.ErrReplyNotFound
	}
	if msg.ProfileId == nil || *msg.ProfileId != userId {
		return nil, errcode.ErrNotReplyAuthor
	}

	alreadyDeleted := msg.IsDeleted
	if !alreadyDeleted {
		if err := s.messageRepo.MarkDeleted(ctx, messageId); err != nil {
			log.CtxError(ctx, "mark reply deleted failed: message_id=%d, error=%v", messageId, err)
			return nil, errcode.ErrInternalServer
		}
		msg.IsDeleted = true
		msg.UpdatedAt = entity.NowUnixMilli()

		s.publisher.PublishRow(constant.TableMessages, constant.EventUpdate, msg.ToMessageInfo(),
			map[string]string{"discussion_id": msg.DiscussionId})

		log.CtxInfo(ctx, "reply deleted: message_id=%d, discussion_id=%s", messageId, msg.DiscussionId)
	}

	return msg.ToMessageInfo(), nil
}
