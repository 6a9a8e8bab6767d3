package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/elyaddev/Silo/internal/entity"
	"github.com/elyaddev/Silo/internal/repository"
	"github.com/elyaddev/Silo/pkg/constant"
	"github.com/elyaddev/Silo/pkg/errcode"
	"github.com/elyaddev/Silo/pkg/idgen"
	"github.com/google/uuid"
	"github.com/mbeoliero/kit/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// MaxDirectMessageLength bounds DM content size
const MaxDirectMessageLength = 4000

// unreadCacheTTL is how long a computed total unread count is trusted
const unreadCacheTTL = 10 * time.Second

// DirectService handles DM requests, conversations and messages
type DirectService struct {
	repos           *repository.Repositories
	directRepo      *repository.DirectRepo
	profileRepo     *repository.ProfileRepo
	activityService *ActivityService
	publisher       RowPublisher
	rdb             *redis.Client
}

// NewDirectService creates a new DirectService
func NewDirectService(repos *repository.Repositories, activityService *ActivityService) *DirectService {
	return &DirectService{
		repos:           repos,
		directRepo:      repos.Direct,
		profileRepo:     repos.Profile,
		activityService: activityService,
		publisher:       noopPublisher{},
		rdb:             repos.Redis,
	}
}

// SetPublisher wires the realtime publisher after construction
func (s *DirectService) SetPublisher(p RowPublisher) {
	if p != nil {
		s.publisher = p
	}
}

// ===== Requests =====

// SendRequest creates a pending DM request toward another user
func (s *DirectService) SendRequest(ctx context.Context, requesterId, requestedId string) (*entity.DirectRequest, error) {
	if requestedId == "" {
		return nil, errcode.ErrInvalidParam
	}
	if requestedId == requesterId {
		return nil, errcode.ErrRequestSelf
	}

	exists, err := s.profileRepo.Exists(ctx, requestedId)
	if err != nil {
		log.CtxError(ctx, "check profile exists failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if !exists {
		return nil, errcode.ErrUserNotFound
	}

	pending, err := s.directRepo.GetPendingBetween(ctx, requesterId, requestedId)
	if err != nil {
		log.CtxError(ctx, "check pending request failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if pending != nil {
		return nil, errcode.ErrRequestExists
	}

	req := &entity.DirectRequest{
		Id:          uuid.New().String(),
		RequesterId: requesterId,
		RequestedId: requestedId,
		Status:      constant.RequestStatusPending,
	}
	if err := s.directRepo.CreateRequest(ctx, req); err != nil {
		log.CtxError(ctx, "create request failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	log.CtxInfo(ctx, "dm request sent: request_id=%s, requester_id=%s, requested_id=%s", req.Id, requesterId, requestedId)
	return req, nil
}

// RespondRequest decides a pending request. Accepting creates the
// conversation with both members in one transaction; the decision is
// final either way.
func (s *DirectService) RespondRequest(ctx context.Context, userId, requestId, action string) (*entity.DirectRequest, error) {
	req, err := s.directRepo.GetRequest(ctx, requestId)
	if err != nil {
		log.CtxError(ctx, "get request failed: request_id=%s, error=%v", requestId, err)
		return nil, errcode.ErrInternalServer
	}
	if req == nil {
		return nil, errcode.ErrRequestNotFound
	}
	if !req.IsPending() {
		return nil, errcode.ErrRequestAlreadyDecided
	}

	var status string
	switch action {
	case "accept":
		status = constant.RequestStatusAccepted
	case "decline":
		status = constant.RequestStatusDeclined
	case "block":
		status = constant.RequestStatusBlocked
	case "cancel":
		status = constant.RequestStatusCanceled
	default:
		return nil, errcode.ErrInvalidParam
	}

	// Only the requested user decides; only the requester cancels
	if status == constant.RequestStatusCanceled {
		if req.RequesterId != userId {
			return nil, errcode.ErrNoPermission
		}
	} else if req.RequestedId != userId {
		return nil, errcode.ErrNoPermission
	}

	now := entity.NowUnixMilli()
	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":     status,
			"decided_at": now,
		}

		if status == constant.RequestStatusAccepted {
			conv := &entity.DirectConversation{Id: uuid.New().String()}
			if err := s.directRepo.CreateConversation(ctx, tx, conv, req.RequesterId, req.RequestedId); err != nil {
				return err
			}
			updates["conversation_id"] = conv.Id
			req.ConversationId = &conv.Id
		}

		return s.directRepo.UpdateRequest(ctx, tx, req.Id, updates)
	})
	if err != nil {
		log.CtxError(ctx, "respond request failed: request_id=%s, error=%v", requestId, err)
		return nil, errcode.ErrInternalServer
	}

	req.Status = status
	req.DecidedAt = &now

	log.CtxInfo(ctx, "dm request decided: request_id=%s, status=%s", requestId, status)
	return req, nil
}

// ListPendingRequests lists pending incoming requests for the caller
func (s *DirectService) ListPendingRequests(ctx context.Context, userId string) ([]*entity.DirectRequest, error) {
	reqs, err := s.directRepo.ListPendingFor(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "list pending requests failed: user_id=%s, error=%v", userId, err)
		return nil, errcode.ErrInternalServer
	}
	return reqs, nil
}

// ===== Conversations =====

// requireActiveMember loads the caller's member row and rejects
// non-members and members who left
func (s *DirectService) requireActiveMember(ctx context.Context, conversationId, userId string) (*entity.DirectMember, error) {
	member, err := s.directRepo.GetMember(ctx, conversationId, userId)
	if err != nil {
		log.CtxError(ctx, "get member failed: conversation_id=%s, error=%v", conversationId, err)
		return nil, errcode.ErrInternalServer
	}
	if member == nil || !member.IsActive() {
		return nil, errcode.ErrNotConversationMember
	}
	return member, nil
}

// ListSummaries builds the DM list: one row per active conversation
// with peer, last message preview and the caller's unread count,
// ordered by most recent message.
func (s *DirectService) ListSummaries(ctx context.Context, userId string) ([]*entity.ConversationSummary, error) {
	memberships, err := s.directRepo.ListActiveMemberships(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "list memberships failed: user_id=%s, error=%v", userId, err)
		return nil, errcode.ErrInternalServer
	}

	summaries := make([]*entity.ConversationSummary, 0, len(memberships))
	for _, m := range memberships {
		members, err := s.directRepo.GetMembers(ctx, m.ConversationId)
		if err != nil {
			log.CtxWarn(ctx, "get members failed: conversation_id=%s, error=%v", m.ConversationId, err)
			continue
		}
		peerId := ""
		for _, other := range members {
			if other.UserId != userId {
				peerId = other.UserId
				break
			}
		}

		summary := &entity.ConversationSummary{
			ConversationId: m.ConversationId,
			PeerId:         peerId,
		}

		last, err := s.directRepo.GetLastMessage(ctx, m.ConversationId)
		if err != nil {
			log.CtxWarn(ctx, "get last message failed: conversation_id=%s, error=%v", m.ConversationId, err)
		}
		if last != nil {
			summary.LastMessageId = &last.Id
			summary.LastMessageAt = last.CreatedAt
			if last.IsDeleted {
				summary.LastPreview = ""
			} else {
				summary.LastPreview = previewText(last.Content)
			}
		}

		count, err := s.directRepo.CountUnread(ctx, m.ConversationId, userId, m.LastReadAt)
		if err != nil {
			log.CtxWarn(ctx, "count unread failed: conversation_id=%s, error=%v", m.ConversationId, err)
		}
		summary.UnreadCount = count

		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessageAt > summaries[j].LastMessageAt
	})
	return summaries, nil
}

// TotalUnread returns the caller's total DM unread count across all
// active conversations. The result is cached briefly in Redis; writes
// that change it invalidate the cache.
func (s *DirectService) TotalUnread(ctx context.Context, userId string) (int64, error) {
	key := fmt.Sprintf(constant.RedisKeyDMUnread(), userId)
	if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
		if n, err := strconv.ParseInt(cached, 10, 64); err == nil {
			return n, nil
		}
	}

	memberships, err := s.directRepo.ListActiveMemberships(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "list memberships failed: user_id=%s, error=%v", userId, err)
		return 0, errcode.ErrInternalServer
	}

	var total int64
	for _, m := range memberships {
		count, err := s.directRepo.CountUnread(ctx, m.ConversationId, userId, m.LastReadAt)
		if err != nil {
			log.CtxWarn(ctx, "count unread failed: conversation_id=%s, error=%v", m.ConversationId, err)
			continue
		}
		total += count
	}

	s.rdb.Set(ctx, key, strconv.FormatInt(total, 10), unreadCacheTTL)
	return total, nil
}

// invalidateUnread drops a user's cached unread total
func (s *DirectService) invalidateUnread(ctx context.Context, userId string) {
	key := fmt.Sprintf(constant.RedisKeyDMUnread(), userId)
	s.rdb.Del(ctx, key)
}

// MarkRead moves the caller's read marker to now
func (s *DirectService) MarkRead(ctx context.Context, userId, conversationId string) error {
	if _, err := s.requireActiveMember(ctx, conversationId, userId); err != nil {
		return err
	}

	if err := s.directRepo.UpdateLastReadAt(ctx, conversationId, userId, entity.NowUnixMilli()); err != nil {
		log.CtxError(ctx, "mark read failed: conversation_id=%s, error=%v", conversationId, err)
		return errcode.ErrInternalServer
	}

	s.invalidateUnread(ctx, userId)
	return nil
}

// LeaveConversation marks the caller as having left. Messages remain
// for the other member.
func (s *DirectService) LeaveConversation(ctx context.Context, userId, conversationId string) error {
	if _, err := s.requireActiveMember(ctx, conversationId, userId); err != nil {
		return err
	}

	if err := s.directRepo.MarkLeft(ctx, conversationId, userId, entity.NowUnixMilli()); err != nil {
		log.CtxError(ctx, "leave conversation failed: conversation_id=%s, error=%v", conversationId, err)
		return errcode.ErrInternalServer
	}

	s.invalidateUnread(ctx, userId)
	log.CtxInfo(ctx, "left conversation: conversation_id=%s, user_id=%s", conversationId, userId)
	return nil
}

// ===== Messages =====

// SendMessageRequest represents a DM submission
type SendMessageRequest struct {
	ConversationId   string `json:"conversation_id"`
	Content          string `json:"content"`
	ReplyToMessageId *int64 `json:"reply_to_message_id,omitempty"`
}

// SendMessage sends a DM into a conversation the caller is an active
// member of
func (s *DirectService) SendMessage(ctx context.Context, userId string, req *SendMessageRequest) (*entity.DirectMessageInfo, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errcode.ErrEmptyContent
	}
	if len(content) > MaxDirectMessageLength {
		return nil, errcode.ErrInvalidParam
	}

	if _, err := s.requireActiveMember(ctx, req.ConversationId, userId); err != nil {
		return nil, err
	}

	if req.ReplyToMessageId != nil {
		quoted, err := s.directRepo.GetMessage(ctx, *req.ReplyToMessageId)
		if err != nil {
			log.CtxError(ctx, "get quoted message failed: message_id=%d, error=%v", *req.ReplyToMessageId, err)
			return nil, errcode.ErrInternalServer
		}
		if quoted == nil || quoted.ConversationId != req.ConversationId {
			return nil, errcode.ErrMessageNotFound
		}
	}

	msgId, err := idgen.NextID()
	if err != nil {
		log.CtxError(ctx, "generate message id failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	msg := &entity.DirectMessage{
		Id:               msgId,
		ConversationId:   req.ConversationId,
		SenderId:         userId,
		Content:          content,
		ReplyToMessageId: req.ReplyToMessageId,
	}

	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		return s.directRepo.CreateMessage(ctx, tx, msg)
	})
	if err != nil {
		log.CtxError(ctx, "send message failed: conversation_id=%s, error=%v", req.ConversationId, err)
		return nil, errcode.ErrSendFailed
	}

	s.publisher.PublishRow(constant.TableDirectMessages, constant.EventInsert, msg.ToDirectMessageInfo(),
		map[string]string{"conversation_id": msg.ConversationId})

	// The peer's unread total just changed
	if members, err := s.directRepo.GetMembers(ctx, req.ConversationId); err == nil {
		for _, m := range members {
			if m.UserId != userId {
				s.invalidateUnread(ctx, m.UserId)
			}
		}
	}

	s.activityService.Log(ctx, userId, constant.ActivityDMSent, map[string]interface{}{
		"conversation_id": msg.ConversationId,
		"message_id":      strconv.FormatInt(msg.Id, 10),
	})

	log.CtxInfo(ctx, "dm sent: message_id=%d, conversation_id=%s", msg.Id, msg.ConversationId)
	return msg.ToDirectMessageInfo(), nil
}

// ListMessages lists conversation messages ascending by creation time
func (s *DirectService) ListMessages(ctx context.Context, userId, conversationId string, before int64, limit int) ([]*entity.DirectMessageInfo, error) {
	member, err := s.directRepo.GetMember(ctx, conversationId, userId)
	if err != nil {
		log.CtxError(ctx, "get member failed: conversation_id=%s, error=%v", conversationId, err)
		return nil, errcode.ErrInternalServer
	}
	if member == nil {
		return nil, errcode.ErrNotConversationMember
	}

	messages, err := s.directRepo.ListMessages(ctx, conversationId, before, limit)
	if err != nil {
		log.CtxError(ctx, "list messages failed: conversation_id=%s, error=%v", conversationId, err)
		return nil, errcode.ErrInternalServer
	}

	infos := make([]*entity.DirectMessageInfo, 0, len(messages))
	for _, m := range messages {
		infos = append(infos, m.ToDirectMessageInfo())
	}
	return infos, nil
}

// DeleteMessage soft-deletes a DM. Only the sender may delete, and
// deleting twice is a no-op.
func (s *DirectService) DeleteMessage(ctx context.Context, userId string, messageId int64) (*entity.DirectMessageInfo, error) {
	msg, err := s.directRepo.GetMessage(ctx, messageId)
	if err != nil {
		log.CtxError(ctx, "get message failed: message_id=%d, error=%v", messageId, err)
		return nil, errcode.ErrInternalServer
	}
	if msg == nil {
		return nil, errcode.ErrMessageNotFound
	}
	if msg.SenderId != userId {
		return nil, errcode.ErrNotMessageSender
	}

	if !msg.IsDeleted {
		if err := s.directRepo.MarkMessageDeleted(ctx, messageId); err != nil {
			log.CtxError(ctx, "mark message deleted failed: message_id=%d, error=%v", messageId, err)
			return nil, errcode.ErrInternalServer
		}
		msg.IsDeleted = true
		msg.UpdatedAt = entity.NowUnixMilli()

		s.publisher.PublishRow(constant.TableDirectMessages, constant.EventUpdate, msg.ToDirectMessageInfo(),
			map[string]string{"conversation_id": msg.ConversationId})
	}

	return msg.ToDirectMessageInfo(), nil
}

// previewText shortens message content for list rows
func previewText(content string) string {
	const max = 80
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max])
}
