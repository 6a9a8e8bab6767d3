package service

import (
	"context"
	"strings"

	"github.com/elyaddev/Silo/internal/entity"
	"github.com/elyaddev/Silo/internal/repository"
	"github.com/elyaddev/Silo/pkg/constant"
	"github.com/elyaddev/Silo/pkg/errcode"
	"github.com/google/uuid"
	"github.com/mbeoliero/kit/log"
	"gorm.io/gorm"
)

// DiscussionService handles discussion and alias logic
type DiscussionService struct {
	repos           *repository.Repositories
	roomRepo        *repository.RoomRepo
	discussionRepo  *repository.DiscussionRepo
	aliasRepo       *repository.AliasRepo
	activityService *ActivityService
}

// NewDiscussionService creates a new DiscussionService
func NewDiscussionService(repos *repository.Repositories, activityService *ActivityService) *DiscussionService {
	return &DiscussionService{
		repos:           repos,
		roomRepo:        repos.Room,
		discussionRepo:  repos.Discussion,
		aliasRepo:       repos.Alias,
		activityService: activityService,
	}
}

// CreateDiscussionRequest represents discussion creation request
type CreateDiscussionRequest struct {
	RoomId string `json:"room_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// CreateDiscussion starts a new discussion. The starter gets the OP
// alias in the same transaction so authorship is pseudonymous from the
// first read.
func (s *DiscussionService) CreateDiscussion(ctx context.Context, userId string, req *CreateDiscussionRequest) (*entity.DiscussionInfo, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || strings.TrimSpace(req.Body) == "" {
		return nil, errcode.ErrEmptyContent
	}

	room, err := s.roomRepo.GetById(ctx, req.RoomId)
	if err != nil {
		log.CtxError(ctx, "get room failed: room_id=%s, error=%v", req.RoomId, err)
		return nil, errcode.ErrInternalServer
	}
	if room == nil {
		return nil, errcode.ErrRoomNotFound
	}

	discussion := &entity.Discussion{
		Id:        uuid.New().String(),
		RoomId:    room.Id,
		StarterId: userId,
		Title:     title,
		Body:      req.Body,
	}

	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.discussionRepo.Create(ctx, tx, discussion); err != nil {
			return err
		}
		opAlias := &entity.DiscussionAlias{
			DiscussionId: discussion.Id,
			UserId:       userId,
			IsOp:         true,
		}
		return s.aliasRepo.Create(ctx, tx, opAlias)
	})
	if err != nil {
		log.CtxError(ctx, "create discussion failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	s.activityService.Log(ctx, userId, constant.ActivityPostCreated, map[string]interface{}{
		"room_id":       room.Id,
		"discussion_id": discussion.Id,
	})

	log.CtxInfo(ctx, "discussion created: discussion_id=%s, room_id=%s", discussion.Id, room.Id)
	return discussion.ToDiscussionInfo(0), nil
}

// GetDiscussion gets one discussion with its reply count
func (s *DiscussionService) GetDiscussion(ctx context.Context, discussionId string) (*entity.DiscussionInfo, error) {
	discussion, err := s.discussionRepo.GetById(ctx, discussionId)
	if err != nil {
		log.CtxError(ctx, "get discussion failed: discussion_id=%s, error=%v", discussionId, err)
		return nil, errcode.ErrInternalServer
	}
	if discussion == nil {
		return nil, errcode.ErrDiscussionNotFound
	}

	count, err := s.discussionRepo.CountReplies(ctx, discussionId)
	if err != nil {
		log.CtxWarn(ctx, "count replies failed: discussion_id=%s, error=%v", discussionId, err)
	}

	return discussion.ToDiscussionInfo(count), nil
}

// ListDiscussions lists discussions in a room, newest first
func (s *DiscussionService) ListDiscussions(ctx context.Context, roomId string, limit int) ([]*entity.DiscussionInfo, error) {
	room, err := s.roomRepo.GetById(ctx, roomId)
	if err != nil {
		log.CtxError(ctx, "get room failed: room_id=%s, error=%v", roomId, err)
		return nil, errcode.ErrInternalServer
	}
	if room == nil {
		return nil, errcode.ErrRoomNotFound
	}

	discussions, err := s.discussionRepo.ListByRoom(ctx, roomId, limit)
	if err != nil {
		log.CtxError(ctx, "list discussions failed: room_id=%s, error=%v", roomId, err)
		return nil, errcode.ErrInternalServer
	}

	infos := make([]*entity.DiscussionInfo, 0, len(discussions))
	for _, d := range discussions {
		count, err := s.discussionRepo.CountReplies(ctx, d.Id)
		if err != nil {
			log.CtxWarn(ctx, "count replies failed: discussion_id=%s, error=%v", d.Id, err)
		}
		infos = append(infos, d.ToDiscussionInfo(count))
	}
	return infos, nil
}

// GetAlias returns the alias of one user inside a discussion.
// ErrNotFound means the user has never participated; clients cache that
// outcome as firmly as a hit.
func (s *DiscussionService) GetAlias(ctx context.Context, discussionId, userId string) (*entity.AliasInfo, error) {
	alias, err := s.aliasRepo.Get(ctx, discussionId, userId)
	if err != nil {
		log.CtxError(ctx, "get alias failed: discussion_id=%s, error=%v", discussionId, err)
		return nil, errcode.ErrInternalServer
	}
	if alias == nil {
		return nil, errcode.ErrNotFound
	}
	return alias.ToAliasInfo(), nil
}

// EnsureAlias makes sure a participant has an alias row, allocating the
// next number for first-time repliers. The starter always resolves to
// the OP alias. Runs inside the caller's transaction.
func (s *DiscussionService) EnsureAlias(ctx context.Context, tx *gorm.DB, discussion *entity.Discussion, userId string) (*entity.DiscussionAlias, error) {
	alias, err := s.aliasRepo.Get(ctx, discussion.Id, userId)
	if err != nil {
		return nil, err
	}
	if alias != nil {
		return alias, nil
	}

	newAlias := &entity.DiscussionAlias{
		DiscussionId: discussion.Id,
		UserId:       userId,
	}
	if userId == discussion.StarterId {
		newAlias.IsOp = true
	} else {
		num, err := s.aliasRepo.AllocAliasNumber(ctx, discussion.Id)
		if err != nil {
			return nil, err
		}
		newAlias.Alias = &num
	}

	if err := s.aliasRepo.Create(ctx, tx, newAlias); err != nil {
		return nil, err
	}

	// A concurrent first reply may have won the insert; read back the
	// row that actually landed.
	alias, err = s.aliasRepo.GetTx(ctx, tx, discussion.Id, userId)
	if err != nil {
		return nil, err
	}
	if alias == nil {
		return newAlias, nil
	}
	return alias, nil
}
