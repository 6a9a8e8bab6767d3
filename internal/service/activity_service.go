package service

import (
	"context"
	"encoding/json"

	"github.com/elyaddev/Silo/internal/entity"
	"github.com/elyaddev/Silo/internal/repository"
	"github.com/elyaddev/Silo/pkg/errcode"
	"github.com/mbeoliero/kit/log"
)

// ActivityService records the user activity feed and handles reports.
// Activity logging is best-effort and never fails its caller.
type ActivityService struct {
	activityRepo *repository.ActivityRepo
}

// NewActivityService creates a new ActivityService
func NewActivityService(activityRepo *repository.ActivityRepo) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// Log records one activity entry. Failures are logged and swallowed so
// the triggering operation is never affected.
func (s *ActivityService) Log(ctx context.Context, userId, activityType string, payload map[string]interface{}) {
	var payloadStr *string
	if len(payload) > 0 {
		data, err := json.Marshal(payload)
		if err != nil {
			log.CtxWarn(ctx, "marshal activity payload failed: type=%s, error=%v", activityType, err)
		} else {
			str := string(data)
			payloadStr = &str
		}
	}

	a := &entity.Activity{
		UserId:  userId,
		Type:    activityType,
		Payload: payloadStr,
	}

	if err := s.activityRepo.Create(ctx, a); err != nil {
		log.CtxWarn(ctx, "log activity failed: user_id=%s, type=%s, error=%v", userId, activityType, err)
	}
}

// List returns the caller's own activity feed, newest first
func (s *ActivityService) List(ctx context.Context, userId string, limit int) ([]*entity.Activity, error) {
	activities, err := s.activityRepo.ListByUser(ctx, userId, limit)
	if err != nil {
		log.CtxError(ctx, "list activity failed: user_id=%s, error=%v", userId, err)
		return nil, errcode.ErrInternalServer
	}
	return activities, nil
}

// ReportUserRequest represents a user report
type ReportUserRequest struct {
	TargetUserId string                 `json:"target_user_id"`
	Reason       string                 `json:"reason"`
	Details      string                 `json:"details,omitempty"`
	Context      map[string]interface{} `json:"context,omitempty"`
}

// ReportUser files a report against another user
func (s *ActivityService) ReportUser(ctx context.Context, reporterId string, req *ReportUserRequest) error {
	if req.TargetUserId == "" || req.Reason == "" {
		return errcode.ErrInvalidParam
	}
	if req.TargetUserId == reporterId {
		return errcode.ErrInvalidParam
	}

	var contextStr *string
	if len(req.Context) > 0 {
		data, err := json.Marshal(req.Context)
		if err == nil {
			str := string(data)
			contextStr = &str
		}
	}

	report := &entity.Report{
		ReporterId:   reporterId,
		TargetUserId: req.TargetUserId,
		Reason:       req.Reason,
		Details:      req.Details,
		Context:      contextStr,
	}

	if err := s.activityRepo.CreateReport(ctx, report); err != nil {
		log.CtxError(ctx, "create report failed: reporter_id=%s, error=%v", reporterId, err)
		return errcode.ErrInternalServer
	}

	log.CtxInfo(ctx, "user reported: reporter_id=%s, target_user_id=%s, reason=%s", reporterId, req.TargetUserId, req.Reason)
	return nil
}
