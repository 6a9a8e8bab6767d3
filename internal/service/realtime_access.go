package service

import (
	"context"

	"github.com/elyaddev/Silo/internal/gateway"
	"github.com/elyaddev/Silo/internal/repository"
	"github.com/elyaddev/Silo/pkg/constant"
	"github.com/elyaddev/Silo/pkg/errcode"
)

// RealtimeAccess authorizes row-feed subscriptions. Room content is
// public, DMs require active membership, and notifications are only
// ever the caller's own.
type RealtimeAccess struct {
	directRepo *repository.DirectRepo
}

// NewRealtimeAccess creates a new RealtimeAccess
func NewRealtimeAccess(repos *repository.Repositories) *RealtimeAccess {
	return &RealtimeAccess{directRepo: repos.Direct}
}

// CanSubscribe implements gateway.AccessChecker
func (a *RealtimeAccess) CanSubscribe(ctx context.Context, userId, table string, f gateway.Filter) error {
	switch table {
	case constant.TableMessages:
		// Rooms and discussions are readable by every signed-in user
		return nil

	case constant.TableDirectMessages:
		if f.Column != "conversation_id" {
			return errcode.ErrBadSubscription
		}
		member, err := a.directRepo.GetMember(ctx, f.Value, userId)
		if err != nil {
			return errcode.ErrInternalServer
		}
		if member == nil || !member.IsActive() {
			return errcode.ErrNotConversationMember
		}
		return nil

	case constant.TableNotifications:
		if f.Column != "recipient_id" || f.Value != userId {
			return errcode.ErrBadSubscription
		}
		return nil

	default:
		return errcode.ErrBadSubscription
	}
}
