// Package moderation holds per-(event, user) ban and chat-ban state. It
// gates write actions only; moderation state never changes what a profile
// projection shows.
package moderation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/errs"
)

// Store persists moderation records. Records are created lazily on the
// first action against a user in an event.
type Store interface {
	// Record returns the moderation record, or nil if none exists.
	Record(ctx context.Context, eventID, userID uuid.UUID) (*models.ModerationRecord, error)
	// ApplyBan sets the ban flag, upserting the record. Re-banning updates
	// reason and notes.
	ApplyBan(ctx context.Context, eventID, userID, moderatorID uuid.UUID, reason, notes string, at time.Time) (*models.ModerationRecord, error)
	// ClearBan clears the ban flag if a record exists.
	ClearBan(ctx context.Context, eventID, userID uuid.UUID) (*models.ModerationRecord, error)
	// ApplyChatBan sets the chat-ban flag, upserting the record. A nil until
	// means indefinite.
	ApplyChatBan(ctx context.Context, eventID, userID, moderatorID uuid.UUID, until *time.Time, reason, notes string) (*models.ModerationRecord, error)
	// ClearChatBan clears the chat-ban flag if a record exists.
	ClearChatBan(ctx context.Context, eventID, userID uuid.UUID) (*models.ModerationRecord, error)
}

// RoleSource checks the moderator's standing on the event.
type RoleSource interface {
	IsEventOrganizerOrAdmin(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
}

// Gate is the moderation service.
type Gate struct {
	store  Store
	roles  RoleSource
	logger *zap.Logger
	now    func() time.Time
}

// NewGate creates a moderation gate.
func NewGate(store Store, roles RoleSource, logger *zap.Logger) *Gate {
	return &Gate{store: store, roles: roles, logger: logger, now: time.Now}
}

func (g *Gate) requireModerator(ctx context.Context, eventID, moderatorID uuid.UUID) error {
	ok, err := g.roles.IsEventOrganizerOrAdmin(ctx, eventID, moderatorID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Forbidden("moderation requires organizer or admin role on the event")
	}
	return nil
}

// Ban bans a user from an event. Idempotent: re-banning updates reason and
// notes.
func (g *Gate) Ban(ctx context.Context, eventID, userID, moderatorID uuid.UUID, reason, notes string) (*models.ModerationRecord, error) {
	if err := g.requireModerator(ctx, eventID, moderatorID); err != nil {
		return nil, err
	}
	return g.store.ApplyBan(ctx, eventID, userID, moderatorID, reason, notes, g.now())
}

// Unban lifts a user's event ban.
func (g *Gate) Unban(ctx context.Context, eventID, userID, moderatorID uuid.UUID) (*models.ModerationRecord, error) {
	if err := g.requireModerator(ctx, eventID, moderatorID); err != nil {
		return nil, err
	}
	return g.store.ClearBan(ctx, eventID, userID)
}

// ChatBan bans a user from chat in an event. A nil durationHours means an
// indefinite chat ban. Idempotent: re-banning updates the deadline, reason
// and notes.
func (g *Gate) ChatBan(ctx context.Context, eventID, userID, moderatorID uuid.UUID, reason string, durationHours *int, notes string) (*models.ModerationRecord, error) {
	if err := g.requireModerator(ctx, eventID, moderatorID); err != nil {
		return nil, err
	}
	var until *time.Time
	if durationHours != nil {
		t := g.now().Add(time.Duration(*durationHours) * time.Hour)
		until = &t
	}
	return g.store.ApplyChatBan(ctx, eventID, userID, moderatorID, until, reason, notes)
}

// ChatUnban lifts a user's chat ban.
func (g *Gate) ChatUnban(ctx context.Context, eventID, userID, moderatorID uuid.UUID) (*models.ModerationRecord, error) {
	if err := g.requireModerator(ctx, eventID, moderatorID); err != nil {
		return nil, err
	}
	return g.store.ClearChatBan(ctx, eventID, userID)
}

// CanUseChat reports whether the user may post in the event's chat. Event
// bans always block; chat bans block until chat_ban_until passes (nil means
// indefinite). A chat ban never expires silently except through this check.
func (g *Gate) CanUseChat(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	rec, err := g.store.Record(ctx, eventID, userID)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return true, nil
	}
	if rec.IsBanned {
		return false, nil
	}
	if rec.IsChatBanned {
		if rec.ChatBanUntil == nil || g.now().Before(*rec.ChatBanUntil) {
			return false, nil
		}
	}
	return true, nil
}

// Record returns the moderation record for a user in an event, visible to
// organizers and admins only.
func (g *Gate) Record(ctx context.Context, eventID, userID, viewerID uuid.UUID) (*models.ModerationRecord, error) {
	if err := g.requireModerator(ctx, eventID, viewerID); err != nil {
		return nil, err
	}
	rec, err := g.store.Record(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errs.NotFound("no moderation record for this user")
	}
	return rec, nil
}
