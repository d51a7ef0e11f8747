package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/errs"
)

type mockModStore struct {
	record *models.ModerationRecord
}

func (m *mockModStore) Record(_ context.Context, _, _ uuid.UUID) (*models.ModerationRecord, error) {
	return m.record, nil
}

func (m *mockModStore) ApplyBan(_ context.Context, eventID, userID, moderatorID uuid.UUID, reason, notes string, at time.Time) (*models.ModerationRecord, error) {
	m.record = &models.ModerationRecord{
		EventID: eventID, UserID: userID,
		IsBanned: true, BannedAt: &at, BannedBy: &moderatorID,
		BanReason: reason, ModerationNotes: notes,
	}
	return m.record, nil
}

func (m *mockModStore) ClearBan(_ context.Context, _, _ uuid.UUID) (*models.ModerationRecord, error) {
	if m.record != nil {
		m.record.IsBanned = false
		m.record.BannedAt = nil
		m.record.BanReason = ""
	}
	return m.record, nil
}

func (m *mockModStore) ApplyChatBan(_ context.Context, eventID, userID, moderatorID uuid.UUID, until *time.Time, reason, notes string) (*models.ModerationRecord, error) {
	m.record = &models.ModerationRecord{
		EventID: eventID, UserID: userID,
		IsChatBanned: true, ChatBanUntil: until, BannedBy: &moderatorID,
		ChatBanReason: reason, ModerationNotes: notes,
	}
	return m.record, nil
}

func (m *mockModStore) ClearChatBan(_ context.Context, _, _ uuid.UUID) (*models.ModerationRecord, error) {
	if m.record != nil {
		m.record.IsChatBanned = false
		m.record.ChatBanUntil = nil
	}
	return m.record, nil
}

type mockRoles struct {
	moderator bool
}

func (m *mockRoles) IsEventOrganizerOrAdmin(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return m.moderator, nil
}

func newTestGate(store *mockModStore, moderator bool, at time.Time) *Gate {
	g := NewGate(store, &mockRoles{moderator: moderator}, zap.NewNop())
	g.now = func() time.Time { return at }
	return g
}

func TestBanRequiresModerator(t *testing.T) {
	g := newTestGate(&mockModStore{}, false, time.Now())

	_, err := g.Ban(context.Background(), uuid.New(), uuid.New(), uuid.New(), "spam", "")
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindForbidden))
}

func TestCanUseChatNoRecord(t *testing.T) {
	g := newTestGate(&mockModStore{}, true, time.Now())

	ok, err := g.CanUseChat(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEventBanBlocksChat(t *testing.T) {
	store := &mockModStore{}
	g := newTestGate(store, true, time.Now())
	eventID, userID := uuid.New(), uuid.New()

	_, err := g.Ban(context.Background(), eventID, userID, uuid.New(), "spam", "")
	require.NoError(t, err)

	ok, err := g.CanUseChat(context.Background(), eventID, userID)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = g.Unban(context.Background(), eventID, userID, uuid.New())
	require.NoError(t, err)
	ok, err = g.CanUseChat(context.Background(), eventID, userID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestChatBanExpires(t *testing.T) {
	store := &mockModStore{}
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := newTestGate(store, true, start)
	eventID, userID := uuid.New(), uuid.New()

	hours := 24
	rec, err := g.ChatBan(context.Background(), eventID, userID, uuid.New(), "flooding", &hours, "")
	require.NoError(t, err)
	require.NotNil(t, rec.ChatBanUntil)
	require.Equal(t, start.Add(24*time.Hour), *rec.ChatBanUntil)

	ok, err := g.CanUseChat(context.Background(), eventID, userID)
	require.NoError(t, err)
	require.False(t, ok)

	// Past the deadline the ban no longer blocks.
	g.now = func() time.Time { return start.Add(25 * time.Hour) }
	ok, err = g.CanUseChat(context.Background(), eventID, userID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIndefiniteChatBan(t *testing.T) {
	store := &mockModStore{}
	g := newTestGate(store, true, time.Now())
	eventID, userID := uuid.New(), uuid.New()

	rec, err := g.ChatBan(context.Background(), eventID, userID, uuid.New(), "abuse", nil, "")
	require.NoError(t, err)
	require.Nil(t, rec.ChatBanUntil)

	// Never expires on its own.
	g.now = func() time.Time { return time.Now().Add(1000 * time.Hour) }
	ok, err := g.CanUseChat(context.Background(), eventID, userID)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = g.ChatUnban(context.Background(), eventID, userID, uuid.New())
	require.NoError(t, err)
	ok, err = g.CanUseChat(context.Background(), eventID, userID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRecordVisibleToModeratorsOnly(t *testing.T) {
	store := &mockModStore{record: &models.ModerationRecord{IsBanned: true}}

	g := newTestGate(store, false, time.Now())
	_, err := g.Record(context.Background(), uuid.New(), uuid.New(), uuid.New())
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindForbidden))

	g = newTestGate(store, true, time.Now())
	rec, err := g.Record(context.Background(), uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	require.True(t, rec.IsBanned)
}

func TestRecordNotFound(t *testing.T) {
	g := newTestGate(&mockModStore{}, true, time.Now())
	_, err := g.Record(context.Background(), uuid.New(), uuid.New(), uuid.New())
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindNotFound))
}
