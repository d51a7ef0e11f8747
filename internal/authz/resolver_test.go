package authz

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/errs"
)

type mockStore struct {
	orgRoles     map[uuid.UUID]models.OrgRole // keyed by user
	events       map[uuid.UUID]*models.Event
	eventRoles   map[uuid.UUID]models.EventRole   // keyed by user
	sessionRoles map[uuid.UUID]models.SessionRole // keyed by user
	overlap      bool
}

func (m *mockStore) OrgRole(_ context.Context, _, userID uuid.UUID) (models.OrgRole, error) {
	return m.orgRoles[userID], nil
}

func (m *mockStore) Event(_ context.Context, eventID uuid.UUID) (*models.Event, error) {
	return m.events[eventID], nil
}

func (m *mockStore) EventMembershipRole(_ context.Context, _, userID uuid.UUID) (models.EventRole, error) {
	return m.eventRoles[userID], nil
}

func (m *mockStore) SessionRole(_ context.Context, _, userID uuid.UUID) (models.SessionRole, error) {
	return m.sessionRoles[userID], nil
}

func (m *mockStore) HasPrivilegedOverlap(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return m.overlap, nil
}

func newTestResolver(store *mockStore) *Resolver {
	return NewResolver(store, zap.NewNop())
}

func TestEventRoleExplicitMembershipWins(t *testing.T) {
	orgID := uuid.New()
	eventID := uuid.New()
	userID := uuid.New()
	store := &mockStore{
		orgRoles:   map[uuid.UUID]models.OrgRole{userID: models.OrgRoleOwner},
		events:     map[uuid.UUID]*models.Event{eventID: {ID: eventID, OrganizationID: orgID}},
		eventRoles: map[uuid.UUID]models.EventRole{userID: models.EventRoleAttendee},
	}

	role, err := newTestResolver(store).EventRole(context.Background(), eventID, userID)
	require.NoError(t, err)
	// The explicit attendee membership is not upgraded by org ownership.
	require.Equal(t, models.EventRoleAttendee, role)
}

func TestEventRoleOrgAdminElevation(t *testing.T) {
	orgID := uuid.New()
	eventID := uuid.New()

	for _, orgRole := range []models.OrgRole{models.OrgRoleOwner, models.OrgRoleAdmin} {
		userID := uuid.New()
		store := &mockStore{
			orgRoles:   map[uuid.UUID]models.OrgRole{userID: orgRole},
			events:     map[uuid.UUID]*models.Event{eventID: {ID: eventID, OrganizationID: orgID}},
			eventRoles: map[uuid.UUID]models.EventRole{},
		}
		role, err := newTestResolver(store).EventRole(context.Background(), eventID, userID)
		require.NoError(t, err)
		require.Equal(t, models.EventRoleAdmin, role)
	}
}

func TestEventRoleOrgMemberNotElevated(t *testing.T) {
	orgID := uuid.New()
	eventID := uuid.New()
	userID := uuid.New()
	store := &mockStore{
		orgRoles:   map[uuid.UUID]models.OrgRole{userID: models.OrgRoleMember},
		events:     map[uuid.UUID]*models.Event{eventID: {ID: eventID, OrganizationID: orgID}},
		eventRoles: map[uuid.UUID]models.EventRole{},
	}

	role, err := newTestResolver(store).EventRole(context.Background(), eventID, userID)
	require.NoError(t, err)
	require.Empty(t, role)

	ok, err := newTestResolver(store).CanAccessEvent(context.Background(), eventID, userID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEventRoleMissingEvent(t *testing.T) {
	store := &mockStore{
		orgRoles:   map[uuid.UUID]models.OrgRole{},
		events:     map[uuid.UUID]*models.Event{},
		eventRoles: map[uuid.UUID]models.EventRole{},
	}

	_, err := newTestResolver(store).EventRole(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestSessionRoleNoInheritance(t *testing.T) {
	userID := uuid.New()
	store := &mockStore{
		eventRoles:   map[uuid.UUID]models.EventRole{userID: models.EventRoleAdmin},
		sessionRoles: map[uuid.UUID]models.SessionRole{},
	}

	role, err := newTestResolver(store).SessionRole(context.Background(), uuid.New(), userID)
	require.NoError(t, err)
	require.Empty(t, role, "event admin must not inherit a session role")
}

func TestIsEventOrganizerOrAdmin(t *testing.T) {
	eventID := uuid.New()
	cases := []struct {
		role models.EventRole
		want bool
	}{
		{models.EventRoleAdmin, true},
		{models.EventRoleOrganizer, true},
		{models.EventRoleModerator, false},
		{models.EventRoleSpeaker, false},
		{models.EventRoleAttendee, false},
	}
	for _, tc := range cases {
		userID := uuid.New()
		store := &mockStore{
			orgRoles:   map[uuid.UUID]models.OrgRole{},
			events:     map[uuid.UUID]*models.Event{eventID: {ID: eventID, OrganizationID: uuid.New()}},
			eventRoles: map[uuid.UUID]models.EventRole{userID: tc.role},
		}
		ok, err := newTestResolver(store).IsEventOrganizerOrAdmin(context.Background(), eventID, userID)
		require.NoError(t, err)
		require.Equal(t, tc.want, ok, "role %s", tc.role)
	}
}
