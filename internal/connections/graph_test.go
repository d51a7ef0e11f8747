package connections

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/privacy"
	"github.com/gatherly/backend/pkg/errs"
)

type mockConnStore struct {
	connections map[uuid.UUID]*models.Connection
	between     *models.Connection

	sharesEvent          bool
	organizerOfShared    bool
	connectedToOrganizer bool

	created  *models.Connection
	resolved bool
}

func (m *mockConnStore) Get(_ context.Context, id uuid.UUID) (*models.Connection, error) {
	return m.connections[id], nil
}

func (m *mockConnStore) Between(_ context.Context, _, _ uuid.UUID) (*models.Connection, error) {
	return m.between, nil
}

func (m *mockConnStore) CreatePending(_ context.Context, conn *models.Connection) error {
	conn.ID = uuid.New()
	m.created = conn
	return nil
}

func (m *mockConnStore) Resolve(_ context.Context, _ uuid.UUID, _ models.ConnectionStatus) (bool, error) {
	return m.resolved, nil
}

func (m *mockConnStore) SharesEvent(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return m.sharesEvent, nil
}

func (m *mockConnStore) IsOrganizerOfSharedEvent(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return m.organizerOfShared, nil
}

func (m *mockConnStore) IsConnectedToOrganizerOf(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return m.connectedToOrganizer, nil
}

func (m *mockConnStore) ListForUser(_ context.Context, _ uuid.UUID) ([]*models.Connection, error) {
	return nil, nil
}

type fixedPolicy struct {
	policy privacy.Policy
}

func (f fixedPolicy) EffectivePolicy(_ context.Context, _ uuid.UUID, _ *uuid.UUID) (privacy.Policy, error) {
	return f.policy, nil
}

func newTestGraph(store *mockConnStore, requests models.ConnectionRequestPolicy) *Graph {
	policy := privacy.DefaultPolicy()
	policy.AllowConnectionRequests = requests
	return NewGraph(store, fixedPolicy{policy: policy}, zap.NewNop())
}

func TestRequestRejectsSelfConnection(t *testing.T) {
	userID := uuid.New()
	g := newTestGraph(&mockConnStore{}, models.RequestsFromEveryone)

	_, err := g.Request(context.Background(), userID, userID, "", nil)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindSelfConnection))
}

func TestRequestRejectsDuplicateInEitherDirection(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	// An existing declined connection still blocks a new request.
	store := &mockConnStore{
		sharesEvent: true,
		between:     &models.Connection{RequesterID: b, RecipientID: a, Status: models.ConnectionDeclined},
	}
	g := newTestGraph(store, models.RequestsFromEveryone)

	_, err := g.Request(context.Background(), a, b, "", nil)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindDuplicateConnection))
}

func TestRequestNobodyPolicyDenies(t *testing.T) {
	store := &mockConnStore{sharesEvent: true}
	g := newTestGraph(store, models.RequestsFromNobody)

	_, err := g.Request(context.Background(), uuid.New(), uuid.New(), "", nil)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindPolicyDenied))
	require.Nil(t, store.created)
}

func TestRequestEveryoneRequiresSharedEvent(t *testing.T) {
	g := newTestGraph(&mockConnStore{sharesEvent: false}, models.RequestsFromEveryone)
	_, err := g.Request(context.Background(), uuid.New(), uuid.New(), "", nil)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindPolicyDenied))

	store := &mockConnStore{sharesEvent: true}
	g = newTestGraph(store, models.RequestsFromEveryone)
	conn, err := g.Request(context.Background(), uuid.New(), uuid.New(), "hi there", nil)
	require.NoError(t, err)
	require.Equal(t, models.ConnectionPending, conn.Status)
	require.Equal(t, "hi there", conn.Icebreaker)
	require.NotNil(t, store.created)
}

func TestCanRequestConnectionsOfOrganizers(t *testing.T) {
	cases := []struct {
		name                 string
		organizerOfShared    bool
		connectedToOrganizer bool
		want                 bool
	}{
		{"organizer of shared event", true, false, true},
		{"connected to an organizer", false, true, true},
		{"neither", false, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockConnStore{
				sharesEvent:          true,
				organizerOfShared:    tc.organizerOfShared,
				connectedToOrganizer: tc.connectedToOrganizer,
			}
			g := newTestGraph(store, models.RequestsFromConnectionsOrganizers)
			ok, err := g.CanRequest(context.Background(), uuid.New(), uuid.New(), nil)
			require.NoError(t, err)
			require.Equal(t, tc.want, ok)
		})
	}
}

func TestCanRequestUnknownPolicyDenies(t *testing.T) {
	g := newTestGraph(&mockConnStore{sharesEvent: true}, models.ConnectionRequestPolicy("anything_goes"))
	ok, err := g.CanRequest(context.Background(), uuid.New(), uuid.New(), nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRespondOnlyRecipient(t *testing.T) {
	connID := uuid.New()
	requester, recipient := uuid.New(), uuid.New()
	store := &mockConnStore{
		connections: map[uuid.UUID]*models.Connection{
			connID: {ID: connID, RequesterID: requester, RecipientID: recipient, Status: models.ConnectionPending},
		},
		resolved: true,
	}
	g := newTestGraph(store, models.RequestsFromEveryone)

	_, err := g.Respond(context.Background(), connID, requester, DecisionAccept)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindForbidden))

	conn, err := g.Respond(context.Background(), connID, recipient, DecisionAccept)
	require.NoError(t, err)
	require.Equal(t, models.ConnectionAccepted, conn.Status)
}

func TestRespondOnlyWhilePending(t *testing.T) {
	connID := uuid.New()
	recipient := uuid.New()
	store := &mockConnStore{
		connections: map[uuid.UUID]*models.Connection{
			connID: {ID: connID, RequesterID: uuid.New(), RecipientID: recipient, Status: models.ConnectionAccepted},
		},
	}
	g := newTestGraph(store, models.RequestsFromEveryone)

	_, err := g.Respond(context.Background(), connID, recipient, DecisionDecline)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindState))
}

func TestRespondLostRace(t *testing.T) {
	connID := uuid.New()
	recipient := uuid.New()
	// The row read as pending but another responder resolved it first.
	store := &mockConnStore{
		connections: map[uuid.UUID]*models.Connection{
			connID: {ID: connID, RequesterID: uuid.New(), RecipientID: recipient, Status: models.ConnectionPending},
		},
		resolved: false,
	}
	g := newTestGraph(store, models.RequestsFromEveryone)

	_, err := g.Respond(context.Background(), connID, recipient, DecisionAccept)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindState))
}

func TestStatusBetweenEmptyWhenNone(t *testing.T) {
	g := newTestGraph(&mockConnStore{}, models.RequestsFromEveryone)
	status, err := g.StatusBetween(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	require.Empty(t, status)
}

func TestCanonicalPairIsOrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	lo1, hi1 := models.CanonicalPair(a, b)
	lo2, hi2 := models.CanonicalPair(b, a)
	require.Equal(t, lo1, lo2)
	require.Equal(t, hi1, hi2)
	require.True(t, lo1.String() < hi1.String())
}
