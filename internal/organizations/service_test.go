package organizations

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/errs"
)

type mockOrgStore struct {
	orgs        map[uuid.UUID]*models.Organization
	memberships map[uuid.UUID]models.OrgRole // keyed by user
	owners      int

	createErr   error
	transferred bool
	removed     []uuid.UUID
}

func (m *mockOrgStore) CreateWithOwner(_ context.Context, org *models.Organization, ownerID uuid.UUID) error {
	if m.createErr != nil {
		return m.createErr
	}
	org.ID = uuid.New()
	if m.orgs == nil {
		m.orgs = map[uuid.UUID]*models.Organization{}
	}
	if m.memberships == nil {
		m.memberships = map[uuid.UUID]models.OrgRole{}
	}
	m.orgs[org.ID] = org
	m.memberships[ownerID] = models.OrgRoleOwner
	m.owners++
	return nil
}

func (m *mockOrgStore) Get(_ context.Context, id uuid.UUID) (*models.Organization, error) {
	return m.orgs[id], nil
}

func (m *mockOrgStore) Membership(_ context.Context, orgID, userID uuid.UUID) (*models.OrgMembership, error) {
	role, ok := m.memberships[userID]
	if !ok {
		return nil, nil
	}
	return &models.OrgMembership{OrganizationID: orgID, UserID: userID, Role: role}, nil
}

func (m *mockOrgStore) AddMember(_ context.Context, orgID, userID uuid.UUID, role models.OrgRole) (*models.OrgMembership, error) {
	if m.memberships == nil {
		m.memberships = map[uuid.UUID]models.OrgRole{}
	}
	m.memberships[userID] = role
	return &models.OrgMembership{OrganizationID: orgID, UserID: userID, Role: role}, nil
}

func (m *mockOrgStore) UpdateMemberRole(_ context.Context, _, userID uuid.UUID, role models.OrgRole) error {
	m.memberships[userID] = role
	return nil
}

func (m *mockOrgStore) RemoveMember(_ context.Context, _, userID uuid.UUID) error {
	delete(m.memberships, userID)
	m.removed = append(m.removed, userID)
	return nil
}

func (m *mockOrgStore) CountOwners(_ context.Context, _ uuid.UUID) (int, error) {
	return m.owners, nil
}

func (m *mockOrgStore) TransferOwnership(_ context.Context, _, fromUserID, toUserID uuid.UUID) error {
	m.memberships[fromUserID] = models.OrgRoleAdmin
	m.memberships[toUserID] = models.OrgRoleOwner
	m.transferred = true
	return nil
}

func (m *mockOrgStore) ListForUser(_ context.Context, _ uuid.UUID) ([]*models.Organization, error) {
	return nil, nil
}

func (m *mockOrgStore) ListMembers(_ context.Context, _ uuid.UUID) ([]*models.OrgMembership, error) {
	return nil, nil
}

func newTestService(store *mockOrgStore) *Service {
	return NewService(store, zap.NewNop())
}

func TestCreateWithOwner(t *testing.T) {
	store := &mockOrgStore{}
	svc := newTestService(store)
	creator := uuid.New()

	org, err := svc.CreateWithOwner(context.Background(), "Acme Events", creator)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, org.ID)
	require.Equal(t, models.OrgRoleOwner, store.memberships[creator])
}

func TestCreateWithOwnerFailureLeavesNoOrganization(t *testing.T) {
	store := &mockOrgStore{createErr: errors.New("connection reset")}
	svc := newTestService(store)

	_, err := svc.CreateWithOwner(context.Background(), "Acme Events", uuid.New())
	require.Error(t, err)
	// Creation is a single atomic store write: on failure neither the
	// organization nor an ownerless remnant of it exists.
	require.Empty(t, store.orgs)
	require.Empty(t, store.memberships)
}

func TestAddMemberRequiresAdminOrOwner(t *testing.T) {
	actor, target := uuid.New(), uuid.New()
	store := &mockOrgStore{memberships: map[uuid.UUID]models.OrgRole{actor: models.OrgRoleMember}}
	svc := newTestService(store)

	_, err := svc.AddMember(context.Background(), uuid.New(), actor, target, models.OrgRoleMember)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindForbidden))

	store.memberships[actor] = models.OrgRoleAdmin
	_, err = svc.AddMember(context.Background(), uuid.New(), actor, target, models.OrgRoleMember)
	require.NoError(t, err)
}

func TestDemoteLastOwnerRejected(t *testing.T) {
	owner := uuid.New()
	store := &mockOrgStore{
		memberships: map[uuid.UUID]models.OrgRole{owner: models.OrgRoleOwner},
		owners:      1,
	}
	svc := newTestService(store)

	err := svc.UpdateMemberRole(context.Background(), uuid.New(), owner, owner, models.OrgRoleAdmin)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindConflict))
	require.Equal(t, models.OrgRoleOwner, store.memberships[owner])
}

func TestDemoteOwnerWithCoOwnerAllowed(t *testing.T) {
	owner, coOwner := uuid.New(), uuid.New()
	store := &mockOrgStore{
		memberships: map[uuid.UUID]models.OrgRole{
			owner:   models.OrgRoleOwner,
			coOwner: models.OrgRoleOwner,
		},
		owners: 2,
	}
	svc := newTestService(store)

	err := svc.UpdateMemberRole(context.Background(), uuid.New(), coOwner, owner, models.OrgRoleAdmin)
	require.NoError(t, err)
	require.Equal(t, models.OrgRoleAdmin, store.memberships[owner])
}

func TestRemoveLastOwnerRejected(t *testing.T) {
	owner := uuid.New()
	store := &mockOrgStore{
		memberships: map[uuid.UUID]models.OrgRole{owner: models.OrgRoleOwner},
		owners:      1,
	}
	svc := newTestService(store)

	err := svc.RemoveMember(context.Background(), uuid.New(), owner, owner)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.KindConflict))
	require.Empty(t, store.removed)
}

func TestTransferOwnership(t *testing.T) {
	owner, admin := uuid.New(), uuid.New()
	store := &mockOrgStore{
		memberships: map[uuid.UUID]models.OrgRole{
			owner: models.OrgRoleOwner,
			admin: models.OrgRoleAdmin,
		},
		owners: 1,
	}
	svc := newTestService(store)

	err := svc.TransferOwnership(context.Background(), uuid.New(), owner, admin)
	require.NoError(t, err)
	require.True(t, store.transferred)
	require.Equal(t, models.OrgRoleOwner, store.memberships[admin])
	require.Equal(t, models.OrgRoleAdmin, store.memberships[owner])
}

func TestTransferOwnershipChecks(t *testing.T) {
	owner, admin, outsider := uuid.New(), uuid.New(), uuid.New()
	store := &mockOrgStore{
		memberships: map[uuid.UUID]models.OrgRole{
			owner: models.OrgRoleOwner,
			admin: models.OrgRoleAdmin,
		},
	}
	svc := newTestService(store)

	err := svc.TransferOwnership(context.Background(), uuid.New(), owner, owner)
	require.True(t, errs.IsKind(err, errs.KindState))

	err = svc.TransferOwnership(context.Background(), uuid.New(), admin, owner)
	require.True(t, errs.IsKind(err, errs.KindForbidden))

	err = svc.TransferOwnership(context.Background(), uuid.New(), owner, outsider)
	require.True(t, errs.IsKind(err, errs.KindNotFound))
	require.False(t, store.transferred)
}
