// Package organizations manages organization aggregates and their
// memberships. Membership rows belong to the organization; the
// at-least-one-owner invariant is enforced here, not by the database.
package organizations

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/errs"
)

// Store persists organizations and their memberships.
type Store interface {
	// CreateWithOwner creates the organization and the creator's owner
	// membership together. Either both rows commit or neither does.
	CreateWithOwner(ctx context.Context, org *models.Organization, ownerID uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	Membership(ctx context.Context, orgID, userID uuid.UUID) (*models.OrgMembership, error)
	AddMember(ctx context.Context, orgID, userID uuid.UUID, role models.OrgRole) (*models.OrgMembership, error)
	UpdateMemberRole(ctx context.Context, orgID, userID uuid.UUID, role models.OrgRole) error
	RemoveMember(ctx context.Context, orgID, userID uuid.UUID) error
	CountOwners(ctx context.Context, orgID uuid.UUID) (int, error)
	// TransferOwnership demotes one owner to admin and promotes another
	// member to owner in a single transaction. Both mutations commit
	// together or neither does.
	TransferOwnership(ctx context.Context, orgID, fromUserID, toUserID uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Organization, error)
	ListMembers(ctx context.Context, orgID uuid.UUID) ([]*models.OrgMembership, error)
}

// Service applies organization business rules over the store.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates an organizations service.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// CreateWithOwner creates an organization and makes the creator its owner.
// The store persists both atomically so an organization can never exist
// without at least one owner.
func (s *Service) CreateWithOwner(ctx context.Context, name string, creatorID uuid.UUID) (*models.Organization, error) {
	org := &models.Organization{Name: name}
	if err := s.store.CreateWithOwner(ctx, org, creatorID); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *Service) requireAdminOrOwner(ctx context.Context, orgID, actorID uuid.UUID) error {
	m, err := s.store.Membership(ctx, orgID, actorID)
	if err != nil {
		return err
	}
	if m == nil || (m.Role != models.OrgRoleOwner && m.Role != models.OrgRoleAdmin) {
		return errs.Forbidden("requires organization owner or admin role")
	}
	return nil
}

// AddMember adds a user to the organization. Actor must be owner or admin.
func (s *Service) AddMember(ctx context.Context, orgID, actorID, userID uuid.UUID, role models.OrgRole) (*models.OrgMembership, error) {
	if err := s.requireAdminOrOwner(ctx, orgID, actorID); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, errs.State("unknown organization role")
	}
	return s.store.AddMember(ctx, orgID, userID, role)
}

// UpdateMemberRole changes a member's role. Demotions that would leave the
// organization with zero owners are rejected.
func (s *Service) UpdateMemberRole(ctx context.Context, orgID, actorID, userID uuid.UUID, role models.OrgRole) error {
	if err := s.requireAdminOrOwner(ctx, orgID, actorID); err != nil {
		return err
	}
	if !role.Valid() {
		return errs.State("unknown organization role")
	}
	current, err := s.store.Membership(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if current == nil {
		return errs.NotFound("user is not a member of this organization")
	}
	if current.Role == models.OrgRoleOwner && role != models.OrgRoleOwner {
		owners, err := s.store.CountOwners(ctx, orgID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return errs.Conflict("cannot demote the last owner of the organization")
		}
	}
	return s.store.UpdateMemberRole(ctx, orgID, userID, role)
}

// RemoveMember removes a member. Removing the last owner is rejected.
func (s *Service) RemoveMember(ctx context.Context, orgID, actorID, userID uuid.UUID) error {
	if err := s.requireAdminOrOwner(ctx, orgID, actorID); err != nil {
		return err
	}
	current, err := s.store.Membership(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if current == nil {
		return errs.NotFound("user is not a member of this organization")
	}
	if current.Role == models.OrgRoleOwner {
		owners, err := s.store.CountOwners(ctx, orgID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return errs.Conflict("cannot remove the last owner of the organization")
		}
	}
	return s.store.RemoveMember(ctx, orgID, userID)
}

// TransferOwnership demotes the acting owner and promotes another member to
// owner atomically, so a crash mid-transfer can never leave zero owners.
func (s *Service) TransferOwnership(ctx context.Context, orgID, fromUserID, toUserID uuid.UUID) error {
	if fromUserID == toUserID {
		return errs.State("cannot transfer ownership to yourself")
	}
	from, err := s.store.Membership(ctx, orgID, fromUserID)
	if err != nil {
		return err
	}
	if from == nil || from.Role != models.OrgRoleOwner {
		return errs.Forbidden("only an owner may transfer ownership")
	}
	to, err := s.store.Membership(ctx, orgID, toUserID)
	if err != nil {
		return err
	}
	if to == nil {
		return errs.NotFound("new owner must already be a member of the organization")
	}
	return s.store.TransferOwnership(ctx, orgID, fromUserID, toUserID)
}

// Get returns an organization visible to its members.
func (s *Service) Get(ctx context.Context, orgID, viewerID uuid.UUID) (*models.Organization, error) {
	m, err := s.store.Membership(ctx, orgID, viewerID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errs.Forbidden("not a member of this organization")
	}
	org, err := s.store.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, errs.NotFound("organization not found")
	}
	return org, nil
}

// ListForUser returns the organizations the user belongs to.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Organization, error) {
	return s.store.ListForUser(ctx, userID)
}

// ListMembers returns the organization's memberships, visible to members.
func (s *Service) ListMembers(ctx context.Context, orgID, viewerID uuid.UUID) ([]*models.OrgMembership, error) {
	m, err := s.store.Membership(ctx, orgID, viewerID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errs.Forbidden("not a member of this organization")
	}
	return s.store.ListMembers(ctx, orgID)
}
