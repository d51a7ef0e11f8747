package organizations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// Repository handles organization and org_membership persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateWithOwner creates an organization and the creator's owner membership
// in one transaction. Committing them separately could leave an organization
// with zero owners, which no one could manage afterwards.
func (r *Repository) CreateWithOwner(ctx context.Context, org *models.Organization, ownerID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO organizations (id, name)
		VALUES (gen_random_uuid(), $1)
		RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, q, org.Name).Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return err
	}
	const memberQ = `INSERT INTO org_memberships (id, organization_id, user_id, role)
		VALUES (gen_random_uuid(), $1, $2, 'owner')`
	if _, err := tx.Exec(ctx, memberQ, org.ID, ownerID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Get returns an organization by ID, or nil.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	const q = `SELECT id, name, created_at, updated_at FROM organizations WHERE id = $1`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, id).Scan(&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

const membershipColumns = `id, organization_id, user_id, role, created_at, updated_at`

// Membership returns the user's membership in the organization, or nil.
func (r *Repository) Membership(ctx context.Context, orgID, userID uuid.UUID) (*models.OrgMembership, error) {
	const q = `SELECT ` + membershipColumns + ` FROM org_memberships WHERE organization_id = $1 AND user_id = $2`
	var m models.OrgMembership
	err := r.pool.QueryRow(ctx, q, orgID, userID).Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// AddMember adds a user to an organization with a role, updating the role
// if the membership already exists.
func (r *Repository) AddMember(ctx context.Context, orgID, userID uuid.UUID, role models.OrgRole) (*models.OrgMembership, error) {
	const q = `INSERT INTO org_memberships (id, organization_id, user_id, role)
		VALUES (gen_random_uuid(), $1, $2, $3)
		ON CONFLICT (organization_id, user_id) DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()
		RETURNING ` + membershipColumns
	var m models.OrgMembership
	err := r.pool.QueryRow(ctx, q, orgID, userID, role).Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMemberRole changes a member's role.
func (r *Repository) UpdateMemberRole(ctx context.Context, orgID, userID uuid.UUID, role models.OrgRole) error {
	const q = `UPDATE org_memberships SET role = $3, updated_at = NOW() WHERE organization_id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, q, orgID, userID, role)
	return err
}

// RemoveMember deletes a membership.
func (r *Repository) RemoveMember(ctx context.Context, orgID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM org_memberships WHERE organization_id = $1 AND user_id = $2`, orgID, userID)
	return err
}

// CountOwners returns the number of owners in the organization.
func (r *Repository) CountOwners(ctx context.Context, orgID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM org_memberships WHERE organization_id = $1 AND role = 'owner'`
	var n int
	if err := r.pool.QueryRow(ctx, q, orgID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// TransferOwnership demotes one owner to admin and promotes another member
// to owner in one transaction. The demotion re-checks the current owner role
// inside the transaction so concurrent transfers cannot interleave.
func (r *Repository) TransferOwnership(ctx context.Context, orgID, fromUserID, toUserID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE org_memberships SET role = 'admin', updated_at = NOW()
		WHERE organization_id = $1 AND user_id = $2 AND role = 'owner'`, orgID, fromUserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	tag, err = tx.Exec(ctx, `UPDATE org_memberships SET role = 'owner', updated_at = NOW()
		WHERE organization_id = $1 AND user_id = $2`, orgID, toUserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

// ListForUser returns organizations the user is a member of.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Organization, error) {
	const q = `SELECT o.id, o.name, o.created_at, o.updated_at
		FROM organizations o
		INNER JOIN org_memberships m ON m.organization_id = o.id
		WHERE m.user_id = $1
		ORDER BY o.name`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

// ListMembers returns memberships of an organization.
func (r *Repository) ListMembers(ctx context.Context, orgID uuid.UUID) ([]*models.OrgMembership, error) {
	const q = `SELECT ` + membershipColumns + ` FROM org_memberships WHERE organization_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.OrgMembership
	for rows.Next() {
		var m models.OrgMembership
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
