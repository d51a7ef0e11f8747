package users

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name,
	COALESCE(image_url, ''), COALESCE(company_name, ''), COALESCE(bio, ''), social_links, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var links []byte
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.CompanyName, &u.Bio, &links, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(links) > 0 {
		_ = json.Unmarshal(links, &u.SocialLinks)
	}
	return &u, nil
}

// Get returns a user by ID, or nil.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

// GetByEmail returns a user by email, or nil.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, q, email))
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	links, err := json.Marshal(u.SocialLinks)
	if err != nil {
		return err
	}
	const q = `INSERT INTO users (id, email, password_hash, first_name, last_name, image_url, company_name, bio, social_links)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, u.Email, u.Password, u.FirstName, u.LastName,
		u.ImageURL, u.CompanyName, u.Bio, links).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// UpdateProfile updates the user's profile fields.
func (r *Repository) UpdateProfile(ctx context.Context, u *models.User) error {
	links, err := json.Marshal(u.SocialLinks)
	if err != nil {
		return err
	}
	const q = `UPDATE users SET first_name = $2, last_name = $3, image_url = NULLIF($4, ''),
		company_name = NULLIF($5, ''), bio = NULLIF($6, ''), social_links = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, u.ID, u.FirstName, u.LastName, u.ImageURL, u.CompanyName, u.Bio, links).
		Scan(&u.UpdatedAt)
}

// ListByIDs returns users for a set of IDs, keyed by ID.
func (r *Repository) ListByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uuid.UUID]*models.User, len(ids))
	for rows.Next() {
		var u models.User
		var links []byte
		if err := rows.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName,
			&u.ImageURL, &u.CompanyName, &u.Bio, &links, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if len(links) > 0 {
			_ = json.Unmarshal(links, &u.SocialLinks)
		}
		out[u.ID] = &u
	}
	return out, rows.Err()
}
