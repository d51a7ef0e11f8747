package privacy

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// Repository handles privacy settings and override persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a privacy repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Settings returns the user's global privacy settings, or nil if never set.
func (r *Repository) Settings(ctx context.Context, userID uuid.UUID) (*models.PrivacySettings, error) {
	const q = `SELECT user_id, email_visibility, allow_connection_requests, show_social_links,
		show_company, show_bio, show_public_email, public_email, created_at, updated_at
		FROM privacy_settings WHERE user_id = $1`
	var s models.PrivacySettings
	err := r.pool.QueryRow(ctx, q, userID).Scan(&s.UserID, &s.EmailVisibility, &s.AllowConnectionRequests,
		&s.ShowSocialLinks, &s.ShowCompany, &s.ShowBio, &s.ShowPublicEmail, &s.PublicEmail,
		&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertSettings creates or replaces the user's global privacy settings.
func (r *Repository) UpsertSettings(ctx context.Context, s *models.PrivacySettings) error {
	const q = `INSERT INTO privacy_settings (user_id, email_visibility, allow_connection_requests,
		show_social_links, show_company, show_bio, show_public_email, public_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			email_visibility = EXCLUDED.email_visibility,
			allow_connection_requests = EXCLUDED.allow_connection_requests,
			show_social_links = EXCLUDED.show_social_links,
			show_company = EXCLUDED.show_company,
			show_bio = EXCLUDED.show_bio,
			show_public_email = EXCLUDED.show_public_email,
			public_email = EXCLUDED.public_email,
			updated_at = NOW()
		RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, q, s.UserID, s.EmailVisibility, s.AllowConnectionRequests,
		s.ShowSocialLinks, s.ShowCompany, s.ShowBio, s.ShowPublicEmail, s.PublicEmail).
		Scan(&s.CreatedAt, &s.UpdatedAt)
}

// Override returns the user's privacy override for the event, or nil.
func (r *Repository) Override(ctx context.Context, userID, eventID uuid.UUID) (*models.PrivacyOverride, error) {
	const q = `SELECT id, user_id, event_id, email_visibility, allow_connection_requests,
		show_social_links, show_company, show_bio, show_public_email, public_email, created_at, updated_at
		FROM privacy_overrides WHERE user_id = $1 AND event_id = $2`
	var o models.PrivacyOverride
	err := r.pool.QueryRow(ctx, q, userID, eventID).Scan(&o.ID, &o.UserID, &o.EventID,
		&o.EmailVisibility, &o.AllowConnectionRequests, &o.ShowSocialLinks,
		&o.ShowCompany, &o.ShowBio, &o.ShowPublicEmail, &o.PublicEmail, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpsertOverride creates or replaces the user's privacy override for one event.
func (r *Repository) UpsertOverride(ctx context.Context, o *models.PrivacyOverride) error {
	const q = `INSERT INTO privacy_overrides (id, user_id, event_id, email_visibility,
		allow_connection_requests, show_social_links, show_company, show_bio, show_public_email, public_email)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, event_id) DO UPDATE SET
			email_visibility = EXCLUDED.email_visibility,
			allow_connection_requests = EXCLUDED.allow_connection_requests,
			show_social_links = EXCLUDED.show_social_links,
			show_company = EXCLUDED.show_company,
			show_bio = EXCLUDED.show_bio,
			show_public_email = EXCLUDED.show_public_email,
			public_email = EXCLUDED.public_email,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, o.UserID, o.EventID, o.EmailVisibility, o.AllowConnectionRequests,
		o.ShowSocialLinks, o.ShowCompany, o.ShowBio, o.ShowPublicEmail, o.PublicEmail).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

// DeleteOverride removes the user's privacy override for the event.
func (r *Repository) DeleteOverride(ctx context.Context, userID, eventID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM privacy_overrides WHERE user_id = $1 AND event_id = $2`, userID, eventID)
	return err
}
