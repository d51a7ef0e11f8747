package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a platform user.
type User struct {
	ID          uuid.UUID         `json:"id"`
	Email       string            `json:"email"`
	Password    string            `json:"-"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	ImageURL    string            `json:"image_url"`
	CompanyName string            `json:"company_name"`
	Bio         string            `json:"bio"`
	SocialLinks map[string]string `json:"social_links,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// FullName returns the display name built from first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
