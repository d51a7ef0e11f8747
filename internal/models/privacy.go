package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailVisibility controls who may see a user's email address.
type EmailVisibility string

const (
	EmailPublic                EmailVisibility = "public"
	EmailConnectionsOrganizers EmailVisibility = "connections_organizers"
	EmailConnectionsOnly       EmailVisibility = "connections_only"
	EmailHidden                EmailVisibility = "hidden"
)

// Valid reports whether the value is a known email visibility tier.
func (v EmailVisibility) Valid() bool {
	switch v {
	case EmailPublic, EmailConnectionsOrganizers, EmailConnectionsOnly, EmailHidden:
		return true
	}
	return false
}

// ConnectionRequestPolicy controls who may send a user connection requests.
type ConnectionRequestPolicy string

const (
	RequestsFromEveryone              ConnectionRequestPolicy = "everyone"
	RequestsFromConnectionsOrganizers ConnectionRequestPolicy = "connections_of_organizers"
	RequestsFromNobody                ConnectionRequestPolicy = "nobody"
)

// Valid reports whether the value is a known connection request policy.
func (p ConnectionRequestPolicy) Valid() bool {
	switch p {
	case RequestsFromEveryone, RequestsFromConnectionsOrganizers, RequestsFromNobody:
		return true
	}
	return false
}

// SocialLinksVisibility controls who may see a user's social links.
type SocialLinksVisibility string

const (
	SocialLinksEveryone    SocialLinksVisibility = "everyone"
	SocialLinksConnections SocialLinksVisibility = "connections"
	SocialLinksHidden      SocialLinksVisibility = "hidden"
)

// Valid reports whether the value is a known social links visibility tier.
func (v SocialLinksVisibility) Valid() bool {
	switch v {
	case SocialLinksEveryone, SocialLinksConnections, SocialLinksHidden:
		return true
	}
	return false
}

// PrivacySettings are a user's global privacy preferences. One row per user.
type PrivacySettings struct {
	UserID                  uuid.UUID               `json:"user_id"`
	EmailVisibility         EmailVisibility         `json:"email_visibility"`
	AllowConnectionRequests ConnectionRequestPolicy `json:"allow_connection_requests"`
	ShowSocialLinks         SocialLinksVisibility   `json:"show_social_links"`
	ShowCompany             bool                    `json:"show_company"`
	ShowBio                 bool                    `json:"show_bio"`
	ShowPublicEmail         bool                    `json:"show_public_email"`
	PublicEmail             *string                 `json:"public_email,omitempty"`
	CreatedAt               time.Time               `json:"created_at"`
	UpdatedAt               time.Time               `json:"updated_at"`
}

// PrivacyOverride replaces individual global settings for one event's
// context. Nil fields fall back to the global value. Zero or one per user
// per event.
type PrivacyOverride struct {
	ID                      uuid.UUID                `json:"id"`
	UserID                  uuid.UUID                `json:"user_id"`
	EventID                 uuid.UUID                `json:"event_id"`
	EmailVisibility         *EmailVisibility         `json:"email_visibility,omitempty"`
	AllowConnectionRequests *ConnectionRequestPolicy `json:"allow_connection_requests,omitempty"`
	ShowSocialLinks         *SocialLinksVisibility   `json:"show_social_links,omitempty"`
	ShowCompany             *bool                    `json:"show_company,omitempty"`
	ShowBio                 *bool                    `json:"show_bio,omitempty"`
	ShowPublicEmail         *bool                    `json:"show_public_email,omitempty"`
	PublicEmail             *string                  `json:"public_email,omitempty"`
	CreatedAt               time.Time                `json:"created_at"`
	UpdatedAt               time.Time                `json:"updated_at"`
}
