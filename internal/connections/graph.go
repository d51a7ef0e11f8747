// Package connections manages the pairwise social connection state machine:
// a directional request that resolves to a bidirectional result. At most one
// logical connection exists per unordered pair of users.
package connections

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/privacy"
	"github.com/gatherly/backend/pkg/errs"
)

// Decision is a response to a pending connection request.
type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionDecline Decision = "decline"
)

// Store provides connection persistence and the relational queries the
// request policy needs.
type Store interface {
	// Get returns the connection by ID, or nil if missing.
	Get(ctx context.Context, id uuid.UUID) (*models.Connection, error)
	// Between returns the connection relating the pair in either direction,
	// or nil if none exists.
	Between(ctx context.Context, a, b uuid.UUID) (*models.Connection, error)
	// CreatePending inserts a pending connection. The implementation must
	// re-check the bidirectional uniqueness invariant atomically with the
	// insert and return a DuplicateConnection error if violated.
	CreatePending(ctx context.Context, conn *models.Connection) error
	// Resolve transitions a pending connection to a terminal status. Returns
	// false if the connection was not pending anymore.
	Resolve(ctx context.Context, id uuid.UUID, status models.ConnectionStatus) (bool, error)
	// SharesEvent reports whether both users hold a membership in at least
	// one common event.
	SharesEvent(ctx context.Context, a, b uuid.UUID) (bool, error)
	// IsOrganizerOfSharedEvent reports whether requester is an explicit
	// admin/organizer of an event the recipient belongs to.
	IsOrganizerOfSharedEvent(ctx context.Context, requesterID, recipientID uuid.UUID) (bool, error)
	// IsConnectedToOrganizerOf reports whether requester has an accepted
	// connection to an admin/organizer of an event the recipient belongs to.
	IsConnectedToOrganizerOf(ctx context.Context, requesterID, recipientID uuid.UUID) (bool, error)
	// ListForUser returns connections where the user is either side.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Connection, error)
}

// PolicySource yields the recipient's effective privacy policy.
type PolicySource interface {
	EffectivePolicy(ctx context.Context, subjectID uuid.UUID, eventCtx *uuid.UUID) (privacy.Policy, error)
}

// Graph is the connection service.
type Graph struct {
	store    Store
	policies PolicySource
	logger   *zap.Logger
}

// NewGraph creates a connection graph service.
func NewGraph(store Store, policies PolicySource, logger *zap.Logger) *Graph {
	return &Graph{store: store, policies: policies, logger: logger}
}

// Request creates a pending connection from requester to recipient after
// checking self-connection, bidirectional uniqueness and the recipient's
// effective allow_connection_requests policy for the event context.
func (g *Graph) Request(ctx context.Context, requesterID, recipientID uuid.UUID, icebreaker string, eventCtx *uuid.UUID) (*models.Connection, error) {
	if requesterID == recipientID {
		return nil, errs.SelfConnection("cannot connect with yourself")
	}
	existing, err := g.store.Between(ctx, requesterID, recipientID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.DuplicateConnection("a connection already exists between these users")
	}
	allowed, err := g.CanRequest(ctx, requesterID, recipientID, eventCtx)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errs.PolicyDenied("recipient does not accept connection requests from you")
	}

	conn := &models.Connection{
		RequesterID:        requesterID,
		RecipientID:        recipientID,
		Status:             models.ConnectionPending,
		Icebreaker:         icebreaker,
		OriginatingEventID: eventCtx,
	}
	// CreatePending re-checks the unordered pair under a lock to close the
	// race where both users request each other simultaneously.
	if err := g.store.CreatePending(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// CanRequest evaluates only the recipient's policy gate, without the
// self/duplicate checks. Used both by Request and by the visibility filter
// for the can_send_connection_request projection field.
func (g *Graph) CanRequest(ctx context.Context, requesterID, recipientID uuid.UUID, eventCtx *uuid.UUID) (bool, error) {
	policy, err := g.policies.EffectivePolicy(ctx, recipientID, eventCtx)
	if err != nil {
		return false, err
	}
	switch policy.AllowConnectionRequests {
	case models.RequestsFromNobody:
		return false, nil
	case models.RequestsFromEveryone:
		return g.store.SharesEvent(ctx, requesterID, recipientID)
	case models.RequestsFromConnectionsOrganizers:
		organizer, err := g.store.IsOrganizerOfSharedEvent(ctx, requesterID, recipientID)
		if err != nil {
			return false, err
		}
		if organizer {
			return true, nil
		}
		return g.store.IsConnectedToOrganizerOf(ctx, requesterID, recipientID)
	}
	g.logger.Warn("unknown connection request policy, denying",
		zap.String("policy", string(policy.AllowConnectionRequests)),
		zap.String("recipient_id", recipientID.String()))
	return false, nil
}

// Respond resolves a pending connection. Only the recipient may respond,
// only once, and only while the connection is pending.
func (g *Graph) Respond(ctx context.Context, connectionID, responderID uuid.UUID, decision Decision) (*models.Connection, error) {
	conn, err := g.store.Get(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, errs.NotFound("connection not found")
	}
	if conn.RecipientID != responderID {
		return nil, errs.Forbidden("only the recipient may respond to a connection request")
	}
	if conn.Status != models.ConnectionPending {
		return nil, errs.State("connection has already been responded to")
	}

	var status models.ConnectionStatus
	switch decision {
	case DecisionAccept:
		status = models.ConnectionAccepted
	case DecisionDecline:
		status = models.ConnectionDeclined
	default:
		return nil, errs.State("decision must be accept or decline")
	}

	resolved, err := g.store.Resolve(ctx, connectionID, status)
	if err != nil {
		return nil, err
	}
	if !resolved {
		return nil, errs.State("connection has already been responded to")
	}
	conn.Status = status
	return conn, nil
}

// StatusBetween returns the connection status relating the pair in either
// direction, or "" if no connection exists.
func (g *Graph) StatusBetween(ctx context.Context, a, b uuid.UUID) (models.ConnectionStatus, error) {
	conn, err := g.store.Between(ctx, a, b)
	if err != nil {
		return "", err
	}
	if conn == nil {
		return "", nil
	}
	return conn.Status, nil
}

// IsConnected reports whether the pair has an accepted connection.
func (g *Graph) IsConnected(ctx context.Context, a, b uuid.UUID) (bool, error) {
	status, err := g.StatusBetween(ctx, a, b)
	if err != nil {
		return false, err
	}
	return status == models.ConnectionAccepted, nil
}

// ListForUser returns the user's connections in either direction.
func (g *Graph) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Connection, error) {
	return g.store.ListForUser(ctx, userID)
}

// Get returns a connection visible to the given user.
func (g *Graph) Get(ctx context.Context, connectionID, userID uuid.UUID) (*models.Connection, error) {
	conn, err := g.store.Get(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if conn == nil || !conn.Involves(userID) {
		return nil, errs.NotFound("connection not found")
	}
	return conn, nil
}
