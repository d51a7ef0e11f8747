package visibility

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/privacy"
)

type mockSources struct {
	status     models.ConnectionStatus
	canRequest bool
	policy     privacy.Policy
	privileged bool
	membership *models.EventMembership
}

func (m *mockSources) StatusBetween(_ context.Context, _, _ uuid.UUID) (models.ConnectionStatus, error) {
	return m.status, nil
}

func (m *mockSources) CanRequest(_ context.Context, _, _ uuid.UUID, _ *uuid.UUID) (bool, error) {
	return m.canRequest, nil
}

func (m *mockSources) EffectivePolicy(_ context.Context, _ uuid.UUID, _ *uuid.UUID) (privacy.Policy, error) {
	return m.policy, nil
}

func (m *mockSources) SharesPrivilegedContext(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return m.privileged, nil
}

func (m *mockSources) EventMembership(_ context.Context, _, _ uuid.UUID) (*models.EventMembership, error) {
	return m.membership, nil
}

func newTestFilter(src *mockSources) *Filter {
	return NewFilter(src, src, src, src, zap.NewNop())
}

func testSubject() *models.User {
	return &models.User{
		ID:          uuid.New(),
		Email:       "ada@example.com",
		FirstName:   "Ada",
		LastName:    "Lovelace",
		CompanyName: "Analytical Engines Ltd",
		Bio:         "first programmer",
		SocialLinks: map[string]string{"x": "https://x.com/ada"},
	}
}

func TestProjectAlwaysVisibleFields(t *testing.T) {
	subject := testSubject()
	src := &mockSources{policy: privacy.DefaultPolicy()}

	proj, err := newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, nil)
	require.NoError(t, err)
	require.Equal(t, subject.ID, proj.ID)
	require.Equal(t, "Ada", proj.FirstName)
	require.Equal(t, "Ada Lovelace", proj.FullName)
}

func TestProjectMissingViewerFailsClosed(t *testing.T) {
	subject := testSubject()
	policy := privacy.DefaultPolicy()
	policy.EmailVisibility = models.EmailPublic
	src := &mockSources{policy: policy}

	proj, err := newTestFilter(src).Project(context.Background(), ViewerContext{}, subject, nil)
	require.NoError(t, err)
	require.Nil(t, proj.Email)
	require.Nil(t, proj.CompanyName)
	require.Nil(t, proj.Bio)
	require.Nil(t, proj.SocialLinks)
	require.False(t, proj.CanSendConnectionRequest)
}

func TestProjectSelfViewUnfiltered(t *testing.T) {
	subject := testSubject()
	policy := privacy.DefaultPolicy()
	policy.EmailVisibility = models.EmailHidden
	src := &mockSources{policy: policy}

	proj, err := newTestFilter(src).Project(context.Background(), Viewer(subject.ID), subject, nil)
	require.NoError(t, err)
	require.NotNil(t, proj.Email)
	require.Equal(t, subject.Email, *proj.Email)
	require.NotNil(t, proj.CompanyName)
	require.NotNil(t, proj.Bio)
	require.NotNil(t, proj.SocialLinks)
}

func TestProjectEmailTiers(t *testing.T) {
	cases := []struct {
		name       string
		tier       models.EmailVisibility
		connected  bool
		privileged bool
		want       bool
	}{
		{"public to stranger", models.EmailPublic, false, false, true},
		{"hidden to connection", models.EmailHidden, true, false, false},
		{"connections_only to connection", models.EmailConnectionsOnly, true, false, true},
		{"connections_only to organizer", models.EmailConnectionsOnly, false, true, false},
		{"connections_organizers to organizer", models.EmailConnectionsOrganizers, false, true, true},
		{"connections_organizers to connection", models.EmailConnectionsOrganizers, true, false, true},
		{"connections_organizers to stranger", models.EmailConnectionsOrganizers, false, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subject := testSubject()
			policy := privacy.DefaultPolicy()
			policy.EmailVisibility = tc.tier
			src := &mockSources{policy: policy, privileged: tc.privileged}
			if tc.connected {
				src.status = models.ConnectionAccepted
			}

			proj, err := newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, nil)
			require.NoError(t, err)
			if tc.want {
				require.NotNil(t, proj.Email)
				require.Equal(t, subject.Email, *proj.Email)
			} else {
				require.Nil(t, proj.Email)
			}
		})
	}
}

func TestProjectConnectionsOnlyRequiresAcceptedConnection(t *testing.T) {
	subject := testSubject()
	policy := privacy.DefaultPolicy()
	policy.EmailVisibility = models.EmailConnectionsOnly

	// A pending or declined connection is not a connection.
	for _, status := range []models.ConnectionStatus{models.ConnectionPending, models.ConnectionDeclined} {
		src := &mockSources{policy: policy, status: status}
		proj, err := newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, nil)
		require.NoError(t, err)
		require.Nil(t, proj.Email, "status %s", status)
	}

	src := &mockSources{policy: policy, status: models.ConnectionAccepted}
	proj, err := newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, nil)
	require.NoError(t, err)
	require.NotNil(t, proj.Email)
	require.Equal(t, subject.Email, *proj.Email)
}

func TestProjectPublicEmailSubstitution(t *testing.T) {
	subject := testSubject()
	publicAddr := "press@example.com"
	policy := privacy.DefaultPolicy()
	policy.EmailVisibility = models.EmailPublic
	policy.ShowPublicEmail = true
	policy.PublicEmail = &publicAddr

	// A stranger sees the public address instead of the real one.
	src := &mockSources{policy: policy}
	proj, err := newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, nil)
	require.NoError(t, err)
	require.NotNil(t, proj.Email)
	require.Equal(t, publicAddr, *proj.Email)

	// A connection still sees the real address.
	src = &mockSources{policy: policy, status: models.ConnectionAccepted}
	proj, err = newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, nil)
	require.NoError(t, err)
	require.NotNil(t, proj.Email)
	require.Equal(t, subject.Email, *proj.Email)
}

func TestProjectCompanyAndBioFlags(t *testing.T) {
	subject := testSubject()
	policy := privacy.DefaultPolicy()
	policy.ShowCompany = true
	policy.ShowBio = true

	// Flags on, but viewer is a stranger: still hidden.
	src := &mockSources{policy: policy}
	proj, err := newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, nil)
	require.NoError(t, err)
	require.Nil(t, proj.CompanyName)
	require.Nil(t, proj.Bio)

	// Connected viewer sees both.
	src = &mockSources{policy: policy, status: models.ConnectionAccepted}
	proj, err = newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, nil)
	require.NoError(t, err)
	require.NotNil(t, proj.CompanyName)
	require.NotNil(t, proj.Bio)

	// Flags off hide the fields even from connections.
	off := privacy.DefaultPolicy()
	src = &mockSources{policy: off, status: models.ConnectionAccepted}
	proj, err = newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, nil)
	require.NoError(t, err)
	require.Nil(t, proj.CompanyName)
	require.Nil(t, proj.Bio)
}

func TestProjectSocialLinks(t *testing.T) {
	subject := testSubject()

	policy := privacy.DefaultPolicy()
	policy.ShowSocialLinks = models.SocialLinksConnections
	src := &mockSources{policy: policy}
	proj, err := newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, nil)
	require.NoError(t, err)
	require.Nil(t, proj.SocialLinks)

	src = &mockSources{policy: policy, status: models.ConnectionAccepted}
	proj, err = newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, nil)
	require.NoError(t, err)
	require.Equal(t, subject.SocialLinks, proj.SocialLinks)

	policy.ShowSocialLinks = models.SocialLinksHidden
	src = &mockSources{policy: policy, status: models.ConnectionAccepted}
	proj, err = newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, nil)
	require.NoError(t, err)
	require.Nil(t, proj.SocialLinks)
}

func TestProjectCanSendConnectionRequest(t *testing.T) {
	subject := testSubject()

	// No existing connection: flag follows the policy gate.
	src := &mockSources{policy: privacy.DefaultPolicy(), canRequest: true}
	proj, err := newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, nil)
	require.NoError(t, err)
	require.True(t, proj.CanSendConnectionRequest)
	require.Nil(t, proj.ConnectionStatus)

	// Declined connections allow a re-request signal.
	src = &mockSources{policy: privacy.DefaultPolicy(), canRequest: true, status: models.ConnectionDeclined}
	proj, err = newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, nil)
	require.NoError(t, err)
	require.True(t, proj.CanSendConnectionRequest)
	require.NotNil(t, proj.ConnectionStatus)
	require.Equal(t, models.ConnectionDeclined, *proj.ConnectionStatus)

	// Pending and accepted never show the flag.
	for _, status := range []models.ConnectionStatus{models.ConnectionPending, models.ConnectionAccepted} {
		src = &mockSources{policy: privacy.DefaultPolicy(), canRequest: true, status: status}
		proj, err = newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, nil)
		require.NoError(t, err)
		require.False(t, proj.CanSendConnectionRequest, "status %s", status)
	}
}

func TestProjectEventFields(t *testing.T) {
	subject := testSubject()
	eventID := uuid.New()
	src := &mockSources{
		policy: privacy.DefaultPolicy(),
		membership: &models.EventMembership{
			EventID:      eventID,
			UserID:       subject.ID,
			Role:         models.EventRoleSpeaker,
			SpeakerBio:   "keynote speaker",
			SpeakerTitle: "CTO",
		},
	}

	proj, err := newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, &eventID)
	require.NoError(t, err)
	require.NotNil(t, proj.EventRole)
	require.Equal(t, models.EventRoleSpeaker, *proj.EventRole)
	require.NotNil(t, proj.SpeakerBio)
	require.Equal(t, "keynote speaker", *proj.SpeakerBio)
	require.NotNil(t, proj.SpeakerTitle)

	// No membership in the event: no event fields.
	src.membership = nil
	proj, err = newTestFilter(src).Project(context.Background(), Viewer(uuid.New()), subject, &eventID)
	require.NoError(t, err)
	require.Nil(t, proj.EventRole)
	require.Nil(t, proj.SpeakerBio)
}
