package privacy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/backend/internal/models"
)

type mockPolicyStore struct {
	settings *models.PrivacySettings
	override *models.PrivacyOverride
}

func (m *mockPolicyStore) Settings(_ context.Context, _ uuid.UUID) (*models.PrivacySettings, error) {
	return m.settings, nil
}

func (m *mockPolicyStore) Override(_ context.Context, _, _ uuid.UUID) (*models.PrivacyOverride, error) {
	return m.override, nil
}

func TestEffectivePolicyDefaults(t *testing.T) {
	svc := NewService(&mockPolicyStore{})

	policy, err := svc.EffectivePolicy(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	require.Equal(t, models.EmailConnectionsOrganizers, policy.EmailVisibility)
	require.Equal(t, models.RequestsFromEveryone, policy.AllowConnectionRequests)
	require.Equal(t, models.SocialLinksEveryone, policy.ShowSocialLinks)
	require.False(t, policy.ShowCompany)
	require.False(t, policy.ShowBio)
	require.False(t, policy.ShowPublicEmail)
}

func TestEffectivePolicyUsesGlobalSettings(t *testing.T) {
	svc := NewService(&mockPolicyStore{
		settings: &models.PrivacySettings{
			EmailVisibility:         models.EmailHidden,
			AllowConnectionRequests: models.RequestsFromNobody,
			ShowSocialLinks:         models.SocialLinksConnections,
			ShowCompany:             true,
		},
	})

	policy, err := svc.EffectivePolicy(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	require.Equal(t, models.EmailHidden, policy.EmailVisibility)
	require.Equal(t, models.RequestsFromNobody, policy.AllowConnectionRequests)
	require.Equal(t, models.SocialLinksConnections, policy.ShowSocialLinks)
	require.True(t, policy.ShowCompany)
}

func TestEffectivePolicyOverrideMergesFieldByField(t *testing.T) {
	emailPublic := models.EmailPublic
	showBio := true
	svc := NewService(&mockPolicyStore{
		settings: &models.PrivacySettings{
			EmailVisibility:         models.EmailHidden,
			AllowConnectionRequests: models.RequestsFromNobody,
			ShowSocialLinks:         models.SocialLinksConnections,
		},
		override: &models.PrivacyOverride{
			EmailVisibility: &emailPublic,
			ShowBio:         &showBio,
		},
	})

	eventID := uuid.New()
	policy, err := svc.EffectivePolicy(context.Background(), uuid.New(), &eventID)
	require.NoError(t, err)
	// Overridden fields replace, absent fields fall back.
	require.Equal(t, models.EmailPublic, policy.EmailVisibility)
	require.True(t, policy.ShowBio)
	require.Equal(t, models.RequestsFromNobody, policy.AllowConnectionRequests)
	require.Equal(t, models.SocialLinksConnections, policy.ShowSocialLinks)
}

func TestEffectivePolicyOverrideIgnoredWithoutEventContext(t *testing.T) {
	emailPublic := models.EmailPublic
	svc := NewService(&mockPolicyStore{
		settings: &models.PrivacySettings{
			EmailVisibility:         models.EmailHidden,
			AllowConnectionRequests: models.RequestsFromEveryone,
			ShowSocialLinks:         models.SocialLinksEveryone,
		},
		override: &models.PrivacyOverride{EmailVisibility: &emailPublic},
	})

	policy, err := svc.EffectivePolicy(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	require.Equal(t, models.EmailHidden, policy.EmailVisibility)
}
