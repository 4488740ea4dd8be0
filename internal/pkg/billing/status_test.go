package billing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatusUnknownEmailIsFree(t *testing.T) {
	svc, _, _ := newTestService(t)

	st, err := svc.GetStatus(context.Background(), "unknown@x.com")
	require.NoError(t, err)

	b, err := json.Marshal(st)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hasSubscription":false,"tier":"free","status":null}`, string(b))
}

func TestGetStatusRequiresEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetStatus(context.Background(), " ")
	assert.True(t, IsValidation(err))
}

func TestGetStatusReflectsWebhookState(t *testing.T) {
	store := newMemoryCache()
	svc, _, _ := newTestService(t, WithCache(store))
	ctx := context.Background()

	st, err := svc.GetStatus(ctx, "maya@example.org")
	require.NoError(t, err)
	assert.False(t, st.HasSubscription)
	assert.Contains(t, store.values, "subscription:status:maya@example.org")

	_, err = deliver(t, svc, eventPayload(t, "evt_1", EventSubscriptionCreated, 1700000000, subscriptionObject("sub_1", "active", studentMeta)))
	require.NoError(t, err)
	assert.Contains(t, store.deleted, "subscription:status:maya@example.org")

	st, err = svc.GetStatus(ctx, "Maya@Example.org")
	require.NoError(t, err)
	assert.True(t, st.HasSubscription)
	assert.Equal(t, "bronze", st.Tier)
	require.NotNil(t, st.Status)
	assert.Equal(t, models.BillingStatusActive, *st.Status)
	require.NotNil(t, st.CareerTrack)
	assert.Equal(t, "aviation", *st.CareerTrack)
	require.NotNil(t, st.CurrentPeriodEnd)

	// served from cache
	cached, err := svc.GetStatus(ctx, "maya@example.org")
	require.NoError(t, err)
	assert.Equal(t, st.Tier, cached.Tier)
}

func TestPickSubscriptionPrefersEntitling(t *testing.T) {
	subs := []models.BillingSubscription{
		{ProviderSubscriptionID: "old", Status: models.BillingStatusActive},
		{ProviderSubscriptionID: "ended", Status: models.BillingStatusCanceled},
	}
	subs[1].UpdatedAt = subs[0].UpdatedAt.Add(1)

	best := pickSubscription(subs)
	require.NotNil(t, best)
	assert.Equal(t, "old", best.ProviderSubscriptionID)

	subs = append(subs, models.BillingSubscription{ProviderSubscriptionID: "new", Status: models.BillingStatusTrialing})
	subs[2].UpdatedAt = subs[1].UpdatedAt.Add(1)
	assert.Equal(t, "new", pickSubscription(subs).ProviderSubscriptionID)

	assert.Nil(t, pickSubscription(nil))
}

func TestStatusEntitled(t *testing.T) {
	assert.False(t, freeStatus().Entitled())
	assert.False(t, (*Status)(nil).Entitled())

	for status, want := range map[string]bool{
		models.BillingStatusActive:   true,
		models.BillingStatusTrialing: true,
		models.BillingStatusPastDue:  true,
		models.BillingStatusCanceled: false,
	} {
		st := statusFromRecord(&models.BillingSubscription{Tier: "individual", Status: status})
		assert.Equal(t, want, st.Entitled(), status)
	}
}
