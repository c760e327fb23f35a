package services

import (
	"context"
	"testing"
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/commerce"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/config"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monthlyPlan = models.Plan{
	ID:           uuid.New(),
	Name:         "monthly",
	DisplayName:  "Mensuel",
	DurationDays: 30,
	IsActive:     true,
}

func newSubscriptionFixture(t *testing.T) (*SubscriptionService, *memSubscriptions, *memCache) {
	t.Helper()
	store := newMemSubscriptions(monthlyPlan)
	cache := newMemCache()
	svc := NewSubscriptionService(store, cache, config.SubscriptionConfig{WarningDays: 7, CacheTTL: time.Minute}, quietLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc, store, cache
}

func TestSubscriptionStatus(t *testing.T) {
	svc, store, _ := newSubscriptionFixture(t)
	user := models.Principal{UserID: uuid.New()}

	status, err := svc.Status(context.Background(), user)
	require.NoError(t, err)
	assert.False(t, status.Active)
	assert.True(t, status.Expired)

	other := models.Principal{UserID: uuid.New()}
	store.subs[other.UserID] = models.Subscription{
		UserID:    other.UserID,
		PlanName:  "monthly",
		ExpiresAt: fixedNow.Add(3*24*time.Hour + time.Hour),
	}

	status, err = svc.Status(context.Background(), other)
	require.NoError(t, err)
	assert.True(t, status.Active)
	assert.Equal(t, 4, status.DaysRemaining)
	assert.True(t, status.ExpiresSoon)
}

func TestSubscriptionStatusUsesCache(t *testing.T) {
	svc, store, cache := newSubscriptionFixture(t)
	user := models.Principal{UserID: uuid.New()}
	store.subs[user.UserID] = models.Subscription{UserID: user.UserID, ExpiresAt: fixedNow.AddDate(0, 0, 20)}

	_, err := svc.Status(context.Background(), user)
	require.NoError(t, err)
	assert.Contains(t, cache.values, subscriptionCacheKey(user.UserID))

	delete(store.subs, user.UserID)
	status, err := svc.Status(context.Background(), user)
	require.NoError(t, err)
	assert.True(t, status.Active)
}

func TestApproveExtendsFromCurrentExpiry(t *testing.T) {
	svc, store, cache := newSubscriptionFixture(t)
	user := models.Principal{UserID: uuid.New()}
	admin := models.Principal{UserID: uuid.New(), IsAdmin: true}
	current := fixedNow.AddDate(0, 0, 10)
	store.subs[user.UserID] = models.Subscription{UserID: user.UserID, ExpiresAt: current}
	cache.values[subscriptionCacheKey(user.UserID)] = "{}"

	req, err := svc.RequestPlan(context.Background(), user, monthlyPlan.ID)
	require.NoError(t, err)

	sub, err := svc.Approve(context.Background(), admin, req.ID)
	require.NoError(t, err)

	assert.Equal(t, current.AddDate(0, 0, 30), sub.ExpiresAt)
	assert.Equal(t, models.SubscriptionRequestApproved, store.requests[req.ID].Status)
	assert.Equal(t, admin.UserID, *store.requests[req.ID].DecidedBy)
	assert.NotContains(t, cache.values, subscriptionCacheKey(user.UserID))
}

func TestApproveLapsedSubscriptionStartsNow(t *testing.T) {
	svc, store, _ := newSubscriptionFixture(t)
	user := models.Principal{UserID: uuid.New()}
	store.subs[user.UserID] = models.Subscription{UserID: user.UserID, ExpiresAt: fixedNow.AddDate(0, -2, 0)}

	req, err := svc.RequestPlan(context.Background(), user, monthlyPlan.ID)
	require.NoError(t, err)

	sub, err := svc.Approve(context.Background(), models.Principal{UserID: uuid.New(), IsAdmin: true}, req.ID)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.AddDate(0, 0, 30), sub.ExpiresAt)
}

func TestDecidedRequestCannotBeDecidedAgain(t *testing.T) {
	svc, store, _ := newSubscriptionFixture(t)
	admin := models.Principal{UserID: uuid.New(), IsAdmin: true}

	req, err := svc.RequestPlan(context.Background(), models.Principal{UserID: uuid.New()}, monthlyPlan.ID)
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), admin, req.ID)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), admin, req.ID)
	var transition *commerce.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, "rejected", transition.From)
	assert.Equal(t, 1, store.decided)
	assert.Empty(t, store.subs)
}

func TestRequestPlanUnknownPlan(t *testing.T) {
	svc, _, _ := newSubscriptionFixture(t)

	_, err := svc.RequestPlan(context.Background(), models.Principal{UserID: uuid.New()}, uuid.New())

	var notFound *commerce.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestListRequestsRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newSubscriptionFixture(t)

	_, err := svc.ListRequests(context.Background(), "archived")

	var validation *commerce.ValidationError
	require.ErrorAs(t, err, &validation)
}
