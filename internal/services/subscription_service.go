package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/commerce"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/config"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/database"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SubscriptionService maneja planes, solicitudes y la señal de vigencia
type SubscriptionService struct {
	subscriptions SubscriptionStore
	cache         Cache
	cfg           config.SubscriptionConfig
	logger        *logrus.Logger
	now           func() time.Time
}

// NewSubscriptionService crea una nueva instancia del servicio; cache puede ser nil
func NewSubscriptionService(subscriptions SubscriptionStore, cache Cache, cfg config.SubscriptionConfig, logger *logrus.Logger) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: subscriptions,
		cache:         cache,
		cfg:           cfg,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Status retorna la vigencia de la suscripción del usuario.
// Un usuario sin suscripción se reporta como inactivo y vencido.
func (s *SubscriptionService) Status(ctx context.Context, p models.Principal) (*models.SubscriptionStatusResponse, error) {
	sub, err := s.currentSubscription(ctx, p.UserID)
	if err != nil {
		var notFound *commerce.NotFoundError
		if errors.As(err, &notFound) {
			return &models.SubscriptionStatusResponse{Active: false, Expired: true}, nil
		}
		return nil, err
	}

	warningDays := s.cfg.WarningDays
	if warningDays <= 0 {
		warningDays = commerce.DefaultWarningDays
	}
	ent := commerce.EvaluateEntitlement(sub.ExpiresAt, s.now(), warningDays)
	expiresAt := sub.ExpiresAt

	return &models.SubscriptionStatusResponse{
		Active:        !ent.Expired,
		PlanName:      sub.PlanName,
		DisplayName:   sub.DisplayName,
		ExpiresAt:     &expiresAt,
		DaysRemaining: ent.DaysRemaining,
		Expired:       ent.Expired,
		ExpiresSoon:   ent.ExpiresSoon,
	}, nil
}

// Plans lista los planes activos
func (s *SubscriptionService) Plans(ctx context.Context) ([]models.Plan, error) {
	plans, err := s.subscriptions.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing plans: %w", err)
	}
	return plans, nil
}

// RequestPlan registra una solicitud de plan para aprobación manual
func (s *SubscriptionService) RequestPlan(ctx context.Context, p models.Principal, planID uuid.UUID) (*models.SubscriptionRequest, error) {
	plan, err := s.subscriptions.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	req := &models.SubscriptionRequest{
		UserID:   p.UserID,
		PlanID:   plan.ID,
		PlanName: plan.Name,
	}
	if err := s.subscriptions.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("error creating subscription request: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": req.ID,
		"user_id":    p.UserID,
		"plan":       plan.Name,
	}).Info("Subscription requested")

	return req, nil
}

// ListRequests lista las solicitudes, filtrando por estado si se indica
func (s *SubscriptionService) ListRequests(ctx context.Context, status models.SubscriptionRequestStatus) (*models.SubscriptionRequestListResponse, error) {
	switch status {
	case "", models.SubscriptionRequestPending, models.SubscriptionRequestApproved, models.SubscriptionRequestRejected:
	default:
		return nil, &commerce.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown request status %q", status)}
	}

	requests, err := s.subscriptions.ListRequests(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("error listing subscription requests: %w", err)
	}
	return &models.SubscriptionRequestListResponse{Items: requests}, nil
}

// Approve aprueba una solicitud pendiente y extiende la suscripción del usuario.
// La extensión parte del vencimiento actual si aún no pasó.
func (s *SubscriptionService) Approve(ctx context.Context, admin models.Principal, requestID uuid.UUID) (*models.Subscription, error) {
	req, err := s.pendingRequest(ctx, requestID, models.SubscriptionRequestApproved)
	if err != nil {
		return nil, err
	}

	plan, err := s.subscriptions.GetPlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	base := now
	current, err := s.subscriptions.GetByUser(ctx, req.UserID)
	if err != nil {
		var notFound *commerce.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	} else if current.ExpiresAt.After(now) {
		base = current.ExpiresAt
	}

	sub := &models.Subscription{
		UserID:      req.UserID,
		PlanID:      plan.ID,
		PlanName:    plan.Name,
		DisplayName: plan.DisplayName,
		ExpiresAt:   base.AddDate(0, 0, plan.DurationDays),
	}

	decide(req, models.SubscriptionRequestApproved, admin.UserID, now)
	if err := s.subscriptions.Decide(ctx, req, sub); err != nil {
		return nil, err
	}
	s.invalidate(ctx, req.UserID)

	s.logger.WithFields(logrus.Fields{
		"request_id": req.ID,
		"user_id":    req.UserID,
		"plan":       plan.Name,
		"expires_at": sub.ExpiresAt,
		"admin_id":   admin.UserID,
	}).Info("Subscription request approved")

	return sub, nil
}

// Reject rechaza una solicitud pendiente sin tocar la suscripción
func (s *SubscriptionService) Reject(ctx context.Context, admin models.Principal, requestID uuid.UUID) (*models.SubscriptionRequest, error) {
	req, err := s.pendingRequest(ctx, requestID, models.SubscriptionRequestRejected)
	if err != nil {
		return nil, err
	}

	decide(req, models.SubscriptionRequestRejected, admin.UserID, s.now())
	if err := s.subscriptions.Decide(ctx, req, nil); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": req.ID,
		"user_id":    req.UserID,
		"admin_id":   admin.UserID,
	}).Info("Subscription request rejected")

	return req, nil
}

func (s *SubscriptionService) pendingRequest(ctx context.Context, id uuid.UUID, to models.SubscriptionRequestStatus) (*models.SubscriptionRequest, error) {
	req, err := s.subscriptions.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.SubscriptionRequestPending {
		return nil, &commerce.InvalidTransitionError{
			DocumentType: "subscription_request",
			From:         string(req.Status),
			To:           string(to),
			Reason:       "request was already decided",
		}
	}
	return req, nil
}

func decide(req *models.SubscriptionRequest, status models.SubscriptionRequestStatus, adminID uuid.UUID, now time.Time) {
	req.Status = status
	req.DecidedAt = &now
	req.DecidedBy = &adminID
}

// currentSubscription lee la suscripción pasando por la caché de Redis
func (s *SubscriptionService) currentSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	key := subscriptionCacheKey(userID)
	if s.cache != nil {
		value, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			var sub models.Subscription
			if jsonErr := json.Unmarshal([]byte(value), &sub); jsonErr == nil {
				return &sub, nil
			}
			s.logger.WithField("user_id", userID).Warn("Discarding unreadable cached subscription")
		case !errors.Is(err, database.ErrCacheMiss):
			s.logger.WithError(err).Warn("Subscription cache unavailable")
		}
	}

	sub, err := s.subscriptions.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(sub); err == nil {
			if err := s.cache.Set(ctx, key, string(data), s.cfg.CacheTTL); err != nil {
				s.logger.WithError(err).Warn("Failed to cache subscription")
			}
		}
	}
	return sub, nil
}

func (s *SubscriptionService) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, subscriptionCacheKey(userID)); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to invalidate cached subscription")
	}
}

func subscriptionCacheKey(userID uuid.UUID) string {
	return "subscription:" + userID.String()
}
