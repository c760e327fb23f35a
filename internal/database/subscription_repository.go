package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/commerce"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SubscriptionRepository maneja planes, suscripciones y solicitudes de plan
type SubscriptionRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewSubscriptionRepository crea una nueva instancia del repositorio
func NewSubscriptionRepository(db *DB, logger *logrus.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{
		db:     db,
		logger: logger,
	}
}

// ListPlans obtiene los planes activos
func (r *SubscriptionRepository) ListPlans(ctx context.Context) ([]models.Plan, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, display_name, duration_days, price, is_active
		FROM plans
		WHERE is_active = true
		ORDER BY duration_days
	`)
	if err != nil {
		return nil, fmt.Errorf("error querying plans: %w", err)
	}
	defer rows.Close()

	plans := []models.Plan{}
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.DisplayName, &p.DurationDays, &p.Price, &p.IsActive); err != nil {
			return nil, fmt.Errorf("error scanning plan: %w", err)
		}
		plans = append(plans, p)
	}

	return plans, rows.Err()
}

// GetPlan obtiene un plan activo por ID
func (r *SubscriptionRepository) GetPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var p models.Plan
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, display_name, duration_days, price, is_active
		FROM plans
		WHERE id = $1 AND is_active = true
	`, id).Scan(&p.ID, &p.Name, &p.DisplayName, &p.DurationDays, &p.Price, &p.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, commerce.NewNotFoundError("plan", id)
		}
		return nil, fmt.Errorf("error querying plan: %w", err)
	}

	return &p, nil
}

// GetByUser obtiene la suscripción del usuario con los datos del plan
func (r *SubscriptionRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var s models.Subscription
	err := r.db.QueryRowContext(ctx, `
		SELECT s.id, s.user_id, s.plan_id, p.name, p.display_name, s.expires_at, s.created_at, s.updated_at
		FROM subscriptions s
		JOIN plans p ON p.id = s.plan_id
		WHERE s.user_id = $1
	`, userID).Scan(&s.ID, &s.UserID, &s.PlanID, &s.PlanName, &s.DisplayName, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, commerce.NewNotFoundError("subscription", userID)
		}
		return nil, fmt.Errorf("error querying subscription: %w", err)
	}

	return &s, nil
}

// CreateRequest registra una solicitud de plan pendiente
func (r *SubscriptionRepository) CreateRequest(ctx context.Context, req *models.SubscriptionRequest) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	req.ID = uuid.New()
	req.Status = models.SubscriptionRequestPending
	req.RequestedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscription_requests (id, user_id, plan_id, status, requested_at)
		VALUES ($1, $2, $3, $4, $5)
	`, req.ID, req.UserID, req.PlanID, req.Status, req.RequestedAt)
	if err != nil {
		return fmt.Errorf("error creating subscription request: %w", err)
	}

	return nil
}

// GetRequest obtiene una solicitud por ID
func (r *SubscriptionRepository) GetRequest(ctx context.Context, id uuid.UUID) (*models.SubscriptionRequest, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	req, err := scanSubscriptionRequest(r.db.QueryRowContext(ctx, subscriptionRequestQuery+` WHERE sr.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, commerce.NewNotFoundError("subscription request", id)
		}
		return nil, fmt.Errorf("error querying subscription request: %w", err)
	}

	return req, nil
}

// ListRequests obtiene las solicitudes, filtrando por estado si se indica
func (r *SubscriptionRepository) ListRequests(ctx context.Context, status models.SubscriptionRequestStatus) ([]models.SubscriptionRequest, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		subscriptionRequestQuery+` WHERE ($1 = '' OR sr.status = $1) ORDER BY sr.requested_at`,
		string(status))
	if err != nil {
		return nil, fmt.Errorf("error querying subscription requests: %w", err)
	}
	defer rows.Close()

	requests := []models.SubscriptionRequest{}
	for rows.Next() {
		req, err := scanSubscriptionRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning subscription request: %w", err)
		}
		requests = append(requests, *req)
	}

	return requests, rows.Err()
}

// Decide cierra una solicitud pendiente y, si se aprueba, guarda la suscripción resultante.
// Retorna ConflictError si la solicitud ya no estaba pendiente.
func (r *SubscriptionRepository) Decide(ctx context.Context, req *models.SubscriptionRequest, sub *models.Subscription) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE subscription_requests
			SET status = $1, decided_at = $2, decided_by = $3
			WHERE id = $4 AND status = 'pending'
		`, req.Status, req.DecidedAt, req.DecidedBy, req.ID)
		if err != nil {
			return fmt.Errorf("error updating subscription request: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("error getting rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return commerce.NewConflictError("subscription request", req.ID, "request was already decided")
		}

		if sub == nil {
			return nil
		}

		now := time.Now().UTC()
		err = tx.QueryRowContext(ctx, `
			INSERT INTO subscriptions (id, user_id, plan_id, expires_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
			ON CONFLICT (user_id) DO UPDATE
			SET plan_id = EXCLUDED.plan_id, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at
			RETURNING id, created_at, updated_at
		`, uuid.New(), sub.UserID, sub.PlanID, sub.ExpiresAt, now).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error saving subscription: %w", err)
		}

		r.logger.WithFields(logrus.Fields{
			"user_id":    sub.UserID,
			"plan_id":    sub.PlanID,
			"expires_at": sub.ExpiresAt,
		}).Info("Subscription extended")

		return nil
	})
}

const subscriptionRequestQuery = `
	SELECT sr.id, sr.user_id, sr.plan_id, p.name, u.email, sr.status, sr.requested_at, sr.decided_at, sr.decided_by
	FROM subscription_requests sr
	JOIN plans p ON p.id = sr.plan_id
	JOIN users u ON u.id = sr.user_id`

func scanSubscriptionRequest(row rowScanner) (*models.SubscriptionRequest, error) {
	var req models.SubscriptionRequest
	err := row.Scan(
		&req.ID, &req.UserID, &req.PlanID, &req.PlanName, &req.UserEmail,
		&req.Status, &req.RequestedAt, &req.DecidedAt, &req.DecidedBy,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
