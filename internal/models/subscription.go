package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan representa un plan de suscripción del catálogo
type Plan struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	DisplayName  string          `json:"display_name" db:"display_name"`
	DurationDays int             `json:"duration_days" db:"duration_days"`
	Price        decimal.Decimal `json:"price" db:"price"`
	IsActive     bool            `json:"is_active" db:"is_active"`
}

// Subscription representa la suscripción vigente de un usuario
type Subscription struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	PlanID      uuid.UUID `json:"plan_id" db:"plan_id"`
	PlanName    string    `json:"plan_name" db:"plan_name"`
	DisplayName string    `json:"display_name" db:"display_name"`
	ExpiresAt   time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// SubscriptionRequestStatus representa el estado de una solicitud de plan
type SubscriptionRequestStatus string

const (
	SubscriptionRequestPending  SubscriptionRequestStatus = "pending"
	SubscriptionRequestApproved SubscriptionRequestStatus = "approved"
	SubscriptionRequestRejected SubscriptionRequestStatus = "rejected"
)

// SubscriptionRequest representa la solicitud de un usuario para un plan
type SubscriptionRequest struct {
	ID          uuid.UUID                 `json:"id" db:"id"`
	UserID      uuid.UUID                 `json:"user_id" db:"user_id"`
	PlanID      uuid.UUID                 `json:"plan_id" db:"plan_id"`
	PlanName    string                    `json:"plan_name,omitempty" db:"-"`
	UserEmail   string                    `json:"user_email,omitempty" db:"-"`
	Status      SubscriptionRequestStatus `json:"status" db:"status"`
	RequestedAt time.Time                 `json:"requested_at" db:"requested_at"`
	DecidedAt   *time.Time                `json:"decided_at,omitempty" db:"decided_at"`
	DecidedBy   *uuid.UUID                `json:"decided_by,omitempty" db:"decided_by"`
}

// CreateSubscriptionRequest representa el request para solicitar un plan
type CreateSubscriptionRequest struct {
	PlanID uuid.UUID `json:"plan_id" binding:"required"`
}

// SubscriptionStatusResponse representa la señal de vigencia de la suscripción
type SubscriptionStatusResponse struct {
	Active        bool       `json:"active"`
	PlanName      string     `json:"plan_name,omitempty"`
	DisplayName   string     `json:"display_name,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	DaysRemaining int        `json:"days_remaining"`
	Expired       bool       `json:"expired"`
	ExpiresSoon   bool       `json:"expires_soon"`
}

// SubscriptionRequestListResponse representa el listado de solicitudes para administración
type SubscriptionRequestListResponse struct {
	Items []SubscriptionRequest `json:"items"`
}
