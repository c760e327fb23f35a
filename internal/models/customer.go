package models

import (
	"time"

	"github.com/google/uuid"
)

// TaxIDs agrupa los identificadores fiscales del cliente
type TaxIDs struct {
	RC  *string `json:"rc,omitempty" db:"tax_rc"`
	NIF *string `json:"nif,omitempty" db:"tax_nif"`
	NIS *string `json:"nis,omitempty" db:"tax_nis"`
	AI  *string `json:"ai,omitempty" db:"tax_ai"`
}

// Customer representa un cliente de un usuario
type Customer struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	CompanyName string    `json:"company_name" db:"company_name"`
	ContactName *string   `json:"contact_name,omitempty" db:"contact_name"`
	Email       *string   `json:"email,omitempty" db:"email"`
	Phone       *string   `json:"phone,omitempty" db:"phone"`
	Address     *string   `json:"address,omitempty" db:"address"`
	City        *string   `json:"city,omitempty" db:"city"`
	TaxIDs      TaxIDs    `json:"tax_ids"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreateCustomerRequest representa el request para crear/actualizar un cliente
type CreateCustomerRequest struct {
	CompanyName string  `json:"company_name" binding:"required"`
	ContactName *string `json:"contact_name,omitempty"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	TaxIDs      TaxIDs  `json:"tax_ids"`
}

// CustomerResponse representa la respuesta al crear un cliente
type CustomerResponse struct {
	ID string `json:"id"`
}
