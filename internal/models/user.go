package models

import (
	"time"

	"github.com/google/uuid"
)

// User representa la cuenta de un negocio que gestiona sus documentos
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// APIKey representa una clave de API de un usuario
type APIKey struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	Name       string     `json:"name" db:"name"`
	KeyHash    string     `json:"-" db:"key_hash"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
}

// Principal identifica al llamante autenticado; se pasa explícitamente a los servicios
type Principal struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// CreateUserRequest representa el request de alta de un usuario
type CreateUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
}

// CreateUserResponse representa la respuesta al dar de alta un usuario
type CreateUserResponse struct {
	ID     uuid.UUID `json:"id"`
	APIKey string    `json:"api_key"`
}

// CreateAPIKeyRequest representa el request para emitir una API key adicional
type CreateAPIKeyRequest struct {
	Name string `json:"name"`
}

// APIKeyResponse representa una API key recién emitida; la clave solo se muestra aquí
type APIKeyResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	APIKey string    `json:"api_key"`
}
