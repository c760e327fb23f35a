package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/commerce"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UserRepository maneja las operaciones de base de datos para User
type UserRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewUserRepository crea una nueva instancia del repositorio
func NewUserRepository(db *DB, logger *logrus.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// CreateWithAPIKey crea el usuario y su primera API key en una transacción
func (r *UserRepository) CreateWithAPIKey(ctx context.Context, user *models.User, key *models.APIKey) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, email, name, is_admin, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, user.ID, user.Email, user.Name, user.IsAdmin, user.IsActive, user.CreatedAt, user.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return commerce.NewConflictError("user", user.Email, "email already registered")
			}
			return fmt.Errorf("error inserting user: %w", err)
		}

		if err := insertAPIKey(ctx, tx, key); err != nil {
			return err
		}

		r.logger.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"is_admin": user.IsAdmin,
		}).Info("User created")

		return nil
	})
}

// GetByID obtiene un usuario por ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, email, name, is_admin, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.IsAdmin, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, commerce.NewNotFoundError("user", id)
		}
		return nil, fmt.Errorf("error querying user: %w", err)
	}

	return &user, nil
}
