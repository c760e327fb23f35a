package database

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/commerce"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// apiKeyPrefix identifica visualmente las claves emitidas por el servicio
const apiKeyPrefix = "vz_"

// APIKeyRepository maneja las operaciones de base de datos para API Keys
type APIKeyRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewAPIKeyRepository crea una nueva instancia del repositorio
func NewAPIKeyRepository(db *DB, logger *logrus.Logger) *APIKeyRepository {
	return &APIKeyRepository{
		db:     db,
		logger: logger,
	}
}

// Create crea una nueva API key para el usuario y retorna la clave en claro una única vez
func (r *APIKeyRepository) Create(ctx context.Context, userID uuid.UUID, name string) (*models.APIKey, string, error) {
	key, plain, err := NewAPIKey(userID, name)
	if err != nil {
		return nil, "", err
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := insertAPIKey(ctx, r.db, key); err != nil {
		return nil, "", err
	}

	return key, plain, nil
}

// ResolvePrincipal obtiene el usuario dueño de una API key activa
func (r *APIKeyRepository) ResolvePrincipal(ctx context.Context, keyHash string) (*models.Principal, uuid.UUID, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT k.id, u.id, u.is_admin
		FROM api_keys k
		JOIN users u ON u.id = k.user_id
		WHERE k.key_hash = $1 AND k.is_active = true AND u.is_active = true
	`

	var keyID uuid.UUID
	var principal models.Principal
	err := r.db.QueryRowContext(ctx, query, keyHash).Scan(&keyID, &principal.UserID, &principal.IsAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, uuid.Nil, commerce.NewNotFoundError("api key", "****")
		}
		return nil, uuid.Nil, fmt.Errorf("error querying API key: %w", err)
	}

	return &principal, keyID, nil
}

// ListByUser obtiene todas las API keys de un usuario
func (r *APIKeyRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.APIKey, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, name, key_hash, is_active, created_at, last_used_at
		FROM api_keys
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying API keys: %w", err)
	}
	defer rows.Close()

	var keys []models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.IsActive, &k.CreatedAt, &k.LastUsedAt); err != nil {
			return nil, fmt.Errorf("error scanning API key: %w", err)
		}
		keys = append(keys, k)
	}

	return keys, rows.Err()
}

// UpdateLastUsed actualiza la última vez que se usó la API key
func (r *APIKeyRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = $1 WHERE id = $2`, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("error updating API key last used: %w", err)
	}

	return nil
}

// Deactivate desactiva una API key del usuario
func (r *APIKeyRepository) Deactivate(ctx context.Context, userID, id uuid.UUID) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `UPDATE api_keys SET is_active = false WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("error deactivating API key: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return commerce.NewNotFoundError("api key", id)
	}

	return nil
}

// NewAPIKey genera una clave aleatoria y el registro con su hash
func NewAPIKey(userID uuid.UUID, name string) (*models.APIKey, string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return nil, "", fmt.Errorf("error generating API key: %w", err)
	}
	plain := apiKeyPrefix + hex.EncodeToString(buf)

	return &models.APIKey{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		KeyHash:   HashAPIKey(plain),
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}, plain, nil
}

// HashAPIKey genera el hash SHA-256 de la API key
func HashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(hash[:])
}

func insertAPIKey(ctx context.Context, q querier, key *models.APIKey) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO api_keys (id, user_id, name, key_hash, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, key.ID, key.UserID, key.Name, key.KeyHash, key.IsActive, key.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating API key: %w", err)
	}
	return nil
}
