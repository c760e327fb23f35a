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

// ArtifactRepository maneja los metadatos de los PDF generados
type ArtifactRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewArtifactRepository crea una nueva instancia del repositorio
func NewArtifactRepository(db *DB, logger *logrus.Logger) *ArtifactRepository {
	return &ArtifactRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert crea o reemplaza el artefacto de un documento
func (r *ArtifactRepository) Upsert(ctx context.Context, artifact *models.DocumentArtifact) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if artifact.ID == uuid.Nil {
		artifact.ID = uuid.New()
	}
	if artifact.GeneratedAt.IsZero() {
		artifact.GeneratedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO document_artifacts (id, document_id, object_key, content_type, size, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (document_id) DO UPDATE
		SET object_key = EXCLUDED.object_key,
		    content_type = EXCLUDED.content_type,
		    size = EXCLUDED.size,
		    generated_at = EXCLUDED.generated_at
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		artifact.ID, artifact.DocumentID, artifact.ObjectKey, artifact.ContentType, artifact.Size, artifact.GeneratedAt,
	).Scan(&artifact.ID)
	if err != nil {
		return fmt.Errorf("error saving document artifact: %w", err)
	}

	return nil
}

// GetByDocumentID obtiene el artefacto de un documento
func (r *ArtifactRepository) GetByDocumentID(ctx context.Context, documentID uuid.UUID) (*models.DocumentArtifact, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, document_id, object_key, content_type, size, generated_at
		FROM document_artifacts
		WHERE document_id = $1
	`

	var a models.DocumentArtifact
	err := r.db.QueryRowContext(ctx, query, documentID).Scan(
		&a.ID, &a.DocumentID, &a.ObjectKey, &a.ContentType, &a.Size, &a.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, commerce.NewNotFoundError("pdf", documentID)
		}
		return nil, fmt.Errorf("error querying document artifact: %w", err)
	}

	return &a, nil
}
