package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentArtifact representa el PDF generado de un documento; el contenido vive en el storage
type DocumentArtifact struct {
	ID          uuid.UUID `json:"id" db:"id"`
	DocumentID  uuid.UUID `json:"document_id" db:"document_id"`
	ObjectKey   string    `json:"object_key" db:"object_key"`
	ContentType string    `json:"content_type" db:"content_type"`
	Size        int64     `json:"size" db:"size"`
	GeneratedAt time.Time `json:"generated_at" db:"generated_at"`
}

// ArtifactResponse representa la respuesta al generar un PDF
type ArtifactResponse struct {
	DocumentID uuid.UUID `json:"document_id"`
	HasPDF     bool      `json:"has_pdf"`
	Size       int64     `json:"size"`
	Download   string    `json:"download"`
}
