package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const pdfContentType = "application/pdf"

// ErrStorageUnavailable indica que no hay almacenamiento configurado para los PDF
var ErrStorageUnavailable = errors.New("document storage is not configured")

// ArtifactService genera los PDF y los guarda en el storage con sus metadatos en la BD
type ArtifactService struct {
	documents DocumentStore
	customers CustomerStore
	artifacts ArtifactMetadataStore
	objects   ObjectStore
	generator *DocumentGenerator
	logger    *logrus.Logger
}

// NewArtifactService crea una nueva instancia del servicio; objects puede ser nil
func NewArtifactService(
	documents DocumentStore,
	customers CustomerStore,
	artifacts ArtifactMetadataStore,
	objects ObjectStore,
	generator *DocumentGenerator,
	logger *logrus.Logger,
) *ArtifactService {
	return &ArtifactService{
		documents: documents,
		customers: customers,
		artifacts: artifacts,
		objects:   objects,
		generator: generator,
		logger:    logger,
	}
}

// Generate renderiza el PDF del documento y reemplaza el anterior si existía
func (s *ArtifactService) Generate(ctx context.Context, p models.Principal, kind models.DocumentKind, id uuid.UUID) (*models.ArtifactResponse, error) {
	if s.objects == nil {
		return nil, ErrStorageUnavailable
	}

	doc, err := s.documents.GetByID(ctx, p.UserID, kind, id)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.GetByID(ctx, p.UserID, doc.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("error loading customer for PDF: %w", err)
	}

	data, err := s.generator.GeneratePDF(doc, customer)
	if err != nil {
		return nil, err
	}

	key := ObjectKey(doc)
	if err := s.objects.Put(ctx, key, pdfContentType, data); err != nil {
		return nil, err
	}

	artifact := &models.DocumentArtifact{
		DocumentID:  doc.ID,
		ObjectKey:   key,
		ContentType: pdfContentType,
		Size:        int64(len(data)),
	}
	if err := s.artifacts.Upsert(ctx, artifact); err != nil {
		// Si falla, intentar limpiar el objeto subido
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			s.logger.WithError(delErr).WithField("key", key).Warn("Failed to clean up orphan PDF")
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"key":         key,
		"size":        artifact.Size,
	}).Info("Document PDF stored successfully")

	return &models.ArtifactResponse{
		DocumentID: doc.ID,
		HasPDF:     true,
		Size:       artifact.Size,
		Download:   DocumentLinks(doc.Kind, doc.ID).PDF,
	}, nil
}

// Download retorna el PDF almacenado y el nombre de archivo sugerido
func (s *ArtifactService) Download(ctx context.Context, p models.Principal, kind models.DocumentKind, id uuid.UUID) ([]byte, string, error) {
	if s.objects == nil {
		return nil, "", ErrStorageUnavailable
	}

	doc, err := s.documents.GetByID(ctx, p.UserID, kind, id)
	if err != nil {
		return nil, "", err
	}
	artifact, err := s.artifacts.GetByDocumentID(ctx, doc.ID)
	if err != nil {
		return nil, "", err
	}

	data, err := s.objects.Get(ctx, artifact.ObjectKey)
	if err != nil {
		return nil, "", err
	}

	return data, doc.DocumentNumber + ".pdf", nil
}

// ObjectKey retorna la clave del PDF de un documento en el bucket
func ObjectKey(doc *models.Document) string {
	return fmt.Sprintf("%s/%s/%s.pdf", doc.UserID, doc.Kind.Collection(), doc.ID)
}
