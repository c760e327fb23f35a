package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/commerce"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const documentColumns = `
	d.id, d.user_id, d.kind, d.document_number, d.customer_id, d.issue_date, d.secondary_date,
	d.notes, d.status, d.paid_amount, d.source_quote_id, d.version, d.created_at, d.updated_at,
	COALESCE(c.company_name, ''),
	EXISTS (SELECT 1 FROM document_artifacts a WHERE a.document_id = d.id)`

// DocumentFilter representa los filtros del listado de documentos
type DocumentFilter struct {
	UserID     uuid.UUID
	Kind       models.DocumentKind
	Status     models.DocumentStatus
	CustomerID *uuid.UUID
	Page       int
	PageSize   int
}

// DocumentRepository maneja las operaciones de base de datos para Document
type DocumentRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewDocumentRepository crea una nueva instancia del repositorio
func NewDocumentRepository(db *DB, logger *logrus.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserta el documento con sus líneas y le asigna el siguiente número de su tipo
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	doc.ID = uuid.New()
	doc.Version = 1
	doc.CreatedAt = now
	doc.UpdatedAt = now

	err := r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		number, err := nextDocumentNumber(ctx, tx, doc.UserID, doc.Kind)
		if err != nil {
			return err
		}
		doc.DocumentNumber = number

		_, err = tx.ExecContext(ctx, `
			INSERT INTO documents (
				id, user_id, kind, document_number, customer_id, issue_date, secondary_date,
				notes, status, paid_amount, source_quote_id, version, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`,
			doc.ID, doc.UserID, doc.Kind, doc.DocumentNumber, doc.CustomerID, doc.IssueDate, doc.SecondaryDate,
			doc.Notes, doc.Status, doc.PaidAmount, doc.SourceQuoteID, doc.Version, doc.CreatedAt, doc.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("error inserting document: %w", err)
		}

		return insertItems(ctx, tx, doc)
	})
	if err != nil {
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"document_id":     doc.ID,
		"kind":            doc.Kind,
		"document_number": doc.DocumentNumber,
		"user_id":         doc.UserID,
	}).Info("Document created")

	return nil
}

// GetByID obtiene un documento del usuario con sus líneas
func (r *DocumentRepository) GetByID(ctx context.Context, userID uuid.UUID, kind models.DocumentKind, id uuid.UUID) (*models.Document, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + documentColumns + `
		FROM documents d
		LEFT JOIN customers c ON c.id = d.customer_id
		WHERE d.id = $1 AND d.user_id = $2 AND d.kind = $3`

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id, userID, kind))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, commerce.NewNotFoundError(string(kind), id)
		}
		return nil, fmt.Errorf("error querying document: %w", err)
	}

	docs := []*models.Document{doc}
	if err := r.loadItems(ctx, docs); err != nil {
		return nil, err
	}

	return doc, nil
}

// List obtiene los documentos que cumplen el filtro, con paginación
func (r *DocumentRepository) List(ctx context.Context, filter DocumentFilter) ([]models.Document, int, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	// Construir filtros dinámicos
	whereClauses := []string{"d.user_id = $1", "d.kind = $2"}
	args := []interface{}{filter.UserID, filter.Kind}
	argIndex := 3

	if filter.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("d.status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.CustomerID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("d.customer_id = $%d", argIndex))
		args = append(args, *filter.CustomerID)
		argIndex++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM documents d WHERE %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting documents: %w", err)
	}

	page, pageSize := NormalizePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s
		FROM documents d
		LEFT JOIN customers c ON c.id = d.customer_id
		WHERE %s
		ORDER BY d.issue_date DESC, d.document_number DESC
		LIMIT $%d OFFSET $%d`, documentColumns, whereClause, argIndex, argIndex+1)
	args = append(args, pageSize, (page-1)*pageSize)

	docs, err := r.queryDocuments(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

// ListSweepCandidates obtiene facturas enviadas vencidas y presupuestos abiertos caducados
func (r *DocumentRepository) ListSweepCandidates(ctx context.Context, now time.Time, limit int) ([]models.Document, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + documentColumns + `
		FROM documents d
		LEFT JOIN customers c ON c.id = d.customer_id
		WHERE d.secondary_date < $1
		  AND ((d.kind = 'invoice' AND d.status = 'sent')
		    OR (d.kind = 'quote' AND d.status IN ('draft', 'sent')))
		ORDER BY d.secondary_date
		LIMIT $2`

	return r.queryDocuments(ctx, query, now, limit)
}

// Update reemplaza cabecera y líneas si la versión coincide con expectedVersion
func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document, expectedVersion int) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	updatedAt := time.Now().UTC()

	err := r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE documents
			SET customer_id = $1, issue_date = $2, secondary_date = $3, notes = $4,
			    status = $5, paid_amount = $6, version = version + 1, updated_at = $7
			WHERE id = $8 AND user_id = $9 AND version = $10
		`,
			doc.CustomerID, doc.IssueDate, doc.SecondaryDate, doc.Notes,
			doc.Status, doc.PaidAmount, updatedAt,
			doc.ID, doc.UserID, expectedVersion,
		)
		if err != nil {
			return fmt.Errorf("error updating document: %w", err)
		}
		if err := r.checkVersioned(ctx, tx, result, doc, expectedVersion); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM document_items WHERE document_id = $1`, doc.ID); err != nil {
			return fmt.Errorf("error deleting document items: %w", err)
		}

		return insertItems(ctx, tx, doc)
	})
	if err != nil {
		return err
	}

	doc.Version = expectedVersion + 1
	doc.UpdatedAt = updatedAt
	return nil
}

// UpdateStatus persiste estado y monto pagado si la versión coincide con expectedVersion
func (r *DocumentRepository) UpdateStatus(ctx context.Context, doc *models.Document, expectedVersion int) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	updatedAt := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE documents
		SET status = $1, paid_amount = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND user_id = $5 AND version = $6
	`, doc.Status, doc.PaidAmount, updatedAt, doc.ID, doc.UserID, expectedVersion)
	if err != nil {
		return fmt.Errorf("error updating document status: %w", err)
	}
	if err := r.checkVersioned(ctx, r.db, result, doc, expectedVersion); err != nil {
		return err
	}

	doc.Version = expectedVersion + 1
	doc.UpdatedAt = updatedAt

	r.logger.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"kind":        doc.Kind,
		"status":      doc.Status,
		"version":     doc.Version,
	}).Info("Document status updated")

	return nil
}

// Delete elimina un documento del usuario; las líneas se eliminan en cascada
func (r *DocumentRepository) Delete(ctx context.Context, userID uuid.UUID, kind models.DocumentKind, id uuid.UUID) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1 AND user_id = $2 AND kind = $3`, id, userID, kind)
	if err != nil {
		return fmt.Errorf("error deleting document: %w", err)
	}

	return expectOneRow(result, string(kind), id)
}

// checkVersioned distingue entre documento inexistente y versión obsoleta cuando no se afectaron filas
func (r *DocumentRepository) checkVersioned(ctx context.Context, q querier, result sql.Result, doc *models.Document, expectedVersion int) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var current int
	err = q.QueryRowContext(ctx, `SELECT version FROM documents WHERE id = $1 AND user_id = $2`, doc.ID, doc.UserID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return commerce.NewNotFoundError(string(doc.Kind), doc.ID)
		}
		return fmt.Errorf("error checking document version: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"document_id":      doc.ID,
		"expected_version": expectedVersion,
		"current_version":  current,
	}).Warn("Stale document write rejected")

	return commerce.NewConflictError(string(doc.Kind), doc.ID,
		fmt.Sprintf("version %d is stale, current version is %d", expectedVersion, current))
}

func (r *DocumentRepository) queryDocuments(ctx context.Context, query string, args ...any) ([]models.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying documents: %w", err)
	}
	defer rows.Close()

	var ptrs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning document: %w", err)
		}
		ptrs = append(ptrs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	rows.Close()

	if err := r.loadItems(ctx, ptrs); err != nil {
		return nil, err
	}

	docs := make([]models.Document, len(ptrs))
	for i, d := range ptrs {
		docs[i] = *d
	}
	return docs, nil
}

// loadItems carga las líneas de varios documentos en una sola consulta
func (r *DocumentRepository) loadItems(ctx context.Context, docs []*models.Document) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(docs))
	byID := make(map[uuid.UUID]*models.Document, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		byID[d.ID] = d
		d.Items = []models.LineItem{}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, document_id, line_no, product_id, description, quantity, unit_price, tax_rate_percent, created_at
		FROM document_items
		WHERE document_id = ANY($1::uuid[])
		ORDER BY document_id, line_no
	`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return fmt.Errorf("error querying document items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.LineItem
		err := rows.Scan(
			&item.ID, &item.DocumentID, &item.LineNo, &item.ProductID, &item.Description,
			&item.Quantity, &item.UnitPrice, &item.TaxRatePercent, &item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("error scanning document item: %w", err)
		}
		if d, ok := byID[item.DocumentID]; ok {
			d.Items = append(d.Items, item)
		}
	}

	return rows.Err()
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var d models.Document
	err := row.Scan(
		&d.ID, &d.UserID, &d.Kind, &d.DocumentNumber, &d.CustomerID, &d.IssueDate, &d.SecondaryDate,
		&d.Notes, &d.Status, &d.PaidAmount, &d.SourceQuoteID, &d.Version, &d.CreatedAt, &d.UpdatedAt,
		&d.CustomerName, &d.HasPDF,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, doc *models.Document) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO document_items (
			id, document_id, line_no, product_id, description, quantity, unit_price, tax_rate_percent, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return fmt.Errorf("error preparing document item insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range doc.Items {
		item := &doc.Items[i]
		item.ID = uuid.New()
		item.DocumentID = doc.ID
		item.LineNo = i + 1
		item.CreatedAt = now

		_, err := stmt.ExecContext(ctx,
			item.ID, item.DocumentID, item.LineNo, item.ProductID, item.Description,
			item.Quantity, item.UnitPrice, item.TaxRatePercent, item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("error inserting document item: %w", err)
		}
	}

	return nil
}

// nextDocumentNumber incrementa el contador del usuario para el tipo y formatea el número
func nextDocumentNumber(ctx context.Context, tx *sql.Tx, userID uuid.UUID, kind models.DocumentKind) (string, error) {
	var seq int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO document_sequences (user_id, kind, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, kind) DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value
	`, userID, kind).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("error getting next document number: %w", err)
	}

	return FormatDocumentNumber(kind, seq), nil
}

// FormatDocumentNumber arma el número visible de un documento, por ejemplo FAC-000042
func FormatDocumentNumber(kind models.DocumentKind, seq int64) string {
	return fmt.Sprintf("%s-%06d", kind.NumberPrefix(), seq)
}

// NormalizePage aplica los límites de paginación
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
