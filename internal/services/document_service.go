package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/commerce"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/config"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/database"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	conversionPending = "pending"
	sweepBatchSize    = 200
)

// DocumentService maneja el ciclo de vida de presupuestos, facturas y albaranes
type DocumentService struct {
	documents DocumentStore
	customers CustomerStore
	products  ProductStore
	cache     Cache
	notifier  DocumentNotifier
	cfg       config.DocumentsConfig
	logger    *logrus.Logger
	now       func() time.Time
	batchSize int
}

// NewDocumentService crea una nueva instancia del servicio.
// cache y notifier son opcionales.
func NewDocumentService(
	documents DocumentStore,
	customers CustomerStore,
	products ProductStore,
	cache Cache,
	notifier DocumentNotifier,
	cfg config.DocumentsConfig,
	logger *logrus.Logger,
) *DocumentService {
	return &DocumentService{
		documents: documents,
		customers: customers,
		products:  products,
		cache:     cache,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		batchSize: sweepBatchSize,
	}
}

// Preview valora las líneas y calcula los totales sin persistir nada
func (s *DocumentService) Preview(ctx context.Context, p models.Principal, req *models.PreviewRequest) (*models.PreviewResponse, error) {
	catalog, err := loadCatalog(ctx, s.products, p.UserID, req.Items)
	if err != nil {
		return nil, err
	}

	items := commerce.BuildLineItems(req.Items, catalog)
	totals, err := commerce.ComputeTotals(items)
	if err != nil {
		return nil, err
	}

	lines := make([]models.LineValuationResponse, 0, len(items))
	for _, item := range items {
		v, err := commerce.ValueItem(item)
		if err != nil {
			return nil, err
		}
		v = v.Rounded()
		lines = append(lines, models.LineValuationResponse{
			LineNo:      item.LineNo,
			Description: item.Description,
			BaseAmount:  v.BaseAmount,
			TaxAmount:   v.TaxAmount,
			LineTotal:   v.LineTotal,
		})
	}

	return &models.PreviewResponse{
		Lines:  lines,
		Totals: totals.Round(commerce.DisplayPlaces),
	}, nil
}

// Create crea un documento en su estado inicial con número secuencial
func (s *DocumentService) Create(ctx context.Context, p models.Principal, kind models.DocumentKind, req *models.DocumentRequest) (*models.DocumentResponse, error) {
	lc, err := commerce.LifecycleFor(kind)
	if err != nil {
		return nil, err
	}

	now := s.now()
	doc := &models.Document{
		UserID: p.UserID,
		Kind:   kind,
		Status: lc.Initial(),
	}
	if kind == models.DocumentKindInvoice {
		paid := decimal.Zero
		doc.PaidAmount = &paid
	}

	if err := s.applyRequest(ctx, p, doc, req, now); err != nil {
		return nil, err
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("error creating %s: %w", kind, err)
	}

	s.logger.WithFields(logrus.Fields{
		"document_id":     doc.ID,
		"document_number": doc.DocumentNumber,
		"kind":            kind,
		"user_id":         p.UserID,
	}).Info("Document created successfully")

	return s.respond(doc)
}

// Get obtiene un documento con sus valores derivados
func (s *DocumentService) Get(ctx context.Context, p models.Principal, kind models.DocumentKind, id uuid.UUID) (*models.DocumentResponse, error) {
	doc, err := s.documents.GetByID(ctx, p.UserID, kind, id)
	if err != nil {
		return nil, err
	}
	return s.respond(doc)
}

// List lista los documentos del tipo con paginación
func (s *DocumentService) List(ctx context.Context, p models.Principal, kind models.DocumentKind, filter database.DocumentFilter) (*models.DocumentListResponse, error) {
	if !kind.IsValid() {
		return nil, &commerce.ValidationError{Field: "kind", Reason: "unknown document kind"}
	}
	if filter.Status != "" {
		lc, _ := commerce.LifecycleFor(kind)
		if !hasStatus(lc, filter.Status) {
			return nil, &commerce.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown %s status %q", kind, filter.Status)}
		}
	}

	filter.UserID = p.UserID
	filter.Kind = kind
	filter.Page, filter.PageSize = database.NormalizePage(filter.Page, filter.PageSize)

	docs, total, err := s.documents.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}

	now := s.now()
	items := make([]models.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		totals, err := commerce.ComputeTotals(doc.Items)
		if err != nil {
			return nil, fmt.Errorf("error computing totals for %s: %w", doc.ID, err)
		}
		items = append(items, models.DocumentSummary{
			ID:              doc.ID,
			Kind:            doc.Kind,
			DocumentNumber:  doc.DocumentNumber,
			CustomerID:      doc.CustomerID,
			CustomerName:    doc.CustomerName,
			IssueDate:       doc.IssueDate,
			SecondaryDate:   doc.SecondaryDate,
			Status:          doc.Status,
			EffectiveStatus: commerce.EffectiveStatus(doc, now),
			Total:           totals.Total.Round(commerce.DisplayPlaces),
			PaidAmount:      doc.PaidAmount,
			HasPDF:          doc.HasPDF,
			Version:         doc.Version,
		})
	}

	return &models.DocumentListResponse{
		Items:    items,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Total:    total,
	}, nil
}

// Update reemplaza cabecera y líneas; el estado y el importe pagado se conservan
func (s *DocumentService) Update(ctx context.Context, p models.Principal, kind models.DocumentKind, id uuid.UUID, req *models.DocumentRequest) (*models.DocumentResponse, error) {
	current, err := s.documents.GetByID(ctx, p.UserID, kind, id)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(current, req.Version); err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := s.applyRequest(ctx, p, &next, req, s.now()); err != nil {
		return nil, err
	}
	if err := commerce.CheckEditable(*current, next); err != nil {
		return nil, err
	}

	if err := s.documents.Update(ctx, &next, current.Version); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"document_id": next.ID,
		"kind":        kind,
		"version":     next.Version,
	}).Info("Document updated successfully")

	return s.respond(&next)
}

// ChangeStatus aplica una transición de estado con su payload de forma atómica
func (s *DocumentService) ChangeStatus(ctx context.Context, p models.Principal, kind models.DocumentKind, id uuid.UUID, req *models.StatusChangeRequest) (*models.DocumentResponse, error) {
	current, err := s.documents.GetByID(ctx, p.UserID, kind, id)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(current, req.Version); err != nil {
		return nil, err
	}

	next, err := commerce.ApplyTransition(*current, commerce.TransitionRequest{
		To:         req.Status,
		PaidAmount: req.PaidAmount,
		Now:        s.now(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.documents.UpdateStatus(ctx, &next, current.Version); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"document_id": next.ID,
		"kind":        kind,
		"from":        current.Status,
		"to":          next.Status,
	}).Info("Document status changed")

	if next.Status == models.DocumentStatusSent {
		s.notifySent(ctx, &next)
	}

	return s.respond(&next)
}

// Delete elimina un documento
func (s *DocumentService) Delete(ctx context.Context, p models.Principal, kind models.DocumentKind, id uuid.UUID) error {
	if err := s.documents.Delete(ctx, p.UserID, kind, id); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"document_id": id,
		"kind":        kind,
		"user_id":     p.UserID,
	}).Info("Document deleted")

	return nil
}

// Convert crea una factura en borrador a partir de un presupuesto.
// Con idempotencyKey, los reintentos con la misma clave retornan la misma factura.
func (s *DocumentService) Convert(ctx context.Context, p models.Principal, quoteID uuid.UUID, idempotencyKey string) (*models.ConvertResponse, error) {
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	useCache := idempotencyKey != "" && s.cache != nil
	cacheKey := fmt.Sprintf("idempotency:convert:%s:%s:%s", p.UserID, quoteID, idempotencyKey)

	if useCache {
		reserved, err := s.cache.SetIfAbsent(ctx, cacheKey, conversionPending, s.cfg.IdempotencyTTL)
		if err != nil {
			return nil, fmt.Errorf("error reserving idempotency key: %w", err)
		}
		if !reserved {
			return s.replayConversion(ctx, cacheKey, quoteID)
		}
	}

	invoice, err := s.convert(ctx, p, quoteID)
	if err != nil {
		if useCache {
			if delErr := s.cache.Delete(ctx, cacheKey); delErr != nil {
				s.logger.WithError(delErr).Warn("Failed to release idempotency key")
			}
		}
		return nil, err
	}

	if useCache {
		if err := s.cache.Set(ctx, cacheKey, invoice.ID.String(), s.cfg.IdempotencyTTL); err != nil {
			s.logger.WithError(err).WithField("invoice_id", invoice.ID).Warn("Failed to record idempotency key")
		}
	}

	return &models.ConvertResponse{InvoiceID: invoice.ID}, nil
}

// SweepStatuses persiste overdue y expired en los documentos cuya fecha secundaria pasó.
// Retorna la cantidad de documentos actualizados.
func (s *DocumentService) SweepStatuses(ctx context.Context) (int, error) {
	now := s.now()
	updated, scanned := 0, 0

	for {
		candidates, err := s.documents.ListSweepCandidates(ctx, now, s.batchSize)
		if err != nil {
			return updated, fmt.Errorf("error listing sweep candidates: %w", err)
		}
		scanned += len(candidates)

		n, err := s.sweepBatch(ctx, candidates, now)
		updated += n
		if err != nil {
			return updated, err
		}

		// Los omitidos vuelven a listarse; sin avances el lote se repetiría
		if len(candidates) < s.batchSize || n == 0 {
			break
		}
	}

	s.logger.WithFields(logrus.Fields{
		"candidates": scanned,
		"updated":    updated,
	}).Info("Status sweep completed")

	return updated, nil
}

func (s *DocumentService) sweepBatch(ctx context.Context, candidates []models.Document, now time.Time) (int, error) {
	updated := 0
	for _, doc := range candidates {
		target := commerce.EffectiveStatus(doc, now)
		if target == doc.Status {
			continue
		}

		next, err := commerce.ApplyTransition(doc, commerce.TransitionRequest{To: target, Now: now})
		if err != nil {
			s.logger.WithError(err).WithField("document_id", doc.ID).Warn("Sweep transition rejected")
			continue
		}

		if err := s.documents.UpdateStatus(ctx, &next, doc.Version); err != nil {
			var conflict *commerce.ConflictError
			var notFound *commerce.NotFoundError
			if errors.As(err, &conflict) || errors.As(err, &notFound) {
				s.logger.WithField("document_id", doc.ID).Debug("Document changed during sweep, skipping")
				continue
			}
			return updated, fmt.Errorf("error updating %s: %w", doc.ID, err)
		}
		updated++
	}
	return updated, nil
}

func (s *DocumentService) convert(ctx context.Context, p models.Principal, quoteID uuid.UUID) (*models.Document, error) {
	quote, err := s.documents.GetByID(ctx, p.UserID, models.DocumentKindQuote, quoteID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	due := now.AddDate(0, 0, s.cfg.DefaultDueDays)
	invoice, err := commerce.ConvertQuote(*quote, commerce.ConversionOptions{Now: now, DueDate: &due})
	if err != nil {
		return nil, err
	}

	if err := s.documents.Create(ctx, &invoice); err != nil {
		return nil, fmt.Errorf("error creating invoice from quote: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"quote_id":       quote.ID,
		"quote_number":   quote.DocumentNumber,
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.DocumentNumber,
	}).Info("Quote converted to invoice")

	return &invoice, nil
}

func (s *DocumentService) replayConversion(ctx context.Context, cacheKey string, quoteID uuid.UUID) (*models.ConvertResponse, error) {
	value, err := s.cache.Get(ctx, cacheKey)
	if err != nil {
		if errors.Is(err, database.ErrCacheMiss) {
			return nil, commerce.NewConflictError("quote", quoteID, "idempotency key expired during conversion, retry")
		}
		return nil, fmt.Errorf("error reading idempotency key: %w", err)
	}
	if value == conversionPending {
		return nil, commerce.NewConflictError("quote", quoteID, "conversion already in progress")
	}

	invoiceID, err := uuid.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("error parsing stored invoice id: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"quote_id":   quoteID,
		"invoice_id": invoiceID,
	}).Info("Conversion replayed from idempotency key")

	return &models.ConvertResponse{InvoiceID: invoiceID}, nil
}

// applyRequest completa cabecera y líneas del documento desde el request y lo valida
func (s *DocumentService) applyRequest(ctx context.Context, p models.Principal, doc *models.Document, req *models.DocumentRequest, now time.Time) error {
	catalog, err := loadCatalog(ctx, s.products, p.UserID, req.Items)
	if err != nil {
		return err
	}

	doc.CustomerID = req.CustomerID
	doc.Notes = req.Notes
	doc.Items = commerce.BuildLineItems(req.Items, catalog)

	if req.IssueDate != nil {
		doc.IssueDate = *req.IssueDate
	} else if doc.IssueDate.IsZero() {
		doc.IssueDate = now
	}
	doc.SecondaryDate = req.SecondaryDate
	if doc.SecondaryDate == nil {
		doc.SecondaryDate = s.defaultSecondaryDate(doc.Kind, doc.IssueDate)
	}

	if err := commerce.ValidateForSave(*doc); err != nil {
		return err
	}

	if _, err := s.customers.GetByID(ctx, p.UserID, doc.CustomerID); err != nil {
		return err
	}
	return nil
}

func (s *DocumentService) defaultSecondaryDate(kind models.DocumentKind, issue time.Time) *time.Time {
	var d time.Time
	switch kind {
	case models.DocumentKindQuote:
		d = issue.AddDate(0, 0, s.cfg.QuoteValidityDays)
	case models.DocumentKindInvoice:
		d = issue.AddDate(0, 0, s.cfg.DefaultDueDays)
	default:
		return nil
	}
	return &d
}

func (s *DocumentService) notifySent(ctx context.Context, doc *models.Document) {
	if s.notifier == nil {
		return
	}

	customer, err := s.customers.GetByID(ctx, doc.UserID, doc.CustomerID)
	if err != nil {
		s.logger.WithError(err).WithField("document_id", doc.ID).Warn("Skipping email, customer unavailable")
		return
	}
	if customer.Email == nil || *customer.Email == "" {
		return
	}

	totals, err := commerce.ComputeTotals(doc.Items)
	if err != nil {
		s.logger.WithError(err).WithField("document_id", doc.ID).Warn("Skipping email, totals unavailable")
		return
	}

	if err := s.notifier.SendDocument(ctx, doc, customer, totals.Round(commerce.DisplayPlaces)); err != nil {
		s.logger.WithError(err).WithField("document_id", doc.ID).Error("Failed to send document email")
	}
}

func (s *DocumentService) respond(doc *models.Document) (*models.DocumentResponse, error) {
	totals, err := commerce.ComputeTotals(doc.Items)
	if err != nil {
		return nil, err
	}
	balance, err := commerce.BalanceDue(*doc)
	if err != nil {
		return nil, err
	}
	if balance != nil {
		rounded := balance.Round(commerce.DisplayPlaces)
		balance = &rounded
	}

	return &models.DocumentResponse{
		Document:        doc,
		EffectiveStatus: commerce.EffectiveStatus(*doc, s.now()),
		Totals:          totals.Round(commerce.DisplayPlaces),
		BalanceDue:      balance,
		Links:           DocumentLinks(doc.Kind, doc.ID),
	}, nil
}

// DocumentLinks arma los enlaces REST de un documento
func DocumentLinks(kind models.DocumentKind, id uuid.UUID) models.Links {
	self := fmt.Sprintf("/v1/%s/%s", kind.Collection(), id)
	return models.Links{
		Self: self,
		PDF:  self + "/pdf",
	}
}

// checkVersion rechaza el request si trae una versión distinta de la almacenada
func checkVersion(doc *models.Document, version *int) error {
	if version != nil && *version != doc.Version {
		return commerce.NewConflictError(string(doc.Kind), doc.ID,
			fmt.Sprintf("version %d is stale, current version is %d", *version, doc.Version))
	}
	return nil
}

func hasStatus(lc commerce.Lifecycle, status models.DocumentStatus) bool {
	for _, st := range lc.Statuses() {
		if st == status {
			return true
		}
	}
	return false
}

// loadCatalog carga los productos referenciados por las líneas del request
func loadCatalog(ctx context.Context, products ProductStore, userID uuid.UUID, items []models.LineItemRequest) (commerce.Catalog, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, item := range items {
		if item.ProductID != nil && !seen[*item.ProductID] {
			seen[*item.ProductID] = true
			ids = append(ids, *item.ProductID)
		}
	}
	if len(ids) == 0 {
		return commerce.NewMapCatalog(nil), nil
	}

	found, err := products.GetByIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading catalog: %w", err)
	}
	return commerce.NewMapCatalog(found), nil
}
