package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentKind representa el tipo de documento comercial
type DocumentKind string

const (
	DocumentKindQuote    DocumentKind = "quote"
	DocumentKindInvoice  DocumentKind = "invoice"
	DocumentKindDelivery DocumentKind = "delivery"
)

// IsValid indica si el tipo de documento es conocido
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentKindQuote, DocumentKindInvoice, DocumentKindDelivery:
		return true
	}
	return false
}

// NumberPrefix retorna el prefijo usado en la numeración secuencial del tipo
func (k DocumentKind) NumberPrefix() string {
	switch k {
	case DocumentKindQuote:
		return "DEV"
	case DocumentKindInvoice:
		return "FAC"
	case DocumentKindDelivery:
		return "BL"
	default:
		return "DOC"
	}
}

// Collection retorna el nombre de la colección REST del tipo
func (k DocumentKind) Collection() string {
	switch k {
	case DocumentKindQuote:
		return "quotes"
	case DocumentKindInvoice:
		return "invoices"
	case DocumentKindDelivery:
		return "deliveries"
	default:
		return "documents"
	}
}

// SecondaryDateName retorna el nombre de la fecha secundaria según el tipo
func (k DocumentKind) SecondaryDateName() string {
	switch k {
	case DocumentKindQuote:
		return "expiry_date"
	case DocumentKindInvoice:
		return "due_date"
	case DocumentKindDelivery:
		return "delivery_date"
	default:
		return "secondary_date"
	}
}

// DocumentStatus representa el estado del documento
type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusSent      DocumentStatus = "sent"
	DocumentStatusAccepted  DocumentStatus = "accepted"
	DocumentStatusRejected  DocumentStatus = "rejected"
	DocumentStatusExpired   DocumentStatus = "expired"
	DocumentStatusPaid      DocumentStatus = "paid"
	DocumentStatusPartial   DocumentStatus = "partial"
	DocumentStatusOverdue   DocumentStatus = "overdue"
	DocumentStatusDelivered DocumentStatus = "delivered"
	DocumentStatusInvoiced  DocumentStatus = "invoiced"
)

// LineItem representa una línea de un documento
type LineItem struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	DocumentID     uuid.UUID       `json:"document_id" db:"document_id"`
	LineNo         int             `json:"line_no" db:"line_no"`
	ProductID      *uuid.UUID      `json:"product_id,omitempty" db:"product_id"`
	Description    string          `json:"description" db:"description"`
	Quantity       decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent" db:"tax_rate_percent"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// Document representa un presupuesto, una factura o un albarán
type Document struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	UserID         uuid.UUID        `json:"user_id" db:"user_id"`
	Kind           DocumentKind     `json:"kind" db:"kind"`
	DocumentNumber string           `json:"document_number" db:"document_number"`
	CustomerID     uuid.UUID        `json:"customer_id" db:"customer_id"`
	IssueDate      time.Time        `json:"issue_date" db:"issue_date"`
	SecondaryDate  *time.Time       `json:"secondary_date,omitempty" db:"secondary_date"`
	Items          []LineItem       `json:"items"`
	Notes          *string          `json:"notes,omitempty" db:"notes"`
	Status         DocumentStatus   `json:"status" db:"status"`
	PaidAmount     *decimal.Decimal `json:"paid_amount,omitempty" db:"paid_amount"`
	SourceQuoteID  *uuid.UUID       `json:"source_quote_id,omitempty" db:"source_quote_id"`
	HasPDF         bool             `json:"has_pdf" db:"-"`
	Version        int              `json:"version" db:"version"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`

	// Campo de presentación poblado en lecturas
	CustomerName string `json:"customer_name,omitempty" db:"-"`
}

// Clone retorna una copia profunda del documento; las líneas y punteros no se comparten
func (d Document) Clone() Document {
	out := d
	if d.Items != nil {
		out.Items = make([]LineItem, len(d.Items))
		for i, item := range d.Items {
			out.Items[i] = item.Clone()
		}
	}
	if d.SecondaryDate != nil {
		t := *d.SecondaryDate
		out.SecondaryDate = &t
	}
	if d.Notes != nil {
		n := *d.Notes
		out.Notes = &n
	}
	if d.PaidAmount != nil {
		p := *d.PaidAmount
		out.PaidAmount = &p
	}
	if d.SourceQuoteID != nil {
		q := *d.SourceQuoteID
		out.SourceQuoteID = &q
	}
	return out
}

// Clone retorna una copia de la línea sin compartir la referencia al producto
func (i LineItem) Clone() LineItem {
	out := i
	if i.ProductID != nil {
		p := *i.ProductID
		out.ProductID = &p
	}
	return out
}

// Totals representa los totales derivados de las líneas del documento
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	TaxTotal decimal.Decimal `json:"tax_total"`
	Total    decimal.Decimal `json:"total"`
}

// Round retorna los totales redondeados para presentación
func (t Totals) Round(places int32) Totals {
	return Totals{
		Subtotal: t.Subtotal.Round(places),
		TaxTotal: t.TaxTotal.Round(places),
		Total:    t.Total.Round(places),
	}
}

// LineItemRequest representa una línea en el request de creación o edición.
// Los campos nulos se completan desde el catálogo cuando hay product_id.
type LineItemRequest struct {
	ProductID      *uuid.UUID       `json:"product_id,omitempty"`
	Description    *string          `json:"description,omitempty"`
	Quantity       *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice      *decimal.Decimal `json:"unit_price,omitempty"`
	TaxRatePercent *decimal.Decimal `json:"tax_rate_percent,omitempty"`
}

// DocumentRequest representa el request para crear/actualizar un documento
type DocumentRequest struct {
	CustomerID    uuid.UUID         `json:"customer_id" binding:"required"`
	IssueDate     *time.Time        `json:"issue_date,omitempty"`
	SecondaryDate *time.Time        `json:"secondary_date,omitempty"`
	Notes         *string           `json:"notes,omitempty"`
	Items         []LineItemRequest `json:"items"`
	Version       *int              `json:"version,omitempty"`
}

// StatusChangeRequest representa el cambio de estado con su payload en un único request
type StatusChangeRequest struct {
	Status     DocumentStatus   `json:"status" binding:"required"`
	PaidAmount *decimal.Decimal `json:"paid_amount,omitempty"`
	Version    *int             `json:"version,omitempty"`
}

// PreviewRequest representa el request para calcular totales sin persistir
type PreviewRequest struct {
	Items []LineItemRequest `json:"items"`
}

// LineValuationResponse representa los importes calculados de una línea
type LineValuationResponse struct {
	LineNo      int             `json:"line_no"`
	Description string          `json:"description"`
	BaseAmount  decimal.Decimal `json:"base_amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// PreviewResponse representa la respuesta del cálculo de totales
type PreviewResponse struct {
	Lines  []LineValuationResponse `json:"lines"`
	Totals Totals                  `json:"totals"`
}

// DocumentResponse representa un documento con sus valores derivados
type DocumentResponse struct {
	*Document
	EffectiveStatus DocumentStatus   `json:"effective_status"`
	Totals          Totals           `json:"totals"`
	BalanceDue      *decimal.Decimal `json:"balance_due,omitempty"`
	Links           Links            `json:"links"`
}

// DocumentSummary representa un documento en los listados
type DocumentSummary struct {
	ID              uuid.UUID        `json:"id"`
	Kind            DocumentKind     `json:"kind"`
	DocumentNumber  string           `json:"document_number"`
	CustomerID      uuid.UUID        `json:"customer_id"`
	CustomerName    string           `json:"customer_name"`
	IssueDate       time.Time        `json:"issue_date"`
	SecondaryDate   *time.Time       `json:"secondary_date,omitempty"`
	Status          DocumentStatus   `json:"status"`
	EffectiveStatus DocumentStatus   `json:"effective_status"`
	Total           decimal.Decimal  `json:"total"`
	PaidAmount      *decimal.Decimal `json:"paid_amount,omitempty"`
	HasPDF          bool             `json:"has_pdf"`
	Version         int              `json:"version"`
}

// DocumentListResponse representa la respuesta paginada de documentos
type DocumentListResponse struct {
	Items    []DocumentSummary `json:"items"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Total    int               `json:"total"`
}

// ConvertResponse representa la respuesta de la conversión presupuesto→factura
type ConvertResponse struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
}

// Links representa los enlaces relacionados
type Links struct {
	Self string `json:"self"`
	PDF  string `json:"pdf"`
}
