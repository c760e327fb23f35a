package commerce

import (
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConversionOptions define los valores de la factura resultante
type ConversionOptions struct {
	Now     time.Time
	DueDate *time.Time
}

// ConvertQuote construye una factura en borrador a partir de un presupuesto.
// Las líneas se copian en profundidad; la factura y el presupuesto no comparten datos.
// El id, el número y las fechas de auditoría quedan a cargo del almacenamiento.
func ConvertQuote(quote models.Document, opts ConversionOptions) (models.Document, error) {
	if quote.Kind != models.DocumentKindQuote {
		return models.Document{}, &ConversionError{QuoteID: quote.ID, Reason: "document is a " + string(quote.Kind) + ", not a quote"}
	}
	switch quote.Status {
	case models.DocumentStatusRejected, models.DocumentStatusExpired:
		return models.Document{}, &ConversionError{QuoteID: quote.ID, Reason: "quote is " + string(quote.Status)}
	}
	if len(quote.Items) == 0 {
		return models.Document{}, &ConversionError{QuoteID: quote.ID, Reason: "quote has no line items"}
	}
	if _, err := ComputeTotals(quote.Items); err != nil {
		return models.Document{}, err
	}

	src := quote.Clone()
	items := make([]models.LineItem, len(src.Items))
	for i, item := range src.Items {
		item.ID = uuid.Nil
		item.DocumentID = uuid.Nil
		item.LineNo = i + 1
		item.CreatedAt = time.Time{}
		items[i] = item
	}

	var due *time.Time
	if opts.DueDate != nil {
		d := *opts.DueDate
		due = &d
	}
	quoteID := quote.ID
	paid := decimal.Zero

	return models.Document{
		UserID:        src.UserID,
		Kind:          models.DocumentKindInvoice,
		CustomerID:    src.CustomerID,
		IssueDate:     opts.Now,
		SecondaryDate: due,
		Items:         items,
		Notes:         src.Notes,
		Status:        invoiceLifecycle.Initial(),
		PaidAmount:    &paid,
		SourceQuoteID: &quoteID,
	}, nil
}
