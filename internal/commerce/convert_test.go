package commerce

import (
	"errors"
	"testing"
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acceptedQuote() models.Document {
	product := uuid.New()
	notes := "net 30"
	q := doc(models.DocumentKindQuote, models.DocumentStatusAccepted)
	q.UserID = uuid.New()
	q.DocumentNumber = "DEV-000004"
	q.Notes = &notes
	q.Items = []models.LineItem{
		{ID: uuid.New(), DocumentID: q.ID, LineNo: 1, ProductID: &product, Description: "Ciment", Quantity: d("1"), UnitPrice: d("50"), TaxRatePercent: d("0")},
		{ID: uuid.New(), DocumentID: q.ID, LineNo: 2, Description: "Pose", Quantity: d("3"), UnitPrice: d("10"), TaxRatePercent: d("19")},
	}
	return q
}

func TestConvertQuote(t *testing.T) {
	quote := acceptedQuote()
	due := now.AddDate(0, 0, 30)

	inv, err := ConvertQuote(quote, ConversionOptions{Now: now, DueDate: &due})
	require.NoError(t, err)

	assert.Equal(t, models.DocumentKindInvoice, inv.Kind)
	assert.Equal(t, models.DocumentStatusDraft, inv.Status)
	assert.Equal(t, quote.CustomerID, inv.CustomerID)
	assert.Equal(t, quote.UserID, inv.UserID)
	assert.Equal(t, now, inv.IssueDate)
	require.NotNil(t, inv.SecondaryDate)
	assert.Equal(t, due, *inv.SecondaryDate)
	require.NotNil(t, inv.PaidAmount)
	assert.True(t, inv.PaidAmount.IsZero())
	require.NotNil(t, inv.SourceQuoteID)
	assert.Equal(t, quote.ID, *inv.SourceQuoteID)
	assert.Empty(t, inv.DocumentNumber)
	assert.Equal(t, uuid.Nil, inv.ID)

	require.Len(t, inv.Items, len(quote.Items))
	for i := range quote.Items {
		assert.True(t, quote.Items[i].Quantity.Equal(inv.Items[i].Quantity))
		assert.True(t, quote.Items[i].UnitPrice.Equal(inv.Items[i].UnitPrice))
		assert.True(t, quote.Items[i].TaxRatePercent.Equal(inv.Items[i].TaxRatePercent))
		assert.Equal(t, quote.Items[i].Description, inv.Items[i].Description)
		assert.Equal(t, i+1, inv.Items[i].LineNo)
		assert.Equal(t, uuid.Nil, inv.Items[i].ID)
	}

	qt, err := ComputeTotals(quote.Items)
	require.NoError(t, err)
	it, err := ComputeTotals(inv.Items)
	require.NoError(t, err)
	assert.True(t, qt.Total.Equal(it.Total))
}

func TestConvertQuoteDoesNotAliasItems(t *testing.T) {
	quote := acceptedQuote()
	originalProduct := *quote.Items[0].ProductID

	inv, err := ConvertQuote(quote, ConversionOptions{Now: now})
	require.NoError(t, err)

	inv.Items[0].Quantity = d("999")
	inv.Items[0].Description = "changed"
	*inv.Items[0].ProductID = uuid.New()
	*inv.Notes = "changed"
	inv.Items = append(inv.Items, line("1", "1", "0"))

	assert.Len(t, quote.Items, 2)
	assert.True(t, quote.Items[0].Quantity.Equal(d("1")))
	assert.Equal(t, "Ciment", quote.Items[0].Description)
	assert.Equal(t, originalProduct, *quote.Items[0].ProductID)
	assert.Equal(t, "net 30", *quote.Notes)
	assert.Equal(t, models.DocumentStatusAccepted, quote.Status)
}

func TestConvertQuoteFromDraftAndSent(t *testing.T) {
	for _, status := range []models.DocumentStatus{models.DocumentStatusDraft, models.DocumentStatusSent} {
		q := acceptedQuote()
		q.Status = status

		_, err := ConvertQuote(q, ConversionOptions{Now: now})
		assert.NoError(t, err, "status %s", status)
	}
}

func TestConvertQuoteRejections(t *testing.T) {
	empty := acceptedQuote()
	empty.Items = nil

	rejected := acceptedQuote()
	rejected.Status = models.DocumentStatusRejected

	expired := acceptedQuote()
	expired.Status = models.DocumentStatusExpired

	invoice := acceptedQuote()
	invoice.Kind = models.DocumentKindInvoice
	invoice.Status = models.DocumentStatusSent

	for name, q := range map[string]models.Document{
		"empty":    empty,
		"rejected": rejected,
		"expired":  expired,
		"invoice":  invoice,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ConvertQuote(q, ConversionOptions{Now: time.Now()})

			var ce *ConversionError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, q.ID, ce.QuoteID)
		})
	}
}

func TestConvertQuoteWithInvalidLine(t *testing.T) {
	q := acceptedQuote()
	q.Items[1].Quantity = d("0")

	_, err := ConvertQuote(q, ConversionOptions{Now: now})

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "items[1].quantity", ve.Field)
}
