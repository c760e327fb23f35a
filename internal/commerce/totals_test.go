package commerce

import (
	"errors"
	"testing"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotalsQuoteExample(t *testing.T) {
	totals, err := ComputeTotals([]models.LineItem{
		line("1", "50", "0"),
		line("3", "10", "19"),
	})
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(d("80")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.TaxTotal.Equal(d("5.7")), "tax %s", totals.TaxTotal)
	assert.True(t, totals.Total.Equal(d("85.7")), "total %s", totals.Total)
}

func TestComputeTotalsInvoiceExample(t *testing.T) {
	totals, err := ComputeTotals([]models.LineItem{line("2", "100", "19")})
	require.NoError(t, err)

	assert.Equal(t, "200.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "38.00", totals.TaxTotal.StringFixed(2))
	assert.Equal(t, "238.00", totals.Total.StringFixed(2))
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals, err := ComputeTotals(nil)
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.TaxTotal.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestComputeTotalsPermutationInvariant(t *testing.T) {
	items := []models.LineItem{
		line("1", "0.1", "19"),
		line("3", "33.33", "7"),
		line("2", "0.2", "5.5"),
		line("10", "1.01", "20"),
	}
	base, err := ComputeTotals(items)
	require.NoError(t, err)

	permutations := [][]int{{3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1}}
	for _, p := range permutations {
		shuffled := make([]models.LineItem, len(items))
		for i, idx := range p {
			shuffled[i] = items[idx]
		}
		got, err := ComputeTotals(shuffled)
		require.NoError(t, err)

		assert.True(t, base.Subtotal.Equal(got.Subtotal))
		assert.True(t, base.TaxTotal.Equal(got.TaxTotal))
		assert.True(t, base.Total.Equal(got.Total))
		assert.True(t, got.Total.Equal(got.Subtotal.Add(got.TaxTotal)))
	}
}

func TestComputeTotalsNamesOffendingLine(t *testing.T) {
	_, err := ComputeTotals([]models.LineItem{line("1", "10", "0"), line("0", "10", "0")})

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "items[1].quantity", ve.Field)
}

func TestValidateForSave(t *testing.T) {
	customer := uuid.New()
	paid := d("10")
	tooMuch := d("1000")

	tests := []struct {
		name  string
		doc   models.Document
		field string
	}{
		{
			name:  "valid invoice",
			doc:   models.Document{Kind: models.DocumentKindInvoice, CustomerID: customer, Items: []models.LineItem{line("1", "100", "19")}, PaidAmount: &paid},
			field: "",
		},
		{
			name:  "no items",
			doc:   models.Document{Kind: models.DocumentKindQuote, CustomerID: customer},
			field: "items",
		},
		{
			name:  "missing customer",
			doc:   models.Document{Kind: models.DocumentKindQuote, Items: []models.LineItem{line("1", "1", "0")}},
			field: "customer_id",
		},
		{
			name:  "negative price",
			doc:   models.Document{Kind: models.DocumentKindDelivery, CustomerID: customer, Items: []models.LineItem{line("1", "-1", "0")}},
			field: "items[0].unit_price",
		},
		{
			name: "blank description",
			doc: models.Document{Kind: models.DocumentKindQuote, CustomerID: customer, Items: []models.LineItem{
				{Description: "  ", Quantity: d("1"), UnitPrice: d("1"), TaxRatePercent: d("0")},
			}},
			field: "items[0].description",
		},
		{
			name:  "paid amount above total",
			doc:   models.Document{Kind: models.DocumentKindInvoice, CustomerID: customer, Items: []models.LineItem{line("1", "100", "19")}, PaidAmount: &tooMuch},
			field: "paid_amount",
		},
		{
			name:  "paid amount on quote",
			doc:   models.Document{Kind: models.DocumentKindQuote, CustomerID: customer, Items: []models.LineItem{line("1", "100", "19")}, PaidAmount: &paid},
			field: "paid_amount",
		},
		{
			name:  "unit price beyond storage scale",
			doc:   models.Document{Kind: models.DocumentKindQuote, CustomerID: customer, Items: []models.LineItem{line("1", "0.12345", "0")}},
			field: "items[0].unit_price",
		},
		{
			name:  "quantity beyond storage scale",
			doc:   models.Document{Kind: models.DocumentKindQuote, CustomerID: customer, Items: []models.LineItem{line("1", "1", "0"), line("0.00001", "1", "0")}},
			field: "items[1].quantity",
		},
		{
			name:  "tax rate beyond storage scale",
			doc:   models.Document{Kind: models.DocumentKindInvoice, CustomerID: customer, Items: []models.LineItem{line("1", "1", "5.55555")}},
			field: "items[0].tax_rate_percent",
		},
		{
			name:  "trailing zeros fit storage",
			doc:   models.Document{Kind: models.DocumentKindQuote, CustomerID: customer, Items: []models.LineItem{line("1.500000", "9.990000", "19.00000")}},
			field: "",
		},
		{
			name:  "unknown kind",
			doc:   models.Document{Kind: "receipt", CustomerID: customer, Items: []models.LineItem{line("1", "1", "0")}},
			field: "kind",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateForSave(tt.doc)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestCheckEditable(t *testing.T) {
	paid := doc(models.DocumentKindInvoice, models.DocumentStatusPaid)
	paid.PaidAmount = decPtr("238")

	reordered := paid.Clone()
	reordered.Items = []models.LineItem{line("1", "100", "19"), line("1", "100", "19")}
	assert.NoError(t, CheckEditable(paid, reordered))

	grown := paid.Clone()
	grown.Items = []models.LineItem{line("5", "100", "19")}
	var ve *ValidationError
	require.True(t, errors.As(CheckEditable(paid, grown), &ve))
	assert.Equal(t, "items", ve.Field)

	partial := doc(models.DocumentKindInvoice, models.DocumentStatusPartial)
	partial.PaidAmount = decPtr("100")
	require.True(t, errors.As(CheckEditable(partial, grown), &ve))

	sent := doc(models.DocumentKindInvoice, models.DocumentStatusSent)
	assert.NoError(t, CheckEditable(sent, grown))

	quote := doc(models.DocumentKindQuote, models.DocumentStatusAccepted)
	assert.NoError(t, CheckEditable(quote, grown))
}
