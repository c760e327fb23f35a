package commerce

import (
	"strings"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComputeTotals suma las líneas en subtotal, impuestos y total.
// El resultado no depende del orden de las líneas y no se redondea.
func ComputeTotals(items []models.LineItem) (models.Totals, error) {
	subtotal := decimal.Zero
	taxTotal := decimal.Zero

	for i, item := range items {
		v, err := ValueItem(item)
		if err != nil {
			return models.Totals{}, itemError(i, err)
		}
		subtotal = subtotal.Add(v.BaseAmount)
		taxTotal = taxTotal.Add(v.TaxAmount)
	}

	return models.Totals{
		Subtotal: subtotal,
		TaxTotal: taxTotal,
		Total:    subtotal.Add(taxTotal),
	}, nil
}

// ValidateForSave verifica que el documento pueda persistirse
func ValidateForSave(doc models.Document) error {
	if !doc.Kind.IsValid() {
		return invalid("kind", "unknown document kind %q", doc.Kind)
	}
	if doc.CustomerID == uuid.Nil {
		return invalid("customer_id", "is required")
	}
	if len(doc.Items) == 0 {
		return invalid("items", "at least one line item is required")
	}
	for i, item := range doc.Items {
		if strings.TrimSpace(item.Description) == "" {
			return itemError(i, invalid("description", "is required"))
		}
		if err := checkItemScale(item); err != nil {
			return itemError(i, err)
		}
	}

	totals, err := ComputeTotals(doc.Items)
	if err != nil {
		return err
	}

	if doc.PaidAmount != nil {
		if doc.Kind != models.DocumentKindInvoice {
			return invalid("paid_amount", "only invoices carry a paid amount")
		}
		if err := checkPaidAmount(*doc.PaidAmount, totals.Total); err != nil {
			return err
		}
	}

	return nil
}

// CheckEditable verifica que la edición no altere el total de una factura con pagos registrados
func CheckEditable(current, next models.Document) error {
	if current.Kind != models.DocumentKindInvoice {
		return nil
	}
	if current.Status != models.DocumentStatusPaid && current.Status != models.DocumentStatusPartial {
		return nil
	}

	before, err := ComputeTotals(current.Items)
	if err != nil {
		return err
	}
	after, err := ComputeTotals(next.Items)
	if err != nil {
		return err
	}
	if !before.Total.Equal(after.Total) {
		return invalid("items", "total of a %s invoice cannot change, was %s, got %s",
			current.Status, before.Total.Round(DisplayPlaces), after.Total.Round(DisplayPlaces))
	}
	return nil
}

func checkItemScale(item models.LineItem) error {
	if err := checkStorageScale("quantity", item.Quantity); err != nil {
		return err
	}
	if err := checkStorageScale("unit_price", item.UnitPrice); err != nil {
		return err
	}
	return checkStorageScale("tax_rate_percent", item.TaxRatePercent)
}

func checkPaidAmount(amount, total decimal.Decimal) error {
	if amount.IsNegative() || amount.GreaterThan(total) {
		return invalid("paid_amount", "must be between 0 and %s, got %s", total.Round(DisplayPlaces), amount)
	}
	return nil
}
