package commerce

import (
	"errors"
	"fmt"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/shopspring/decimal"
)

// DisplayPlaces es la cantidad de decimales usada al presentar importes
const DisplayPlaces int32 = 2

// StoragePlaces es la escala máxima que admiten cantidades, precios y tasas al persistirse
const StoragePlaces int32 = 4

var hundred = decimal.NewFromInt(100)

// LineValuation contiene los importes de una línea, sin redondear
type LineValuation struct {
	BaseAmount decimal.Decimal
	TaxAmount  decimal.Decimal
	LineTotal  decimal.Decimal
}

// ValueLine calcula base, impuesto y total de una línea
func ValueLine(quantity, unitPrice, taxRatePercent decimal.Decimal) (LineValuation, error) {
	if !quantity.IsPositive() {
		return LineValuation{}, invalid("quantity", "must be greater than 0, got %s", quantity)
	}
	if unitPrice.IsNegative() {
		return LineValuation{}, invalid("unit_price", "must not be negative, got %s", unitPrice)
	}
	if taxRatePercent.IsNegative() || taxRatePercent.GreaterThan(hundred) {
		return LineValuation{}, invalid("tax_rate_percent", "must be between 0 and 100, got %s", taxRatePercent)
	}

	base := quantity.Mul(unitPrice)
	// Shift(-2) divide por 100 sin pérdida de precisión
	tax := base.Mul(taxRatePercent).Shift(-2)

	return LineValuation{
		BaseAmount: base,
		TaxAmount:  tax,
		LineTotal:  base.Add(tax),
	}, nil
}

// ValueItem calcula los importes de una línea de documento
func ValueItem(item models.LineItem) (LineValuation, error) {
	return ValueLine(item.Quantity, item.UnitPrice, item.TaxRatePercent)
}

// Rounded retorna la valoración redondeada para presentación
func (v LineValuation) Rounded() LineValuation {
	return LineValuation{
		BaseAmount: v.BaseAmount.Round(DisplayPlaces),
		TaxAmount:  v.TaxAmount.Round(DisplayPlaces),
		LineTotal:  v.LineTotal.Round(DisplayPlaces),
	}
}

// FitsStorage indica si el valor se persiste sin perder decimales
func FitsStorage(v decimal.Decimal) bool {
	return v.Equal(v.Truncate(StoragePlaces))
}

func checkStorageScale(field string, v decimal.Decimal) error {
	if !FitsStorage(v) {
		return invalid(field, "must have at most %d decimal places, got %s", StoragePlaces, v)
	}
	return nil
}

// itemError antepone el índice de la línea al campo inválido
func itemError(index int, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return &ValidationError{Field: fmt.Sprintf("items[%d].%s", index, ve.Field), Reason: ve.Reason}
	}
	return err
}
