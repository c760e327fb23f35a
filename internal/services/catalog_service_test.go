package services

import (
	"context"
	"testing"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/commerce"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerValidation(t *testing.T) {
	svc := NewCustomerService(newMemCustomers(), quietLogger())
	p := models.Principal{UserID: uuid.New()}

	tests := []struct {
		name  string
		req   models.CreateCustomerRequest
		field string
	}{
		{name: "blank company", req: models.CreateCustomerRequest{CompanyName: "  "}, field: "company_name"},
		{name: "bad email", req: models.CreateCustomerRequest{CompanyName: "Atlas", Email: strPtr("atlas.dz")}, field: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), p, &tt.req)
			var validation *commerce.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}

	customer, err := svc.Create(context.Background(), p, &models.CreateCustomerRequest{
		CompanyName: " Atlas ",
		TaxIDs:      models.TaxIDs{NIF: strPtr("000016001234567")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Atlas", customer.CompanyName)
	assert.Equal(t, p.UserID, customer.UserID)
	assert.Equal(t, "000016001234567", *customer.TaxIDs.NIF)
}

func TestProductCreateAndLowStock(t *testing.T) {
	svc := NewProductService(newMemProducts(), quietLogger())
	p := models.Principal{UserID: uuid.New()}

	view, err := svc.Create(context.Background(), p, &models.CreateProductRequest{
		Reference:      "CAB-2",
		Name:           "Câble 2m",
		SalePrice:      decimal.RequireFromString("450"),
		TaxRatePercent: decimal.RequireFromString("19"),
		StockQuantity:  decPtr("3"),
		MinStock:       decPtr("5"),
	})
	require.NoError(t, err)

	assert.Equal(t, "unit", view.Unit)
	assert.True(t, view.LowStock)

	_, err = svc.Create(context.Background(), p, &models.CreateProductRequest{
		Reference:      "CAB-3",
		Name:           "Câble 3m",
		TaxRatePercent: decimal.RequireFromString("101"),
	})
	var validation *commerce.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "tax_rate_percent", validation.Field)
}

func TestProductCatalogIgnoresForeignProducts(t *testing.T) {
	owner := uuid.New()
	mine := models.Product{ID: uuid.New(), UserID: owner, Name: "Mine"}
	theirs := models.Product{ID: uuid.New(), UserID: uuid.New(), Name: "Theirs"}
	svc := NewProductService(newMemProducts(mine, theirs), quietLogger())

	catalog, err := svc.Catalog(context.Background(), models.Principal{UserID: owner}, []models.LineItemRequest{
		{ProductID: &mine.ID},
		{ProductID: &theirs.ID},
		{ProductID: &mine.ID},
	})
	require.NoError(t, err)

	_, ok := catalog.Lookup(mine.ID)
	assert.True(t, ok)
	_, ok = catalog.Lookup(theirs.ID)
	assert.False(t, ok)
}
