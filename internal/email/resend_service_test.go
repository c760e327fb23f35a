package email

import (
	"testing"
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBuildDocumentEmail(t *testing.T) {
	due := time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC)
	doc := &models.Document{
		ID:             uuid.New(),
		Kind:           models.DocumentKindInvoice,
		DocumentNumber: "FAC-000042",
		IssueDate:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		SecondaryDate:  &due,
	}
	customer := &models.Customer{CompanyName: "Sarl <Atlas>"}
	totals := models.Totals{
		Subtotal: decimal.NewFromInt(200),
		TaxTotal: decimal.NewFromInt(38),
		Total:    decimal.NewFromInt(238),
	}

	subject, body := buildDocumentEmail(doc, customer, totals, "https://api.vyzo.app")

	assert.Equal(t, "Facture FAC-000042", subject)
	assert.Contains(t, body, "238.00")
	assert.Contains(t, body, "09/04/2025")
	assert.Contains(t, body, "Sarl &lt;Atlas&gt;")
	assert.Contains(t, body, "https://api.vyzo.app/v1/invoices/"+doc.ID.String()+"/pdf")
}

func TestBuildDocumentEmailDeliveryHasNoDueLine(t *testing.T) {
	date := time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC)
	doc := &models.Document{
		ID:             uuid.New(),
		Kind:           models.DocumentKindDelivery,
		DocumentNumber: "BL-000001",
		SecondaryDate:  &date,
	}

	subject, body := buildDocumentEmail(doc, &models.Customer{CompanyName: "Atlas"}, models.Totals{}, "")

	assert.Equal(t, "Bon de livraison BL-000001", subject)
	assert.NotContains(t, body, "Échéance")
}
