package commerce

import (
	"errors"
	"testing"
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func doc(kind models.DocumentKind, status models.DocumentStatus) models.Document {
	return models.Document{
		ID:         uuid.New(),
		Kind:       kind,
		CustomerID: uuid.New(),
		IssueDate:  now.AddDate(0, 0, -30),
		Items:      []models.LineItem{line("2", "100", "19")},
		Status:     status,
	}
}

func withDate(dc models.Document, t time.Time) models.Document {
	dc.SecondaryDate = &t
	return dc
}

func decPtr(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func TestInvoiceTransitions(t *testing.T) {
	pastDue := now.Add(-time.Hour)
	notDue := now.Add(time.Hour)

	tests := []struct {
		name    string
		doc     models.Document
		req     TransitionRequest
		wantErr bool
		paid    string
	}{
		{name: "draft to sent", doc: doc(models.DocumentKindInvoice, models.DocumentStatusDraft), req: TransitionRequest{To: models.DocumentStatusSent}},
		{name: "sent to paid sets paid amount", doc: doc(models.DocumentKindInvoice, models.DocumentStatusSent), req: TransitionRequest{To: models.DocumentStatusPaid}, paid: "238"},
		{name: "draft to paid", doc: doc(models.DocumentKindInvoice, models.DocumentStatusDraft), req: TransitionRequest{To: models.DocumentStatusPaid}, paid: "238"},
		{name: "overdue to paid", doc: doc(models.DocumentKindInvoice, models.DocumentStatusOverdue), req: TransitionRequest{To: models.DocumentStatusPaid}, paid: "238"},
		{name: "sent to partial", doc: doc(models.DocumentKindInvoice, models.DocumentStatusSent), req: TransitionRequest{To: models.DocumentStatusPartial, PaidAmount: decPtr("100")}, paid: "100"},
		{name: "partial to partial", doc: doc(models.DocumentKindInvoice, models.DocumentStatusPartial), req: TransitionRequest{To: models.DocumentStatusPartial, PaidAmount: decPtr("200")}, paid: "200"},
		{name: "paid to partial", doc: doc(models.DocumentKindInvoice, models.DocumentStatusPaid), req: TransitionRequest{To: models.DocumentStatusPartial, PaidAmount: decPtr("0")}, paid: "0"},
		{name: "partial at total", doc: doc(models.DocumentKindInvoice, models.DocumentStatusSent), req: TransitionRequest{To: models.DocumentStatusPartial, PaidAmount: decPtr("238")}, paid: "238"},
		{name: "sent to overdue past due", doc: withDate(doc(models.DocumentKindInvoice, models.DocumentStatusSent), pastDue), req: TransitionRequest{To: models.DocumentStatusOverdue, Now: now}},
		{name: "sent to overdue not due", doc: withDate(doc(models.DocumentKindInvoice, models.DocumentStatusSent), notDue), req: TransitionRequest{To: models.DocumentStatusOverdue, Now: now}, wantErr: true},
		{name: "sent to overdue without due date", doc: doc(models.DocumentKindInvoice, models.DocumentStatusSent), req: TransitionRequest{To: models.DocumentStatusOverdue, Now: now}, wantErr: true},
		{name: "draft to partial", doc: doc(models.DocumentKindInvoice, models.DocumentStatusDraft), req: TransitionRequest{To: models.DocumentStatusPartial, PaidAmount: decPtr("10")}, wantErr: true},
		{name: "paid to draft", doc: doc(models.DocumentKindInvoice, models.DocumentStatusPaid), req: TransitionRequest{To: models.DocumentStatusDraft}, wantErr: true},
		{name: "status of another kind", doc: doc(models.DocumentKindInvoice, models.DocumentStatusSent), req: TransitionRequest{To: models.DocumentStatusAccepted}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := ApplyTransition(tt.doc, tt.req)
			if tt.wantErr {
				var te *InvalidTransitionError
				require.True(t, errors.As(err, &te), "got %v", err)
				assert.Equal(t, "invoice", te.DocumentType)
				assert.Equal(t, string(tt.doc.Status), te.From)
				assert.Equal(t, string(tt.req.To), te.To)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.req.To, next.Status)
			if tt.paid != "" {
				require.NotNil(t, next.PaidAmount)
				assert.True(t, next.PaidAmount.Equal(d(tt.paid)), "paid %s", next.PaidAmount)
			}
		})
	}
}

func TestPartialRejectsOutOfRangeAmount(t *testing.T) {
	sent := doc(models.DocumentKindInvoice, models.DocumentStatusSent)

	for _, amount := range []string{"-0.01", "238.01", "1000"} {
		next, err := ApplyTransition(sent, TransitionRequest{To: models.DocumentStatusPartial, PaidAmount: decPtr(amount)})

		var ve *ValidationError
		require.True(t, errors.As(err, &ve), "amount %s: got %v", amount, err)
		assert.Equal(t, "paid_amount", ve.Field)
		assert.Empty(t, next.Status)
		assert.Equal(t, models.DocumentStatusSent, sent.Status)
		assert.Nil(t, sent.PaidAmount)
	}
}

func TestPartialRequiresAmount(t *testing.T) {
	_, err := ApplyTransition(doc(models.DocumentKindInvoice, models.DocumentStatusSent), TransitionRequest{To: models.DocumentStatusPartial})

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "paid_amount", ve.Field)
}

func TestAmountRejectedWhenNotPartOfTransition(t *testing.T) {
	_, err := ApplyTransition(doc(models.DocumentKindQuote, models.DocumentStatusDraft), TransitionRequest{To: models.DocumentStatusSent, PaidAmount: decPtr("1")})

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "paid_amount", ve.Field)
}

func TestApplyTransitionDoesNotMutateInput(t *testing.T) {
	sent := doc(models.DocumentKindInvoice, models.DocumentStatusSent)

	next, err := ApplyTransition(sent, TransitionRequest{To: models.DocumentStatusPaid})
	require.NoError(t, err)

	next.Items[0].Quantity = d("99")
	assert.Equal(t, models.DocumentStatusSent, sent.Status)
	assert.Nil(t, sent.PaidAmount)
	assert.True(t, sent.Items[0].Quantity.Equal(d("2")))
}

func TestQuoteTransitions(t *testing.T) {
	expired := now.Add(-24 * time.Hour)
	valid := now.Add(24 * time.Hour)

	tests := []struct {
		name    string
		doc     models.Document
		to      models.DocumentStatus
		wantErr bool
	}{
		{"draft to sent", doc(models.DocumentKindQuote, models.DocumentStatusDraft), models.DocumentStatusSent, false},
		{"sent to accepted", doc(models.DocumentKindQuote, models.DocumentStatusSent), models.DocumentStatusAccepted, false},
		{"sent to rejected", doc(models.DocumentKindQuote, models.DocumentStatusSent), models.DocumentStatusRejected, false},
		{"draft to expired", withDate(doc(models.DocumentKindQuote, models.DocumentStatusDraft), expired), models.DocumentStatusExpired, false},
		{"sent to expired", withDate(doc(models.DocumentKindQuote, models.DocumentStatusSent), expired), models.DocumentStatusExpired, false},
		{"sent to expired before expiry", withDate(doc(models.DocumentKindQuote, models.DocumentStatusSent), valid), models.DocumentStatusExpired, true},
		{"rejected back to sent", doc(models.DocumentKindQuote, models.DocumentStatusRejected), models.DocumentStatusSent, false},
		{"rejected to accepted", doc(models.DocumentKindQuote, models.DocumentStatusRejected), models.DocumentStatusAccepted, false},
		{"accepted to rejected", doc(models.DocumentKindQuote, models.DocumentStatusAccepted), models.DocumentStatusRejected, false},
		{"expired to sent with new expiry", withDate(doc(models.DocumentKindQuote, models.DocumentStatusExpired), valid), models.DocumentStatusSent, false},
		{"expired to sent with past expiry", withDate(doc(models.DocumentKindQuote, models.DocumentStatusExpired), expired), models.DocumentStatusSent, true},
		{"draft to accepted", doc(models.DocumentKindQuote, models.DocumentStatusDraft), models.DocumentStatusAccepted, true},
		{"accepted to draft", doc(models.DocumentKindQuote, models.DocumentStatusAccepted), models.DocumentStatusDraft, true},
		{"quote to paid", doc(models.DocumentKindQuote, models.DocumentStatusAccepted), models.DocumentStatusPaid, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := ApplyTransition(tt.doc, TransitionRequest{To: tt.to, Now: now})
			if tt.wantErr {
				var te *InvalidTransitionError
				require.True(t, errors.As(err, &te), "got %v", err)
				assert.Equal(t, "quote", te.DocumentType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, next.Status)
		})
	}
}

func TestDeliveryTransitions(t *testing.T) {
	draft := doc(models.DocumentKindDelivery, models.DocumentStatusDraft)

	delivered, err := ApplyTransition(draft, TransitionRequest{To: models.DocumentStatusDelivered})
	require.NoError(t, err)
	invoiced, err := ApplyTransition(delivered, TransitionRequest{To: models.DocumentStatusInvoiced})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusInvoiced, invoiced.Status)

	for _, to := range []models.DocumentStatus{models.DocumentStatusDraft, models.DocumentStatusDelivered} {
		_, err := ApplyTransition(invoiced, TransitionRequest{To: to})

		var te *InvalidTransitionError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "delivery", te.DocumentType)
		assert.Equal(t, "invoiced", te.From)
		assert.Equal(t, string(to), te.To)
	}
	assert.Equal(t, models.DocumentStatusInvoiced, invoiced.Status)

	_, err = ApplyTransition(draft, TransitionRequest{To: models.DocumentStatusInvoiced})
	assert.Error(t, err)
}

func TestLifecycleFor(t *testing.T) {
	lc, err := LifecycleFor(models.DocumentKindInvoice)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusDraft, lc.Initial())
	assert.Len(t, lc.Statuses(), 5)
	assert.True(t, lc.CanTransition(models.DocumentStatusOverdue, models.DocumentStatusPaid))
	assert.False(t, lc.CanTransition(models.DocumentStatusOverdue, models.DocumentStatusPartial))

	_, err = LifecycleFor("receipt")
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestEffectiveStatus(t *testing.T) {
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.Equal(t, models.DocumentStatusOverdue, EffectiveStatus(withDate(doc(models.DocumentKindInvoice, models.DocumentStatusSent), past), now))
	assert.Equal(t, models.DocumentStatusSent, EffectiveStatus(withDate(doc(models.DocumentKindInvoice, models.DocumentStatusSent), future), now))
	assert.Equal(t, models.DocumentStatusPartial, EffectiveStatus(withDate(doc(models.DocumentKindInvoice, models.DocumentStatusPartial), past), now))
	assert.Equal(t, models.DocumentStatusExpired, EffectiveStatus(withDate(doc(models.DocumentKindQuote, models.DocumentStatusSent), past), now))
	assert.Equal(t, models.DocumentStatusAccepted, EffectiveStatus(withDate(doc(models.DocumentKindQuote, models.DocumentStatusAccepted), past), now))
	assert.Equal(t, models.DocumentStatusDraft, EffectiveStatus(doc(models.DocumentKindDelivery, models.DocumentStatusDraft), now))
}

func TestBalanceDue(t *testing.T) {
	inv := doc(models.DocumentKindInvoice, models.DocumentStatusPartial)
	inv.PaidAmount = decPtr("38")

	due, err := BalanceDue(inv)
	require.NoError(t, err)
	require.NotNil(t, due)
	assert.True(t, due.Equal(d("200")))

	due, err = BalanceDue(doc(models.DocumentKindQuote, models.DocumentStatusDraft))
	require.NoError(t, err)
	assert.Nil(t, due)
}

func TestPaidInvoiceKeepsExactTotal(t *testing.T) {
	inv := doc(models.DocumentKindInvoice, models.DocumentStatusSent)
	inv.Items = []models.LineItem{line("1", "9.99", "5.5")}

	paid, err := ApplyTransition(inv, TransitionRequest{To: models.DocumentStatusPaid, Now: now})
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAmount)
	assert.Equal(t, "10.53945", paid.PaidAmount.String())

	// El importe se guarda tal cual y vuelve a validar sin saldo negativo
	stored := paid.Clone()
	restored := decimal.RequireFromString(paid.PaidAmount.String())
	stored.PaidAmount = &restored
	require.NoError(t, ValidateForSave(stored))

	due, err := BalanceDue(stored)
	require.NoError(t, err)
	require.NotNil(t, due)
	assert.True(t, due.IsZero(), "balance %s", due)

	rounded := restored.Round(StoragePlaces)
	stored.PaidAmount = &rounded
	assert.Error(t, ValidateForSave(stored))
}
