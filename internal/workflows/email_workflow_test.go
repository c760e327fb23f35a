package workflows

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []inngestgo.Event
}

func (p *recordingPublisher) Send(_ context.Context, event inngestgo.Event) error {
	p.events = append(p.events, event)
	return nil
}

func TestEventNotifierPublishesDocumentSent(t *testing.T) {
	publisher := &recordingPublisher{}
	notifier := NewEventNotifier(publisher)

	email := "billing@atlas.dz"
	doc := &models.Document{
		ID:             uuid.New(),
		Kind:           models.DocumentKindInvoice,
		DocumentNumber: "FAC-000007",
		Status:         models.DocumentStatusSent,
	}
	customer := &models.Customer{ID: uuid.New(), CompanyName: "Atlas", Email: &email}
	totals := models.Totals{Total: decimal.RequireFromString("238.00")}

	require.NoError(t, notifier.SendDocument(context.Background(), doc, customer, totals))
	require.Len(t, publisher.events, 1)

	event := publisher.events[0]
	assert.Equal(t, DocumentSentEventName, event.Name)

	// El payload debe poder decodificarse como lo entrega Inngest
	raw, err := json.Marshal(map[string]any{"name": event.Name, "data": event.Data})
	require.NoError(t, err)

	var decoded DocumentSentEvent
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, doc.ID, decoded.Data.Document.ID)
	assert.Equal(t, "FAC-000007", decoded.Data.Document.DocumentNumber)
	assert.Equal(t, "billing@atlas.dz", *decoded.Data.Customer.Email)
	assert.True(t, totals.Total.Equal(decoded.Data.Totals.Total))
}
