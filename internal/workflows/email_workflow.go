package workflows

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
	"github.com/sirupsen/logrus"
)

// DocumentSentEventName es el evento publicado cuando un documento pasa a enviado
const DocumentSentEventName = "vyzo/document.sent"

// DocumentSender entrega el aviso de documento al cliente
type DocumentSender interface {
	SendDocument(ctx context.Context, doc *models.Document, customer *models.Customer, totals models.Totals) error
}

// DocumentSentData es el payload del evento
type DocumentSentData struct {
	Document models.Document `json:"document"`
	Customer models.Customer `json:"customer"`
	Totals   models.Totals   `json:"totals"`
}

// DocumentSentEvent es el evento tal como lo entrega Inngest
type DocumentSentEvent struct {
	Name string           `json:"name"`
	Data DocumentSentData `json:"data"`
}

// EventPublisher publica eventos en Inngest
type EventPublisher interface {
	Send(ctx context.Context, event inngestgo.Event) error
}

// EventNotifier encola el envío del email como evento en lugar de enviarlo en el request
type EventNotifier struct {
	publisher EventPublisher
}

// NewEventNotifier crea un notificador respaldado por eventos
func NewEventNotifier(publisher EventPublisher) *EventNotifier {
	return &EventNotifier{publisher: publisher}
}

// SendDocument publica el evento de documento enviado
func (n *EventNotifier) SendDocument(ctx context.Context, doc *models.Document, customer *models.Customer, totals models.Totals) error {
	data, err := eventData(DocumentSentData{Document: *doc, Customer: *customer, Totals: totals})
	if err != nil {
		return err
	}
	return n.publisher.Send(ctx, inngestgo.Event{Name: DocumentSentEventName, Data: data})
}

// DocumentEmailWorkflow envía el email de documento con reintentos de Inngest
type DocumentEmailWorkflow struct {
	sender DocumentSender
	logger *logrus.Logger
}

// NewDocumentEmailWorkflow crea una nueva instancia del workflow
func NewDocumentEmailWorkflow(sender DocumentSender, logger *logrus.Logger) *DocumentEmailWorkflow {
	return &DocumentEmailWorkflow{
		sender: sender,
		logger: logger,
	}
}

// Register crea la función disparada por el evento en el cliente
func (w *DocumentEmailWorkflow) Register(client inngestgo.Client) error {
	_, err := inngestgo.CreateFunction(
		client,
		inngestgo.FunctionOpts{ID: "document-sent-email", Name: "Send document email"},
		inngestgo.EventTrigger(DocumentSentEventName, nil),
		w.Run,
	)
	return err
}

// Run envía el email del documento
func (w *DocumentEmailWorkflow) Run(ctx context.Context, input inngestgo.Input[DocumentSentData]) (any, error) {
	data := input.Event.Data

	_, err := step.Run(ctx, "send-email", func(ctx context.Context) (bool, error) {
		if err := w.sender.SendDocument(ctx, &data.Document, &data.Customer, data.Totals); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		w.logger.WithError(err).WithField("document_id", data.Document.ID).Error("Document email failed")
		return nil, err
	}

	return map[string]any{"document_id": data.Document.ID}, nil
}

func eventData(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error encoding event data: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("error decoding event data: %w", err)
	}
	return data, nil
}
