package commerce

import (
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/shopspring/decimal"
)

// TransitionRequest representa un cambio de estado con su payload
type TransitionRequest struct {
	To         models.DocumentStatus
	PaidAmount *decimal.Decimal
	Now        time.Time
}

// Lifecycle describe los estados y transiciones de un tipo de documento
type Lifecycle interface {
	Kind() models.DocumentKind
	Initial() models.DocumentStatus
	Statuses() []models.DocumentStatus
	CanTransition(from, to models.DocumentStatus) bool

	find(from, to models.DocumentStatus) (rule, bool)
}

type guardFunc func(doc models.Document, req TransitionRequest, totals models.Totals) error
type effectFunc func(doc *models.Document, req TransitionRequest, totals models.Totals)

// rule es una fila de la tabla de transiciones; from vacío acepta cualquier estado
type rule struct {
	from          []models.DocumentStatus
	to            models.DocumentStatus
	acceptsAmount bool
	guard         guardFunc
	effect        effectFunc
}

func (r rule) matches(from, to models.DocumentStatus) bool {
	if r.to != to {
		return false
	}
	if len(r.from) == 0 {
		return true
	}
	for _, s := range r.from {
		if s == from {
			return true
		}
	}
	return false
}

type table struct {
	kind     models.DocumentKind
	initial  models.DocumentStatus
	statuses []models.DocumentStatus
	rules    []rule
}

func (t *table) Kind() models.DocumentKind      { return t.kind }
func (t *table) Initial() models.DocumentStatus { return t.initial }
func (t *table) Statuses() []models.DocumentStatus {
	out := make([]models.DocumentStatus, len(t.statuses))
	copy(out, t.statuses)
	return out
}

func (t *table) has(status models.DocumentStatus) bool {
	for _, s := range t.statuses {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition indica si la tabla contiene el par origen→destino, sin evaluar guardas
func (t *table) CanTransition(from, to models.DocumentStatus) bool {
	_, ok := t.find(from, to)
	return ok
}

func (t *table) find(from, to models.DocumentStatus) (rule, bool) {
	if !t.has(from) || !t.has(to) {
		return rule{}, false
	}
	for _, r := range t.rules {
		if r.matches(from, to) {
			return r, true
		}
	}
	return rule{}, false
}

var quoteLifecycle = &table{
	kind:    models.DocumentKindQuote,
	initial: models.DocumentStatusDraft,
	statuses: []models.DocumentStatus{
		models.DocumentStatusDraft,
		models.DocumentStatusSent,
		models.DocumentStatusAccepted,
		models.DocumentStatusRejected,
		models.DocumentStatusExpired,
	},
	rules: []rule{
		{from: statuses(models.DocumentStatusDraft), to: models.DocumentStatusSent},
		{from: statuses(models.DocumentStatusSent), to: models.DocumentStatusAccepted},
		{from: statuses(models.DocumentStatusSent), to: models.DocumentStatusRejected},
		{
			from:  statuses(models.DocumentStatusDraft, models.DocumentStatusSent),
			to:    models.DocumentStatusExpired,
			guard: requirePastSecondaryDate,
		},
		// correcciones de una decisión ya registrada
		{from: statuses(models.DocumentStatusRejected), to: models.DocumentStatusSent},
		{from: statuses(models.DocumentStatusRejected), to: models.DocumentStatusAccepted},
		{from: statuses(models.DocumentStatusAccepted), to: models.DocumentStatusRejected},
		{
			from:  statuses(models.DocumentStatusExpired),
			to:    models.DocumentStatusSent,
			guard: requireFutureSecondaryDate,
		},
	},
}

var invoiceLifecycle = &table{
	kind:    models.DocumentKindInvoice,
	initial: models.DocumentStatusDraft,
	statuses: []models.DocumentStatus{
		models.DocumentStatusDraft,
		models.DocumentStatusSent,
		models.DocumentStatusPaid,
		models.DocumentStatusPartial,
		models.DocumentStatusOverdue,
	},
	rules: []rule{
		{from: statuses(models.DocumentStatusDraft), to: models.DocumentStatusSent},
		{
			from:          statuses(models.DocumentStatusSent, models.DocumentStatusPaid, models.DocumentStatusPartial),
			to:            models.DocumentStatusPartial,
			acceptsAmount: true,
			guard:         requirePaidAmount,
			effect: func(doc *models.Document, req TransitionRequest, _ models.Totals) {
				amount := *req.PaidAmount
				doc.PaidAmount = &amount
			},
		},
		{
			from:  statuses(models.DocumentStatusSent),
			to:    models.DocumentStatusOverdue,
			guard: requirePastSecondaryDate,
		},
		{
			to: models.DocumentStatusPaid,
			effect: func(doc *models.Document, _ TransitionRequest, totals models.Totals) {
				total := totals.Total
				doc.PaidAmount = &total
			},
		},
	},
}

var deliveryLifecycle = &table{
	kind:    models.DocumentKindDelivery,
	initial: models.DocumentStatusDraft,
	statuses: []models.DocumentStatus{
		models.DocumentStatusDraft,
		models.DocumentStatusDelivered,
		models.DocumentStatusInvoiced,
	},
	rules: []rule{
		{from: statuses(models.DocumentStatusDraft), to: models.DocumentStatusDelivered},
		{from: statuses(models.DocumentStatusDelivered), to: models.DocumentStatusInvoiced},
	},
}

func statuses(s ...models.DocumentStatus) []models.DocumentStatus { return s }

// LifecycleFor retorna la tabla de transiciones del tipo de documento
func LifecycleFor(kind models.DocumentKind) (Lifecycle, error) {
	switch kind {
	case models.DocumentKindQuote:
		return quoteLifecycle, nil
	case models.DocumentKindInvoice:
		return invoiceLifecycle, nil
	case models.DocumentKindDelivery:
		return deliveryLifecycle, nil
	}
	return nil, invalid("kind", "unknown document kind %q", kind)
}

// ApplyTransition valida el cambio de estado y retorna una copia del documento con
// el nuevo estado y su payload aplicados. El documento recibido no se modifica.
func ApplyTransition(doc models.Document, req TransitionRequest) (models.Document, error) {
	lc, err := LifecycleFor(doc.Kind)
	if err != nil {
		return models.Document{}, err
	}

	r, ok := lc.find(doc.Status, req.To)
	if !ok {
		return models.Document{}, &InvalidTransitionError{
			DocumentType: string(doc.Kind),
			From:         string(doc.Status),
			To:           string(req.To),
		}
	}

	if req.PaidAmount != nil && !r.acceptsAmount {
		return models.Document{}, invalid("paid_amount", "not accepted when moving %s to %q", doc.Kind, req.To)
	}

	totals, err := ComputeTotals(doc.Items)
	if err != nil {
		return models.Document{}, err
	}

	if r.guard != nil {
		if err := r.guard(doc, req, totals); err != nil {
			return models.Document{}, err
		}
	}

	next := doc.Clone()
	if r.effect != nil {
		r.effect(&next, req, totals)
	}
	next.Status = req.To
	return next, nil
}

// EffectiveStatus retorna el estado a mostrar: una factura enviada con vencimiento
// pasado se muestra como overdue y un presupuesto abierto con validez pasada como expired.
func EffectiveStatus(doc models.Document, now time.Time) models.DocumentStatus {
	if doc.SecondaryDate == nil || !now.After(*doc.SecondaryDate) {
		return doc.Status
	}
	switch doc.Kind {
	case models.DocumentKindInvoice:
		if doc.Status == models.DocumentStatusSent {
			return models.DocumentStatusOverdue
		}
	case models.DocumentKindQuote:
		if doc.Status == models.DocumentStatusDraft || doc.Status == models.DocumentStatusSent {
			return models.DocumentStatusExpired
		}
	}
	return doc.Status
}

// BalanceDue retorna el saldo pendiente de una factura; nil para otros tipos
func BalanceDue(doc models.Document) (*decimal.Decimal, error) {
	if doc.Kind != models.DocumentKindInvoice {
		return nil, nil
	}
	totals, err := ComputeTotals(doc.Items)
	if err != nil {
		return nil, err
	}
	paid := decimal.Zero
	if doc.PaidAmount != nil {
		paid = *doc.PaidAmount
	}
	due := totals.Total.Sub(paid)
	return &due, nil
}

func requirePaidAmount(doc models.Document, req TransitionRequest, totals models.Totals) error {
	if req.PaidAmount == nil {
		return invalid("paid_amount", "is required when moving %s to %q", doc.Kind, req.To)
	}
	return checkPaidAmount(*req.PaidAmount, totals.Total)
}

func requirePastSecondaryDate(doc models.Document, req TransitionRequest, _ models.Totals) error {
	if doc.SecondaryDate == nil || !req.Now.After(*doc.SecondaryDate) {
		return &InvalidTransitionError{
			DocumentType: string(doc.Kind),
			From:         string(doc.Status),
			To:           string(req.To),
			Reason:       doc.Kind.SecondaryDateName() + " has not passed",
		}
	}
	return nil
}

func requireFutureSecondaryDate(doc models.Document, req TransitionRequest, _ models.Totals) error {
	if doc.SecondaryDate != nil && req.Now.After(*doc.SecondaryDate) {
		return &InvalidTransitionError{
			DocumentType: string(doc.Kind),
			From:         string(doc.Status),
			To:           string(req.To),
			Reason:       doc.Kind.SecondaryDateName() + " is in the past",
		}
	}
	return nil
}
