// Package commerce contiene las reglas de cálculo y ciclo de vida de los documentos
// comerciales. No realiza I/O: opera sobre valores entregados por el llamante.
package commerce

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError indica un valor de entrada inválido
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError indica un cambio de estado fuera de la tabla del tipo de documento
type InvalidTransitionError struct {
	DocumentType string
	From         string
	To           string
	Reason       string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("invalid %s transition from %q to %q", e.DocumentType, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// ConversionError indica que no se cumplen las precondiciones de la conversión
type ConversionError struct {
	QuoteID uuid.UUID
	Reason  string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert quote %s: %s", e.QuoteID, e.Reason)
}

// NotFoundError indica que la entidad referenciada no existe
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// ConflictError indica una escritura rechazada por versión obsoleta
type ConflictError struct {
	Entity string
	ID     string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s conflict: %s", e.Entity, e.ID, e.Reason)
}

// NewNotFoundError crea un NotFoundError
func NewNotFoundError(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: fmt.Sprint(id)}
}

// NewConflictError crea un ConflictError
func NewConflictError(entity string, id any, reason string) error {
	return &ConflictError{Entity: entity, ID: fmt.Sprint(id), Reason: reason}
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
