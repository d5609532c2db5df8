package domain

import (
	"errors"
	"fmt"
)

// Errores tipados del dominio. La capa HTTP decide el status por el tipo
// del error (errors.As), nunca inspeccionando substrings del mensaje.

// ValidationError entrada corregible por el cliente (campo faltante, stock
// insuficiente, referencia desconocida, folio duplicado...).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validationf construye un ValidationError con formato.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError el recurso referenciado no existe.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " no encontrado"
	}
	return fmt.Sprintf("%s no encontrado: %s", e.Entity, e.ID)
}

// NotFound construye un NotFoundError.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError conflicto con el estado actual (ej. folio duplicado detectado
// por el constraint único al confirmar la transacción).
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// Conflictf construye un ConflictError con formato.
func Conflictf(format string, args ...any) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// ForbiddenError el usuario no tiene la capacidad requerida.
type ForbiddenError struct {
	Action string
}

func (e *ForbiddenError) Error() string {
	return "acceso denegado: " + e.Action
}

// Forbidden construye un ForbiddenError.
func Forbidden(action string) error {
	return &ForbiddenError{Action: action}
}

// ErrUnauthorized credenciales inválidas en login.
var ErrUnauthorized = errors.New("no autorizado")

// IsValidation reporta si err es un error de validación.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reporta si err es un error de recurso no encontrado.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reporta si err es un conflicto.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsForbidden reporta si err es un acceso denegado.
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}
