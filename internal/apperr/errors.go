// Package apperr defines the error taxonomy shared by the store, the payload
// layer and the HTTP handlers.
package apperr

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends a message for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Has reports whether field already carries a message.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// Empty reports whether no field carries a message.
func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

// OrNil returns e when it carries messages, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldError is a shortcut for a ValidationError with a single message.
func FieldError(field, msg string) *ValidationError {
	e := NewValidationError()
	e.Add(field, msg)
	return e
}

// NotFoundError reports a missing record.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

// ConflictError reports a uniqueness violation on Field.
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Resource, e.Field, e.Value)
}

// Message is the client-facing text for the conflicting field.
func (e *ConflictError) Message() string {
	return fmt.Sprintf("%s com este %s já existe.", e.Resource, e.Field)
}

// AuthError reports missing credentials (401) or insufficient permissions (403).
type AuthError struct {
	Forbidden bool
	Detail    string
}

func (e *AuthError) Error() string { return e.Detail }

var (
	ErrNotAuthenticated = &AuthError{Detail: "As credenciais de autenticação não foram fornecidas."}
	ErrInvalidSession   = &AuthError{Detail: "Token inválido ou expirado."}
	ErrBadCredentials   = &AuthError{Detail: "Usuário ou senha inválidos."}
	ErrForbidden        = &AuthError{Forbidden: true, Detail: "Você não tem permissão para executar essa ação."}
)

// UploadError reports a rejected upload request.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string { return e.Message }

// ErrNoFile is returned when the multipart body has no "file" part.
var ErrNoFile = &UploadError{Message: "Nenhum arquivo enviado."}
