// Package apierror define la superficie de error uniforme del cliente HTTP.
// Todo fallo de transporte o respuesta no-2xx del backend se normaliza aquí
// para que los controladores decidan por clase y no por código de estado.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind clase de error (conjunto cerrado).
type Kind string

const (
	KindNetwork      Kind = "network"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "notFound"
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindServer       Kind = "server"
	KindUnknown      Kind = "unknown"
)

// Error error normalizado del backend. Status es 0 para fallos de transporte.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Raw     json.RawMessage // cuerpo original, para el canal de diagnóstico
}

// Error implementa el interface error.
func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api: %s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
}

// New construye un error con clase y mensaje explícitos.
func New(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

// Network envuelve un fallo de transporte (DNS, conexión, timeout, contexto cancelado).
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: err.Error()}
}

// FromStatus mapea un código HTTP no-2xx a su clase.
func FromStatus(status int, message string, raw []byte) *Error {
	var kind Kind
	switch {
	case status == http.StatusUnauthorized:
		kind = KindUnauthorized
	case status == http.StatusForbidden:
		kind = KindForbidden
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		kind = KindValidation
	case status == http.StatusConflict:
		kind = KindConflict
	case status >= 500:
		kind = KindServer
	default:
		kind = KindUnknown
	}
	return &Error{Kind: kind, Status: status, Message: message, Raw: raw}
}

// KindOf devuelve la clase del error, o KindUnknown si no es un *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// IsUnauthorized indica si el error es de clase unauthorized (401).
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// Human devuelve el mensaje corto apto para mostrar junto al control que
// disparó la llamada; el detalle completo va al canal de diagnóstico.
func Human(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
