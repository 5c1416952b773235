package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrNotAuthenticated  = errors.New("sesión no iniciada")
	ErrRequestInFlight   = errors.New("ya hay una petición en curso")
	ErrControllerClosed  = errors.New("el controlador fue cerrado")
	ErrInvalidTransition = errors.New("evento no válido para el estado actual")
)
