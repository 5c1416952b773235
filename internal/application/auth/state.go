package auth

// State variante etiquetada del flujo de login/recuperación. Cada estado
// carga solo los datos que su paso necesita; no hay campos sueltos tipo
// "loginStep" como strings.
type State interface{ isState() }

// StateIdentifier paso inicial: el usuario escribe email o teléfono.
// Notice lleva el aviso de éxito al volver de una recuperación de contraseña.
type StateIdentifier struct {
	Notice string
}

// StateSubmitting hay una petición de autenticación en vuelo. From conserva
// el estado que la originó para volver a él si el backend rechaza.
type StateSubmitting struct {
	From State
}

// StatePassword el identificador fue clasificado como email; falta la contraseña.
type StatePassword struct {
	Identifier string
}

// StateOTP el identificador fue clasificado como teléfono; el OTP ya fue enviado.
type StateOTP struct {
	Phone string
}

// StateDone camino de aceptación: sesión adoptada y redirección efectuada.
type StateDone struct{}

// StateResetEmail primer paso de recuperación: pedir el email.
type StateResetEmail struct{}

// StateResetCode el backend envió el código; este paso solo lo almacena
// localmente, sin llamada de red (la legalidad se verifica al confirmar).
type StateResetCode struct {
	Email string
}

// StateResetPassword último paso: nueva contraseña con el código ya staged.
type StateResetPassword struct {
	Email string
	Code  string
}

func (StateIdentifier) isState()    {}
func (StateSubmitting) isState()    {}
func (StatePassword) isState()      {}
func (StateOTP) isState()           {}
func (StateDone) isState()          {}
func (StateResetEmail) isState()    {}
func (StateResetCode) isState()     {}
func (StateResetPassword) isState() {}
