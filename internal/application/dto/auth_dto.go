package dto

import "github.com/vallmark/storefront-client/internal/domain/entity"

// LoginType clasificación del identificador de login.
type LoginType string

const (
	LoginTypeEmail LoginType = "email"
	LoginTypePhone LoginType = "phone"
)

// DetectLoginRequest entrada de POST /api/auth/login/detect.
type DetectLoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

// DetectLoginResponse salida de la detección: email o phone y qué credencial exige.
type DetectLoginResponse struct {
	LoginType  LoginType `json:"login_type"`
	Identifier string    `json:"identifier"`
	Requires   string    `json:"requires"`
}

// LoginResult salida de ambos caminos de login: token opaco + snapshot de usuario.
type LoginResult struct {
	AccessToken string      `json:"access_token"`
	User        entity.User `json:"user"`
}

// SendOTPRequest entrada de POST /api/otp/send.
type SendOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
}

// MobileLoginRequest entrada de POST /api/auth/login/mobile.
type MobileLoginRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	OTP         string `json:"otp" validate:"required"`
}

// RegisterRequest entrada de POST /api/auth/register (dos pasos en la UI,
// un solo envío al backend). La regla de carácter especial en la contraseña
// es consultiva: se reporta pero no bloquea (ver auth.ValidateRegistration).
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone,omitempty" validate:"omitempty"`
	FullName        string `json:"full_name" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// ResetRequest entrada de POST /api/auth/password/reset-request.
type ResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetConfirmRequest entrada de POST /api/auth/password/reset-confirm.
// El código solo se verifica aquí; el paso intermedio no toca la red.
type ResetConfirmRequest struct {
	Email       string `json:"email" validate:"required,email"`
	ResetCode   string `json:"reset_code" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// SetupPasswordRequest entrada de POST /api/auth/profile/setup-password
// (usuarios sin contraseña o marcados needs_password_setup).
type SetupPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// ChangePasswordRequest entrada de PUT /api/auth/profile/password.
// El contrato vigente del backend recibe estos campos como query parameters,
// no como cuerpo JSON.
type ChangePasswordRequest struct {
	CurrentPassword string `validate:"required"`
	NewPassword     string `validate:"required,min=8"`
	ConfirmPassword string `validate:"required,eqfield=NewPassword"`
}

// UpdateEmailRequest entrada de PUT /api/auth/profile/email. Password se
// exige solo cuando el usuario ya tiene contraseña.
type UpdateEmailRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password,omitempty"`
}
