package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vallmark/storefront-client/internal/application/dto"
	"github.com/vallmark/storefront-client/internal/domain"
)

// validate instancia compartida; validator.Validate es seguro para uso concurrente.
var validate = validator.New()

var (
	nonDigitRe = regexp.MustCompile(`\D`)
	upperRe    = regexp.MustCompile(`[A-Z]`)
	digitRe    = regexp.MustCompile(`[0-9]`)
	specialRe  = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// ValidateRegistration aplica las reglas del formulario de registro:
// email con forma estándar, teléfono (si viene) de diez dígitos tras quitar
// no-dígitos, username ≥ 3, contraseña ≥ 8 con mayúscula y dígito, y
// confirmación igual. Devuelve las advertencias consultivas (carácter
// especial) aparte: no bloquean el envío.
func ValidateRegistration(req dto.RegisterRequest) (advisories []string, err error) {
	if verr := validate.Struct(req); verr != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, registerFieldMessage(verr))
	}
	if req.Phone != "" {
		digits := nonDigitRe.ReplaceAllString(req.Phone, "")
		if len(digits) != 10 {
			return nil, fmt.Errorf("%w: el teléfono debe tener diez dígitos", domain.ErrInvalidInput)
		}
	}
	if !upperRe.MatchString(req.Password) {
		return nil, fmt.Errorf("%w: la contraseña necesita al menos una mayúscula", domain.ErrInvalidInput)
	}
	if !digitRe.MatchString(req.Password) {
		return nil, fmt.Errorf("%w: la contraseña necesita al menos un dígito", domain.ErrInvalidInput)
	}
	if !specialRe.MatchString(req.Password) {
		advisories = append(advisories, "se recomienda incluir un carácter especial en la contraseña")
	}
	return advisories, nil
}

// registerFieldMessage traduce el primer error de campo del validator a un
// mensaje corto para el formulario.
func registerFieldMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch {
	case fe.Field() == "Email":
		return "email inválido"
	case fe.Field() == "Username":
		return "el username debe tener al menos 3 caracteres"
	case fe.Field() == "Password":
		return "la contraseña debe tener al menos 8 caracteres"
	case fe.Field() == "ConfirmPassword":
		return "la confirmación no coincide con la contraseña"
	default:
		return strings.ToLower(fe.Field()) + " es requerido"
	}
}

// Register valida, registra vía POST /api/auth/register y, en éxito, corre el
// camino de login email/contraseña con las mismas credenciales para adoptar
// la sesión de inmediato. Las advertencias consultivas se devuelven al
// formulario sin bloquear.
func (c *Controller) Register(ctx context.Context, req dto.RegisterRequest) (advisories []string, err error) {
	advisories, err = ValidateRegistration(req)
	if err != nil {
		return nil, err
	}
	if !c.begin(StateIdentifier{}) {
		return advisories, domain.ErrRequestInFlight
	}

	body := req
	if body.Phone != "" {
		body.Phone = nonDigitRe.ReplaceAllString(body.Phone, "")
	}
	if _, err := c.client.Request(ctx, "POST", "/api/auth/register", body, nil); err != nil {
		c.fail(StateIdentifier{}, err)
		return advisories, err
	}

	// Auto-login post-registro por el camino email/contraseña.
	form := url.Values{}
	form.Set("username", req.Email)
	form.Set("password", req.Password)
	env, err := c.client.FormRequest(ctx, "/api/auth/login", form)
	if err != nil {
		c.fail(StatePassword{Identifier: req.Email}, err)
		return advisories, err
	}
	c.finishLogin(env, StatePassword{Identifier: req.Email})
	return advisories, nil
}
