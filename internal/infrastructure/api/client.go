// Package api implementa la fábrica de clientes HTTP hacia el backend REST
// de Vallmark: base URL desde configuración, credencial Bearer opcional,
// cuerpos JSON (salvo el intercambio de credenciales, que va form-encoded)
// y parseo del sobre uniforme de respuesta.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vallmark/storefront-client/internal/apierror"
	"github.com/vallmark/storefront-client/pkg/logger"
)

// maxBodyBytes límite de lectura del cuerpo de respuesta.
const maxBodyBytes = 1 << 20

// TokenSource provee el token Bearer vigente. Una cadena vacía significa
// "sin sesión"; la fábrica nunca muta el estado de sesión.
type TokenSource interface {
	Token() string
}

// StaticToken TokenSource de valor fijo (tests y llamadas puntuales).
type StaticToken string

// Token implementa TokenSource.
func (s StaticToken) Token() string { return string(s) }

// Config opciones de la fábrica de clientes.
type Config struct {
	BaseURL string        // origen absoluto; sin barra final
	Timeout time.Duration // timeout de red; 0 usa 15 s
}

// Client sender de peticiones ligado a una base URL y, opcionalmente, a una
// fuente de token. Usa net/http; seguro para uso concurrente.
type Client struct {
	baseURL string
	hc      *http.Client
	tokens  TokenSource
	log     *logger.Logger
}

// New construye el cliente. tokens puede ser nil para un cliente sin credenciales.
func New(cfg Config, tokens TokenSource, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

// WithTokenSource devuelve una copia del cliente ligada a otra fuente de token.
func (c *Client) WithTokenSource(tokens TokenSource) *Client {
	clone := *c
	clone.tokens = tokens
	return &clone
}

// BaseURL devuelve el origen configurado.
func (c *Client) BaseURL() string { return c.baseURL }

// Request envía una petición sin credenciales. body se serializa como JSON
// si no es nil; query se añade a la URL.
func (c *Client) Request(ctx context.Context, method, path string, body any, query url.Values) (*Envelope, error) {
	return c.do(ctx, method, path, body, query, "")
}

// AuthenticatedRequest envía una petición con Authorization: Bearer <token>.
// Sin token vigente devuelve un error unauthorized sin tocar la red; un 401
// del backend se devuelve hacia arriba para que el Session Store se limpie.
func (c *Client) AuthenticatedRequest(ctx context.Context, method, path string, body any, query url.Values) (*Envelope, error) {
	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	if token == "" {
		return nil, apierror.New(apierror.KindUnauthorized, 0, "sin token de sesión")
	}
	return c.do(ctx, method, path, body, query, token)
}

// FormRequest envía un POST form-encoded. Solo el intercambio de credenciales
// (POST /api/auth/login) usa este formato; todo lo demás viaja como JSON.
func (c *Client) FormRequest(ctx context.Context, path string, form url.Values) (*Envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path, nil), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("api: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req)
}

// Ping hace un GET sin credenciales y devuelve solo el código HTTP, sin
// exigir el sobre uniforme (el panel de diagnóstico mide alcanzabilidad,
// no contratos).
func (c *Client) Ping(ctx context.Context, path string, query url.Values) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path, query), nil)
	if err != nil {
		return 0, fmt.Errorf("api: crear HTTP request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())
	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, apierror.Network(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	return resp.StatusCode, nil
}

func (c *Client) buildURL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, path string, body any, query url.Values, token string) (*Envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: serializar request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("api: crear HTTP request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.send(req)
}

func (c *Client) send(req *http.Request) (*Envelope, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.hc.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return nil, apierror.Network(req.Context().Err())
		}
		return nil, apierror.Network(err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apierror.Network(fmt.Errorf("leer respuesta: %w", err))
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Msg("respuesta del backend")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apierror.FromStatus(resp.StatusCode, failureMessage(rawBody, resp.StatusCode), rawBody)
	}

	var env Envelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		return nil, apierror.New(apierror.KindUnknown, resp.StatusCode, "respuesta no es el sobre esperado: "+err.Error())
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "el backend reportó success=false"
		}
		return nil, &apierror.Error{Kind: apierror.KindUnknown, Status: resp.StatusCode, Message: msg, Raw: rawBody}
	}
	return &env, nil
}

// failureMessage extrae un mensaje legible del cuerpo de error: message del
// sobre, detail (estilo FastAPI) o un texto genérico con el código.
func failureMessage(raw []byte, status int) string {
	var probe struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil {
		if probe.Message != "" {
			return probe.Message
		}
		var detail string
		if len(probe.Detail) > 0 && json.Unmarshal(probe.Detail, &detail) == nil && detail != "" {
			return detail
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}
