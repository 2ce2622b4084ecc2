package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/ports"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

// Verificar en tiempo de compilación que Client implementa AuthAPI.
var _ ports.AuthAPI = (*Client)(nil)

// Rutas del backend.
const (
	pathMe          = "/auth/me"
	pathLogin       = "/auth/login"
	pathRefresh     = "/auth/refresh"
	pathLogout      = "/auth/logout"
	pathAdminLogin  = "/auth/admin-login"
	pathAdminVerify = "/auth/admin-login/verify"
	pathAdminLogout = "/auth/admin-login/logout"
	pathStore       = "/store"

	headerRequestID = "X-Request-ID"
	maxBodyBytes    = 256 * 1024
)

// Config opciones del cliente.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client adaptador HTTP del backend. Lleva un cookie jar propio: las cookies HTTP-only que
// emite el backend se reenvían en cada petición sin que el código las toque.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient construye el cliente. Timeout 0 usa 15 s.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: base URL inválida: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: base URL sin esquema u host: %q", cfg.BaseURL)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("api: crear cookie jar: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout, Jar: jar},
		log:        log.Component("api"),
	}, nil
}

// Me GET /auth/me.
func (c *Client) Me(ctx context.Context) (*entity.Principal, error) {
	return c.principal(ctx, pathMe)
}

// AdminVerify GET /auth/admin-login/verify.
func (c *Client) AdminVerify(ctx context.Context) (*entity.Principal, error) {
	return c.principal(ctx, pathAdminVerify)
}

// Store GET /store.
func (c *Client) Store(ctx context.Context) (*entity.StoreSummary, error) {
	env, err := c.do(ctx, http.MethodGet, pathStore, nil)
	if err != nil {
		return nil, err
	}
	var store entity.StoreSummary
	if err := decodeData(env, &store); err != nil {
		return nil, err
	}
	if !store.Complete() {
		return nil, fmt.Errorf("api: %s sin id/nombre: %w", pathStore, domain.ErrMalformedPayload)
	}
	return &store, nil
}

// Login POST /auth/login.
func (c *Client) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginData, error) {
	return c.login(ctx, pathLogin, in)
}

// AdminLogin POST /auth/admin-login.
func (c *Client) AdminLogin(ctx context.Context, in dto.LoginRequest) (*dto.LoginData, error) {
	return c.login(ctx, pathAdminLogin, in)
}

// Refresh POST /auth/refresh. No hay contrato de cuerpo: solo cuenta el status.
func (c *Client) Refresh(ctx context.Context) error {
	return c.statusOnly(ctx, pathRefresh)
}

// Logout POST /auth/logout.
func (c *Client) Logout(ctx context.Context) error {
	return c.statusOnly(ctx, pathLogout)
}

// AdminLogout POST /auth/admin-login/logout.
func (c *Client) AdminLogout(ctx context.Context) error {
	return c.statusOnly(ctx, pathAdminLogout)
}

func (c *Client) principal(ctx context.Context, path string) (*entity.Principal, error) {
	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var p entity.Principal
	if err := decodeData(env, &p); err != nil {
		return nil, err
	}
	if !p.Complete() {
		return nil, fmt.Errorf("api: %s sin id/email: %w", path, domain.ErrMalformedPayload)
	}
	return &p, nil
}

func (c *Client) login(ctx context.Context, path string, in dto.LoginRequest) (*dto.LoginData, error) {
	env, err := c.do(ctx, http.MethodPost, path, in)
	if err != nil {
		return nil, err
	}
	var data dto.LoginData
	if err := decodeData(env, &data); err != nil {
		return nil, err
	}
	if !data.User.Complete() {
		return nil, fmt.Errorf("api: %s sin usuario: %w", path, domain.ErrMalformedPayload)
	}
	if data.Store != nil && !data.Store.Complete() {
		data.Store = nil
	}
	return &data, nil
}

func (c *Client) statusOnly(ctx context.Context, path string) error {
	_, err := c.send(ctx, http.MethodPost, path, nil)
	return err
}

// do envía la petición y exige un sobre con success:true.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*dto.Envelope, error) {
	raw, err := c.send(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	var env dto.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, path, domain.ErrMalformedPayload)
	}
	if !env.Success {
		return nil, envelopeError(http.StatusOK, &env)
	}
	return &env, nil
}

// send ejecuta la petición y clasifica fallos de red y de status. Devuelve el cuerpo crudo.
func (c *Client) send(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("api: serializar request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	endpoint := c.baseURL.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("api: crear HTTP request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(headerRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("llamada fallida")
		if ctx.Err() != nil {
			return nil, fmt.Errorf("api: %s %s: timeout o cancelación: %w", method, path, errors.Join(domain.ErrTransport, ctx.Err()))
		}
		return nil, fmt.Errorf("api: %s %s: %w: %v", method, path, domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: leer respuesta: %w: %v", method, path, domain.ErrTransport, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Dur("elapsed", time.Since(started)).
		Msg("llamada al backend")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(method, path, resp.StatusCode, raw)
	}
	return raw, nil
}

func statusError(method, path string, status int, raw []byte) error {
	unauthorized := status == http.StatusUnauthorized || status == http.StatusForbidden
	var env dto.Envelope
	if err := json.Unmarshal(raw, &env); err == nil && (env.Error != nil || env.Message != "") {
		apiErr := envelopeError(status, &env)
		if unauthorized {
			apiErr.Err = domain.ErrUnauthorized
		}
		return apiErr
	}
	if unauthorized {
		return fmt.Errorf("api: %s %s: HTTP %d: %w", method, path, status, domain.ErrUnauthorized)
	}
	return &domain.APIError{Status: status, Code: "HTTP", Message: http.StatusText(status)}
}

func envelopeError(status int, env *dto.Envelope) *domain.APIError {
	apiErr := &domain.APIError{Status: status, Message: env.Message}
	if env.Error != nil {
		apiErr.Code = env.Error.Code
		if env.Error.Message != "" {
			apiErr.Message = env.Error.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = "operación rechazada por el backend"
	}
	return apiErr
}

func decodeData(env *dto.Envelope, out any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("api: sobre sin data: %w", domain.ErrMalformedPayload)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("api: decodificar data: %w", domain.ErrMalformedPayload)
	}
	return nil
}
