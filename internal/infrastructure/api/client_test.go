package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/api"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const ownerJSON = `{"id":"u1","email":"owner@store.pk","role":"owner","storeId":"s1"}`

func newServer(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server) *api.Client {
	t.Helper()
	c, err := api.NewClient(api.Config{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second}, logger.Nop())
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// ──────────────────────────────────────────────────────────────────────────────
// Credenciales por cookie
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_CookieDeLogin_SeReenviaEnMe(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{
		"/api/auth/login": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			http.SetCookie(w, &http.Cookie{Name: "pos_session", Value: "tok-1", Path: "/", HttpOnly: true})
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"user":`+ownerJSON+`,"store":{"id":"s1","name":"Demo Store"}}}`)
		},
		"/api/auth/me": func(w http.ResponseWriter, r *http.Request) {
			ck, err := r.Cookie("pos_session")
			if err != nil || ck.Value != "tok-1" {
				writeJSON(w, http.StatusUnauthorized, `{"success":false,"error":"sin sesión"}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"success":true,"data":`+ownerJSON+`}`)
		},
	})
	c := newClient(t, srv)
	ctx := context.Background()

	_, err := c.Me(ctx)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	data, err := c.Login(ctx, dto.LoginRequest{Email: "owner@store.pk", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "owner@store.pk", data.User.Email)
	require.NotNil(t, data.Store)
	assert.Equal(t, "Demo Store", data.Store.Name)

	p, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s1", p.StoreID)
}

func TestClient_CadaPeticionLlevaRequestID(t *testing.T) {
	ids := make(chan string, 2)
	srv := newServer(t, map[string]http.HandlerFunc{
		"/api/auth/refresh": func(w http.ResponseWriter, r *http.Request) {
			ids <- r.Header.Get("X-Request-ID")
			writeJSON(w, http.StatusOK, `{"success":true}`)
		},
	})
	c := newClient(t, srv)

	require.NoError(t, c.Refresh(context.Background()))
	require.NoError(t, c.Refresh(context.Background()))

	first, second := <-ids, <-ids
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

// ──────────────────────────────────────────────────────────────────────────────
// Clasificación de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_Login401ConMensaje_APIErrorQueEnvuelveUnauthorized(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{
		"/api/auth/login": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"success":false,"error":{"code":"INVALID_CREDENTIALS","message":"Invalid credentials"}}`)
		},
	})
	c := newClient(t, srv)

	_, err := c.Login(context.Background(), dto.LoginRequest{Email: "owner@store.pk", Password: "x"})

	require.ErrorIs(t, err, domain.ErrUnauthorized)
	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
	assert.Equal(t, "Invalid credentials", domain.UserMessage(err))
}

func TestClient_401SinCuerpo_ErrUnauthorized(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{
		"/api/auth/me": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	})
	c := newClient(t, srv)

	_, err := c.Me(context.Background())

	require.ErrorIs(t, err, domain.ErrUnauthorized)
	var apiErr *domain.APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_SuccessFalseCon200_APIError(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{
		"/api/store": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"success":false,"error":"Store suspended"}`)
		},
	})
	c := newClient(t, srv)

	_, err := c.Store(context.Background())

	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Store suspended", apiErr.Message)
	assert.False(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestClient_Error500_APIErrorConStatus(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{
		"/api/auth/logout": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	})
	c := newClient(t, srv)

	err := c.Logout(context.Background())

	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestClient_PayloadMalformado(t *testing.T) {
	cases := map[string]string{
		"json roto":      `{"success":true,"data":`,
		"sin data":       `{"success":true}`,
		"usuario sin id": `{"success":true,"data":{"email":"owner@store.pk"}}`,
		"data no objeto": `{"success":true,"data":"u1"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newServer(t, map[string]http.HandlerFunc{
				"/api/auth/me": func(w http.ResponseWriter, r *http.Request) {
					writeJSON(w, http.StatusOK, body)
				},
			})
			c := newClient(t, srv)

			_, err := c.Me(context.Background())
			require.ErrorIs(t, err, domain.ErrMalformedPayload)
		})
	}
}

func TestClient_LoginConTiendaIncompleta_SeDescartaLaTienda(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{
		"/api/auth/login": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"user":`+ownerJSON+`,"store":{"id":"s1"}}}`)
		},
	})
	c := newClient(t, srv)

	data, err := c.Login(context.Background(), dto.LoginRequest{Email: "owner@store.pk", Password: "secret"})

	require.NoError(t, err)
	assert.Nil(t, data.Store)
}

func TestClient_ServidorCaido_ErrTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newClient(t, srv)
	srv.Close()

	_, err := c.Me(context.Background())

	require.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, "no se pudo contactar al servidor", domain.UserMessage(err))
}

func TestClient_ContextoCancelado_ErrTransport(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{
		"/api/auth/me": func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		},
	})
	c := newClient(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Me(ctx)

	require.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewClient_BaseURLInvalida(t *testing.T) {
	_, err := api.NewClient(api.Config{BaseURL: "localhost"}, logger.Nop())
	require.Error(t, err)
}
