package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-pos/pkg/config"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := config.FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "http://localhost:8090/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr())
	assert.Equal(t, "/login", cfg.Routes.Login)
	assert.Equal(t, "/admin", cfg.Routes.AdminEntry)
	assert.Equal(t, []string{"/login", "/health", "/forgot-password"}, cfg.Routes.Public)
	assert.Equal(t, 10*time.Minute, cfg.Session.RefreshInterval)
	assert.Equal(t, 8090, cfg.Mock.Port)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("API_BASE_URL", "https://api.tienda.pk/api")
	v.Set("HTTP_PORT", "9000")
	v.Set("ROUTE_PUBLIC", " /login , /status,,")
	v.Set("SESSION_REFRESH_MINUTES", 0)
	v.Set("API_TIMEOUT_SECONDS", "no-es-numero")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, []string{"/login", "/status"}, cfg.Routes.Public)
	assert.Equal(t, time.Duration(0), cfg.Session.RefreshInterval)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout, "valor no numérico usa el default")
}

func TestFromViper_RutaSinBarra_Error(t *testing.T) {
	v := viper.New()
	v.Set("ROUTE_LOGIN", "login")

	_, err := config.FromViper(v)
	assert.Error(t, err)
}

func TestRealtimeEndpoint(t *testing.T) {
	cases := []struct {
		api  config.APIConfig
		want string
	}{
		{config.APIConfig{BaseURL: "https://api.tienda.pk/api"}, "wss://api.tienda.pk/api/realtime"},
		{config.APIConfig{BaseURL: "http://localhost:8090/api/"}, "ws://localhost:8090/api/realtime"},
		{config.APIConfig{BaseURL: "http://x/api", RealtimeURL: "wss://rt.tienda.pk/ws"}, "wss://rt.tienda.pk/ws"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.api.RealtimeEndpoint())
	}
}
