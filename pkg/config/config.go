package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración del terminal (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	API     APIConfig
	HTTP    HTTPConfig
	Routes  RoutesConfig
	Session SessionConfig
	JWT     JWTConfig
	Mock    MockConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// APIConfig backend externo al que habla el terminal.
type APIConfig struct {
	BaseURL     string // ej. https://api.tienda.pk/api
	RealtimeURL string // ej. wss://api.tienda.pk/realtime; vacío = derivado de BaseURL
	Timeout     time.Duration
}

// RealtimeEndpoint devuelve RealtimeURL o, si está vacío, BaseURL con esquema ws(s) y sufijo /realtime.
func (c APIConfig) RealtimeEndpoint() string {
	if c.RealtimeURL != "" {
		return c.RealtimeURL
	}
	u := strings.TrimRight(c.BaseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/realtime"
}

// HTTPConfig configuración del shell HTTP local.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RoutesConfig rutas de entrada y rutas públicas del shell.
type RoutesConfig struct {
	Login      string
	AdminEntry string
	Public     []string
}

// SessionConfig parámetros de la sesión.
type SessionConfig struct {
	RefreshInterval time.Duration // 0 = sin refresco periódico
}

// JWTConfig configuración de JWT del backend de desarrollo.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// MockConfig backend de desarrollo (cmd/mockbackend).
type MockConfig struct {
	Port int
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, API_BASE_URL, ROUTE_LOGIN, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return FromViper(v)
}

// FromViper construye la configuración desde una instancia de viper ya cargada.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "inventario-pos"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL:     getString(v, "API_BASE_URL", "http://localhost:8090/api"),
			RealtimeURL: getString(v, "REALTIME_URL", ""),
			Timeout:     time.Duration(getInt(v, "API_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "127.0.0.1"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Routes: RoutesConfig{
			Login:      getString(v, "ROUTE_LOGIN", "/login"),
			AdminEntry: getString(v, "ROUTE_ADMIN_ENTRY", "/admin"),
			Public:     getList(v, "ROUTE_PUBLIC", []string{"/login", "/health", "/forgot-password"}),
		},
		Session: SessionConfig{
			RefreshInterval: time.Duration(getInt(v, "SESSION_REFRESH_MINUTES", 10)) * time.Minute,
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "inventario-pos"),
		},
		Mock: MockConfig{
			Port: getInt(v, "MOCK_HTTP_PORT", 8090),
		},
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("config: API_BASE_URL es obligatorio")
	}
	if !strings.HasPrefix(cfg.Routes.Login, "/") || !strings.HasPrefix(cfg.Routes.AdminEntry, "/") {
		return nil, fmt.Errorf("config: ROUTE_LOGIN y ROUTE_ADMIN_ENTRY deben empezar con /")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

// getList lee una lista separada por comas.
func getList(v *viper.Viper, key string, def []string) []string {
	if !v.IsSet(key) {
		return def
	}
	var out []string
	for _, p := range strings.Split(v.GetString(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
