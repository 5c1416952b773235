package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración del cliente (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	Backend BackendConfig
	Session SessionConfig
	Diag    DiagConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// IsProduction indica si la app corre en producción (suprime el panel de diagnóstico).
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// BackendConfig ubicación y tiempos del backend REST de Vallmark.
type BackendConfig struct {
	URL            string // origen absoluto, ej. https://api.vallmark.com
	TimeoutSeconds int
}

// SessionConfig persistencia del token de sesión.
type SessionConfig struct {
	TokenPath string // ruta del archivo que guarda la clave access_token
}

// DiagConfig servidor local de diagnóstico (solo fuera de producción).
type DiagConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha del panel de diagnóstico (host:port).
func (d DiagConfig) Addr() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: BACKEND_URL, APP_ENV, TOKEN_PATH, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	// También intenta config.env
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	// Bind de variables de entorno (Viper las lee automáticamente con AutomaticEnv)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "vallmark-storefront"),
		},
		Backend: BackendConfig{
			URL:            getString(v, "BACKEND_URL", "http://localhost:8000"),
			TimeoutSeconds: getInt(v, "HTTP_TIMEOUT_SECONDS", 15),
		},
		Session: SessionConfig{
			TokenPath: getString(v, "TOKEN_PATH", ".vallmark/access_token"),
		},
		Diag: DiagConfig{
			Host: getString(v, "DIAG_HOST", "127.0.0.1"),
			Port: getInt(v, "DIAG_PORT", 7070),
		},
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
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
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
