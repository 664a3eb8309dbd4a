package services

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/udistrital/gestion_ofertas_mid/helpers"

	beego "github.com/beego/beego/v2/server/web"
)

// Drivers de almacenamiento soportados.
const (
	StoreCRUD     = "crud"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config centraliza la configuración necesaria para los servicios externos.
type Config struct {
	AppName         string
	HTTPPort        int
	RunMode         string
	StoreDriver     string
	CRUDBaseURL     string
	PostgresDSN     string
	RedisAddr       string
	RedisPassword   string
	CRUDBearerToken string
	RequestTimeout  time.Duration
	RetryCount      int
	RetryBackoffMs  int
	StatsCacheTTL   time.Duration
	StatsCacheSize  int
	// RateLimit es el máximo de mutaciones/exportaciones por profesional en RateWindow.
	RateLimit      int
	RateWindow     time.Duration
	AllowedOrigins []string
}

var (
	cfg  Config
	once sync.Once
)

// GetConfig devuelve la configuración cargada desde variables de entorno o app.conf.
func GetConfig() Config {
	once.Do(func() {
		cfg = loadConfig()
		if err := cfg.validate(); err != "" {
			panic(err)
		}
		cfg.applyRetryPolicy()
	})
	return cfg
}

func loadConfig() Config {
	return Config{
		AppName:         getString("APP_NAME", "appname", "gestion_ofertas_mid"),
		HTTPPort:        getInt("HTTP_PORT", "httpport", 8080),
		RunMode:         getString("RUN_MODE", "runmode", "dev"),
		StoreDriver:     strings.ToLower(getString("STORE_DRIVER", "store_driver", StoreMemory)),
		CRUDBaseURL:     normalizeBase(getString("GESTION_CRUD_BASE_URL", "gestion_crud_base_url", "")),
		PostgresDSN:     getString("POSTGRES_DSN", "postgres_dsn", ""),
		RedisAddr:       getString("REDIS_ADDR", "redis_addr", ""),
		RedisPassword:   getString("REDIS_PASSWORD", "redis_password", ""),
		CRUDBearerToken: getString("CRUD_BEARER_TOKEN", "crud_bearer_token", ""),
		RequestTimeout:  time.Duration(getInt("REQUEST_TIMEOUT_MS", "request_timeout_ms", 10000)) * time.Millisecond,
		RetryCount:      getInt("RETRY_COUNT", "retry_count", 2),
		RetryBackoffMs:  getInt("RETRY_BACKOFF_MS", "retry_backoff_ms", 300),
		StatsCacheTTL:   time.Duration(getInt("STATS_CACHE_TTL_S", "stats_cache_ttl_s", 60)) * time.Second,
		StatsCacheSize:  getInt("STATS_CACHE_SIZE", "stats_cache_size", 512),
		RateLimit:       getInt("RATE_LIMIT", "rate_limit", 60),
		RateWindow:      time.Duration(getInt("RATE_WINDOW_S", "rate_window_s", 60)) * time.Second,
		AllowedOrigins:  splitList(getString("ALLOWED_ORIGINS", "allowed_origins", "http://localhost:4200")),
	}
}

func (c Config) validate() string {
	switch c.StoreDriver {
	case StoreCRUD:
		if c.CRUDBaseURL == "" {
			return "GESTION_CRUD_BASE_URL no configurado"
		}
	case StorePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return "POSTGRES_DSN no configurado"
		}
	case StoreMemory:
	default:
		return "STORE_DRIVER inválido: " + c.StoreDriver
	}
	return ""
}

// applyRetryPolicy publica los reintentos y el backoff base hacia los clientes HTTP.
func (c Config) applyRetryPolicy() {
	helpers.SetDefaultRetryCount(c.RetryCount)
	helpers.SetRetryBackoff(c.RetryBackoffMs)
}

func getString(envKey, confKey, def string) string {
	if val := strings.TrimSpace(os.Getenv(envKey)); val != "" {
		return val
	}
	if val, err := beego.AppConfig.String(confKey); err == nil && strings.TrimSpace(val) != "" {
		return val
	}
	return def
}

func getInt(envKey, confKey string, def int) int {
	if val := strings.TrimSpace(os.Getenv(envKey)); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	if val, err := beego.AppConfig.Int(confKey); err == nil {
		return val
	}
	return def
}

func normalizeBase(value string) string {
	return strings.TrimSuffix(strings.TrimSpace(value), "/")
}

func splitList(value string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// BuildURL compone una URL asegurando que no haya dobles slashes.
func BuildURL(base string, elems ...string) string {
	trimmed := strings.TrimSuffix(base, "/")
	for _, e := range elems {
		trimmed += "/" + strings.Trim(e, "/")
	}
	return trimmed
}
