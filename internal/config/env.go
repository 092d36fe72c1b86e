package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"transfers/internal/utils"
)

type Env struct {
	AppAddr string `envconfig:"APP_ADDR" default:":8080"`
	GinMode string `envconfig:"GIN_MODE"`

	APIBaseURL string        `envconfig:"API_BASE_URL" default:"http://localhost:4000"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
	APIRPS     float64       `envconfig:"API_RPS" default:"20"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"bolt"`
	BoltPath    string `envconfig:"BOLT_PATH" default:"data/visitors.db"`
	MySQLDSN    string `envconfig:"MYSQL_DSN"`
	RedisURL    string `envconfig:"REDIS_URL"`

	SessionSecret string `envconfig:"SESSION_SECRET" default:"change-me-in-production"`
	CookieSecure  bool   `envconfig:"COOKIE_SECURE" default:"false"`

	Currency        string        `envconfig:"CURRENCY" default:"EUR"`
	DefaultLang     string        `envconfig:"DEFAULT_LANG" default:"en"`
	TimeZone        string        `envconfig:"TIME_ZONE" default:"Atlantic/Madeira"`
	EnforceCapacity bool          `envconfig:"ENFORCE_CAPACITY" default:"false"`
	CatalogTTL      time.Duration `envconfig:"CATALOG_TTL" default:"5m"`

	GeoAPIKey  string `envconfig:"GEO_API_KEY"`
	GeoBaseURL string `envconfig:"GEO_BASE_URL" default:"https://maps.googleapis.com"`
	GeoBounds  string `envconfig:"GEO_BOUNDS" default:"32.60,-17.30,32.90,-16.60"`

	AnalyticsURL string `envconfig:"ANALYTICS_URL"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000"`
	RateAuth           string   `envconfig:"RATE_AUTH" default:"10-1m"`
	RateSubmit         string   `envconfig:"RATE_SUBMIT" default:"5-1m"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`
}

// LoadEnv reads an optional .env file (ENV_FILE, default ".env") and then the process environment.
func LoadEnv() (Env, error) {
	file := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if file == "" {
		file = ".env"
	}
	if _, err := os.Stat(file); err == nil {
		if err := godotenv.Load(file); err != nil {
			return Env{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, err
	}
	env.APIBaseURL = strings.TrimRight(strings.TrimSpace(env.APIBaseURL), "/")
	return env, nil
}

// Location resolves TimeZone, falling back to UTC with a warning. The zone database is
// embedded, so hosts without one still get local pickup times.
func (e Env) Location() *time.Location {
	loc, err := time.LoadLocation(e.TimeZone)
	if err != nil {
		utils.Log.WithError(err).WithField("time_zone", e.TimeZone).Warn("unknown TIME_ZONE, using UTC")
		return time.UTC
	}
	return loc
}

// Bounds parses GeoBounds as south,west,north,east.
func (e Env) Bounds() ([4]float64, error) {
	var out [4]float64
	parts := strings.Split(e.GeoBounds, ",")
	if len(parts) != 4 {
		return out, fmt.Errorf("GEO_BOUNDS: want 4 comma separated values, got %d", len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return out, fmt.Errorf("GEO_BOUNDS: %w", err)
		}
		out[i] = v
	}
	if out[0] >= out[2] || out[1] >= out[3] {
		return out, fmt.Errorf("GEO_BOUNDS: south/west must be below north/east")
	}
	return out, nil
}
