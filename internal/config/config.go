package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/landclear/quote-planner/internal/geo"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"quotes"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string   `envconfig:"QUOTE_PLANNER_ADDRESS" default:":3443"`
	MetricsAddress  string   `envconfig:"QUOTE_PLANNER_METRICS_ADDRESS" default:":8080"`
	LogLevel        string   `envconfig:"QUOTE_PLANNER_LOG_LEVEL" default:"info"`
	MigrationFolder string   `envconfig:"QUOTE_PLANNER_MIGRATIONS_FOLDER" default:""`
	PricingFile     string   `envconfig:"QUOTE_PLANNER_PRICING_FILE" default:""`
	CorsOrigins     []string `envconfig:"QUOTE_PLANNER_CORS_ORIGINS" default:"*"`
	Base            baseConfig
	Geocoder        geocoderConfig
	Overpass        overpassConfig
	Cache           cacheConfig
	Events          eventsConfig
}

// baseConfig is the yard the crews leave from. It doubles as the fallback
// position when an address cannot be geocoded.
type baseConfig struct {
	Lat float64 `envconfig:"QUOTE_PLANNER_BASE_LAT" default:"35.2271"`
	Lng float64 `envconfig:"QUOTE_PLANNER_BASE_LNG" default:"-80.8431"`
}

type geocoderConfig struct {
	URL       string        `envconfig:"QUOTE_PLANNER_GEOCODER_URL" default:""`
	UserAgent string        `envconfig:"QUOTE_PLANNER_GEOCODER_USER_AGENT" default:"quote-planner/1.0"`
	Timeout   time.Duration `envconfig:"QUOTE_PLANNER_GEOCODER_TIMEOUT" default:"5s"`
}

type overpassConfig struct {
	Enabled bool          `envconfig:"QUOTE_PLANNER_OVERPASS_ENABLED" default:"false"`
	URL     string        `envconfig:"QUOTE_PLANNER_OVERPASS_URL" default:"https://overpass-api.de/api/interpreter"`
	Timeout time.Duration `envconfig:"QUOTE_PLANNER_OVERPASS_TIMEOUT" default:"8s"`
}

type cacheConfig struct {
	RedisAddr string        `envconfig:"QUOTE_PLANNER_REDIS_ADDR" default:""`
	TTL       time.Duration `envconfig:"QUOTE_PLANNER_REDIS_TTL" default:"1h"`
}

type eventsConfig struct {
	Sink   string `envconfig:"QUOTE_PLANNER_EVENTS_SINK" default:"stdout"`
	Target string `envconfig:"QUOTE_PLANNER_EVENTS_TARGET" default:""`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a fresh configuration backed by an in-memory sqlite
// database, with every external integration disabled.
func NewDefault() *Config {
	return &Config{
		Database: &dbConfig{
			Type: "sqlite",
			Name: "file::memory:?cache=shared",
		},
		Service: &svcConfig{
			Address:        ":3443",
			MetricsAddress: ":8080",
			LogLevel:       "info",
			CorsOrigins:    []string{"*"},
			Base:           baseConfig{Lat: 35.2271, Lng: -80.8431},
			Geocoder:       geocoderConfig{UserAgent: "quote-planner/1.0", Timeout: 5 * time.Second},
			Overpass:       overpassConfig{Timeout: 8 * time.Second},
			Cache:          cacheConfig{TTL: time.Hour},
			Events:         eventsConfig{Sink: "stdout"},
		},
	}
}

func (c *Config) BaseCoordinates() geo.Coordinates {
	return geo.Coordinates{Lat: c.Service.Base.Lat, Lng: c.Service.Base.Lng}
}

// PricingTables loads the tables from Service.PricingFile, or the built-in
// defaults when no file is configured.
func (c *Config) PricingTables() (*estimation.Tables, error) {
	if c.Service.PricingFile == "" {
		return estimation.DefaultTables(), nil
	}
	t, err := estimation.LoadTablesFromFile(c.Service.PricingFile)
	if err != nil {
		return nil, fmt.Errorf("pricing file %s: %w", c.Service.PricingFile, err)
	}
	return t, nil
}
