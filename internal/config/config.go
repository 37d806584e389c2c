// Package config loads process configuration from the environment.
//
// Values are resolved in priority order: OS environment, then a .env file in
// the working directory, then the struct tag defaults. Every variable takes
// the BITE_ prefix (BITE_LOG_LEVEL); the unprefixed name is accepted too.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix
const Prefix = "BITE"

// Config is the process configuration. It is loaded once at startup.
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=json text"`

	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
	UserAgent       string        `envconfig:"USER_AGENT" default:"FishingForecast/1.0 (github.com/ngmaloney/bite-forecast)" validate:"required"`

	// Upstream providers
	NWSBaseURL       string        `envconfig:"NWS_BASE_URL" default:"https://api.weather.gov" validate:"required,url"`
	OpenMeteoURL     string        `envconfig:"OPEN_METEO_URL" default:"https://api.open-meteo.com/v1/forecast" validate:"required,url"`
	COOPSDataURL     string        `envconfig:"COOPS_DATA_URL" default:"https://api.tidesandcurrents.noaa.gov/api/prod/datagetter" validate:"required,url"`
	COOPSMetadataURL string        `envconfig:"COOPS_METADATA_URL" default:"https://api.tidesandcurrents.noaa.gov/mdapi/prod/webapi" validate:"required,url"`
	SPCURL           string        `envconfig:"SPC_URL" default:"https://mapservices.weather.noaa.gov/vector/rest/services/outlooks/SPC_wx_outlks/MapServer/2/query" validate:"required,url"`
	NWSTimeout       time.Duration `envconfig:"NWS_TIMEOUT" default:"15s" validate:"gt=0"`
	OpenMeteoTimeout time.Duration `envconfig:"OPEN_METEO_TIMEOUT" default:"20s" validate:"gt=0"`
	COOPSTimeout     time.Duration `envconfig:"COOPS_TIMEOUT" default:"15s" validate:"gt=0"`
	SPCTimeout       time.Duration `envconfig:"SPC_TIMEOUT" default:"10s" validate:"gt=0"`

	// Feature switches
	MarineEnabled  bool `envconfig:"MARINE_ENABLED" default:"true"`
	OutlookEnabled bool `envconfig:"OUTLOOK_ENABLED" default:"true"`
	StationCatalog bool `envconfig:"STATION_CATALOG" default:"false"` // discover stations from the local sqlite mirror

	// Forecast
	MaxDays        int `envconfig:"MAX_DAYS" default:"16" validate:"min=1,max=16"`
	DayConcurrency int `envconfig:"DAY_CONCURRENCY" default:"1" validate:"min=1,max=16"`

	DBPath string `envconfig:"DB_PATH" default:"data/bite-forecast.db" validate:"required"`

	// Almanac (both optional; the file wins when both are set)
	AlmanacFile   string `envconfig:"ALMANAC_FILE"`
	AlmanacAPIURL string `envconfig:"ALMANAC_API_URL" validate:"omitempty,contains={date}"`
	AlmanacAPIKey string `envconfig:"ALMANAC_API_KEY"`
}

// ConfigErrorType categorizes configuration loading failures
type ConfigErrorType string

const (
	// ErrParsing indicates an environment value could not be parsed into its field type
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrValidation indicates the configuration failed struct validation rules
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
)

// ConfigError is returned by Load
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Load reads a .env file if present, processes the environment and
// validates the result.
func Load() (*Config, error) {
	// A missing .env file is not an error; existing variables are not overridden.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}
	return &cfg, nil
}
