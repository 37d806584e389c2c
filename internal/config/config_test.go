package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "https://api.weather.gov", cfg.NWSBaseURL)
	assert.Equal(t, 15*time.Second, cfg.NWSTimeout)
	assert.Equal(t, 20*time.Second, cfg.OpenMeteoTimeout)
	assert.Equal(t, 10*time.Second, cfg.SPCTimeout)
	assert.Equal(t, 16, cfg.MaxDays)
	assert.Equal(t, 1, cfg.DayConcurrency)
	assert.True(t, cfg.MarineEnabled)
	assert.True(t, cfg.OutlookEnabled)
	assert.False(t, cfg.StationCatalog)
	assert.Equal(t, "data/bite-forecast.db", cfg.DBPath)
	assert.Contains(t, cfg.UserAgent, "FishingForecast/1.0")
}

func TestLoad_PrefixedOverrides(t *testing.T) {
	t.Setenv("BITE_LOG_LEVEL", "debug")
	t.Setenv("BITE_LOG_FORMAT", "json")
	t.Setenv("BITE_DAY_CONCURRENCY", "4")
	t.Setenv("BITE_MARINE_ENABLED", "false")
	t.Setenv("BITE_NWS_TIMEOUT", "3s")
	t.Setenv("BITE_ALMANAC_API_URL", "https://almanac.example.com/{date}?lat={lat}&lon={lon}")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 4, cfg.DayConcurrency)
	assert.False(t, cfg.MarineEnabled)
	assert.Equal(t, 3*time.Second, cfg.NWSTimeout)
	assert.Contains(t, cfg.AlmanacAPIURL, "{date}")
}

func TestLoad_UnprefixedFallback(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		wantType ConfigErrorType
	}{
		{"bad duration", "BITE_SPC_TIMEOUT", "soon", ErrParsing},
		{"bad int", "BITE_MAX_DAYS", "many", ErrParsing},
		{"unknown level", "BITE_LOG_LEVEL", "loud", ErrValidation},
		{"too many days", "BITE_MAX_DAYS", "30", ErrValidation},
		{"bad url", "BITE_NWS_BASE_URL", "not a url", ErrValidation},
		{"almanac template without date", "BITE_ALMANAC_API_URL", "https://x.example.com/", ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantType, cfgErr.Type)
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Type: ErrValidation, Message: "bad", Err: errors.New("inner")}
	assert.Equal(t, "[VALIDATION_FAILED] bad: inner", err.Error())
	assert.Equal(t, "[PARSING_FAILED] only", (&ConfigError{Type: ErrParsing, Message: "only"}).Error())
}
