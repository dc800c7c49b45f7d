// Package config provides centralized configuration management for
// flightprobe. Values merge in precedence order: runtime flags and
// environment variables, then an optional .env file, then the config file,
// then built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// CredentialEnvVar is the environment variable holding the API credential.
// The name is fixed by the provider's documented setup flow.
const CredentialEnvVar = "AVIATION_STACK_API_KEY"

// DotEnvFile is the optional credential file read from the working
// directory, mirroring the provider's recommended .env setup.
const DotEnvFile = ".env"

var (
	appConfig *Config
	configMu  sync.RWMutex
)

// SetDefaults registers default configuration values on the supplied viper
// instance. The credential deliberately has no default.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://api.aviationstack.com/v1")
	v.SetDefault("api.timeout", "10s")

	v.SetDefault("probes.flights_limit", 2)
	v.SetDefault("probes.airport_search", "London")
	v.SetDefault("probes.airports_limit", 5)

	v.SetDefault("logging.level", "info")
}

// Load resolves configuration from the process-global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom resolves configuration from a specific viper instance. It is
// safe to call multiple times; the last loaded config wins.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	if err := v.BindEnv("api.key", CredentialEnvVar); err != nil {
		return nil, fmt.Errorf("bind credential env var: %w", err)
	}

	mergeDotEnv(v)

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	setConfig(cfg)
	return cfg, nil
}

// HasCredential reports whether a non-empty API key was resolved.
func (c *Config) HasCredential() bool {
	return c != nil && strings.TrimSpace(c.API.Key) != ""
}

// GetConfig returns the current application configuration (thread-safe).
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// mergeDotEnv reads the credential from a .env file in the working
// directory when neither the environment nor the config file supplied one.
// A real environment variable always wins over the file.
func mergeDotEnv(v *viper.Viper) {
	if strings.TrimSpace(v.GetString("api.key")) != "" {
		return
	}
	if _, err := os.Stat(DotEnvFile); err != nil {
		return
	}

	env := viper.New()
	env.SetConfigFile(DotEnvFile)
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return
	}

	if key := strings.TrimSpace(env.GetString(CredentialEnvVar)); key != "" {
		v.Set("api.key", key)
	}
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if cfg.Probes.FlightsLimit <= 0 {
		return fmt.Errorf("probes.flights_limit must be positive")
	}
	if cfg.Probes.AirportsLimit <= 0 {
		return fmt.Errorf("probes.airports_limit must be positive")
	}
	if strings.TrimSpace(cfg.Probes.AirportSearch) == "" {
		return fmt.Errorf("probes.airport_search must not be empty")
	}
	return nil
}
