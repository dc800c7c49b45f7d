package config

import "time"

// Config represents the complete application configuration, merged from
// defaults, an optional config file, the environment, and an optional .env
// file in the working directory.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Probes  ProbesConfig  `mapstructure:"probes"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig describes the AviationStack endpoint and credential.
type APIConfig struct {
	// Key is the API credential. It is never defaulted; a missing key
	// aborts the run before any request is issued.
	Key string `mapstructure:"key"`

	// BaseURL is the versioned API root.
	BaseURL string `mapstructure:"base_url"`

	// Timeout bounds each probe request.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ProbesConfig holds the per-endpoint probe parameters.
type ProbesConfig struct {
	// FlightsLimit caps the flights result set; the probe only needs
	// enough data to prove access.
	FlightsLimit int `mapstructure:"flights_limit"`

	// AirportSearch is the free-text search term for the airports probe.
	AirportSearch string `mapstructure:"airport_search"`

	// AirportsLimit caps the airports result set.
	AirportsLimit int `mapstructure:"airports_limit"`
}

// LoggingConfig controls CLI diagnostics verbosity.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `mapstructure:"level"`
}
