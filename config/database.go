package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// DatabaseConfig defines the Postgres connection used by the stream registry
// and the postgres sink
type DatabaseConfig struct {
	DSN            string `yaml:"dsn" json:"dsn"`                             // PostgreSQL connection string
	MaxConnections int    `yaml:"max_connections" json:"max_connections"` // Maximum number of connections
	MinConnections int    `yaml:"min_connections" json:"min_connections"` // Minimum number of connections
	MaxIdleTime    string `yaml:"max_idle_time" json:"max_idle_time"`     // Maximum time a connection can be idle
	MaxLifetime    string `yaml:"max_lifetime" json:"max_lifetime"`       // Maximum lifetime of a connection
}

// SetDefaults sets sensible default values for the database configuration
func (c *DatabaseConfig) SetDefaults(logger zerolog.Logger) {
	if c.MaxConnections <= 0 {
		c.MaxConnections = 50
		logger.Warn().Int("value", c.MaxConnections).Msg("database.max_connections not set or invalid, using default")
	}
	if c.MinConnections <= 0 {
		c.MinConnections = 10
		logger.Warn().Int("value", c.MinConnections).Msg("database.min_connections not set or invalid, using default")
	}
	if c.MaxIdleTime == "" {
		c.MaxIdleTime = "1h"
		logger.Warn().Str("value", c.MaxIdleTime).Msg("database.max_idle_time not set, using default")
	}
	if c.MaxLifetime == "" {
		c.MaxLifetime = "24h"
		logger.Warn().Str("value", c.MaxLifetime).Msg("database.max_lifetime not set, using default")
	}
}

// Validate validates the database configuration
func (c *DatabaseConfig) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	if c.MaxConnections <= 0 {
		return fmt.Errorf("database max_connections must be positive")
	}
	if c.MinConnections < 0 {
		return fmt.Errorf("database min_connections cannot be negative")
	}
	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min_connections (%d) cannot be greater than max_connections (%d)",
			c.MinConnections, c.MaxConnections)
	}
	return nil
}

// LogConfiguration logs the database configuration (excluding sensitive DSN)
func (c *DatabaseConfig) LogConfiguration(logger zerolog.Logger) {
	logger.Info().
		Int("max_connections", c.MaxConnections).
		Int("min_connections", c.MinConnections).
		Str("max_idle_time", c.MaxIdleTime).
		Str("max_lifetime", c.MaxLifetime).
		Str("dsn", "[configured]").
		Msg("database configuration")
}
