package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

// EnvPrefix marks environment variables that override the YAML file.
// Nesting uses a double underscore: INGESTGW_KAFKA_PRODUCER__TOPIC.
const EnvPrefix = "INGESTGW_"

// LoadGatewayConfig loads the gateway configuration from the YAML file at
// path, applies .env and INGESTGW_* overrides, fills defaults and validates.
func LoadGatewayConfig(path string, logger zerolog.Logger) (*GatewayConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path of config file: %w", err)
	}
	logger.Info().Str("path", absPath).Msg("loading gateway configuration")

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", absPath, err)
	}
	return parseGatewayConfig(data, logger)
}

func parseGatewayConfig(data []byte, logger zerolog.Logger) (*GatewayConfig, error) {
	var cfg GatewayConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config file: %w", err)
	}

	if err := godotenv.Load(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	cfg.SetDefaults(logger)

	if cfg.HttpListenAddr == "" && cfg.GrpcListenAddr == "" {
		return nil, fmt.Errorf("configuration error: at least one of http_listen_addr or grpc_listen_addr must be configured")
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	if cfg.NeedsDatabase() {
		if err := cfg.Database.Validate(); err != nil {
			return nil, fmt.Errorf("database configuration error: %w", err)
		}
	}
	if cfg.Sink.Type == BackendKafka && len(cfg.KafkaProducer.Brokers) == 0 {
		return nil, fmt.Errorf("kafka_producer.brokers is required when sink.type is kafka")
	}
	return &cfg, nil
}

// applyEnvOverrides decodes INGESTGW_* variables over cfg using the yaml tags
func applyEnvOverrides(cfg *GatewayConfig) error {
	k := koanf.New(".")
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return err
	}
	if len(k.Keys()) == 0 {
		return nil
	}
	return k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"})
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
