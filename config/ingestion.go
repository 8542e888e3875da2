package config

import (
	"time"

	"github.com/rs/zerolog"
)

// KafkaProducerConfig defines configuration for the Kafka sink
type KafkaProducerConfig struct {
	Brokers []string `yaml:"brokers"`
	// Topic receives every record; empty means one topic per stream
	// named TopicPrefix + org + "." + stream_type + "." + stream
	Topic       string `yaml:"topic"`
	TopicPrefix string `yaml:"topic_prefix"`

	// Batch processing settings
	BatchSize    int           `yaml:"batch_size"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
	BatchBytes   int           `yaml:"batch_bytes"`

	// Reliability settings. Writes are always synchronous so per-record
	// results can be reported back to the caller.
	RequiredAcks string `yaml:"required_acks" validate:"omitempty,oneof=none one all"`
	Compression  string `yaml:"compression" validate:"omitempty,oneof=none gzip snappy lz4 zstd"`

	// Performance settings
	WriteTimeout time.Duration `yaml:"write_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
}

// HttpServerConfig defines HTTP server configuration
type HttpServerConfig struct {
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
}

// SetDefaults fills zero timeouts
func (c *HttpServerConfig) SetDefaults() {
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 5 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.MaxHeaderBytes == 0 {
		c.MaxHeaderBytes = 1 << 20 // 1 MB
	}
}

// GatewayMonitoringConfig defines monitoring configuration for the gateway
type GatewayMonitoringConfig struct {
	EnableMetrics   bool   `yaml:"enable_metrics"`
	MetricsPath     string `yaml:"metrics_path"`
	HealthCheckPath string `yaml:"health_check_path"`
	LogLevel        string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	LogPretty       bool   `yaml:"log_pretty"`
}

// SetDefaults sets reasonable default values for monitoring configuration
func (c *GatewayMonitoringConfig) SetDefaults() {
	if c.MetricsPath == "" {
		c.MetricsPath = "/metrics"
	}
	if c.HealthCheckPath == "" {
		c.HealthCheckPath = "/health"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Sink and registry backends
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendKafka    = "kafka"
)

// SinkConfig selects where admitted records are written
type SinkConfig struct {
	Type           string `yaml:"type" validate:"oneof=kafka postgres memory"`
	MaxRecordBytes int    `yaml:"max_record_bytes" validate:"gte=0"`
}

// RegistryConfig selects the stream registry backend
type RegistryConfig struct {
	Type string `yaml:"type" validate:"oneof=postgres memory"`
}

// StreamsConfig defines implicit stream creation and internal routing
type StreamsConfig struct {
	AutoCreate  *bool  `yaml:"auto_create"`
	RUMStream   string `yaml:"rum_stream"`
	UsageStream string `yaml:"usage_stream"`
	// UsageOrg receives usage records; empty keeps the caller's organization
	UsageOrg string `yaml:"usage_org"`
}

// AutoCreateEnabled reports the implicit creation policy; enabled unless set to false
func (c *StreamsConfig) AutoCreateEnabled() bool {
	return c.AutoCreate == nil || *c.AutoCreate
}

// SetDefaults names the internal streams
func (c *StreamsConfig) SetDefaults() {
	if c.RUMStream == "" {
		c.RUMStream = "_rumdata"
	}
	if c.UsageStream == "" {
		c.UsageStream = "usage"
	}
}

// QuotaLimits bounds one organization's ingestion rate. Zero rates disable
// the corresponding limit.
type QuotaLimits struct {
	RecordsPerSecond float64 `yaml:"records_per_second" validate:"gte=0"`
	RecordBurst      int     `yaml:"record_burst" validate:"gte=0"`
	BytesPerSecond   float64 `yaml:"bytes_per_second" validate:"gte=0"`
	ByteBurst        int     `yaml:"byte_burst" validate:"gte=0"`
}

// QuotaConfig holds the default per-organization limits and per-org overrides
type QuotaConfig struct {
	Default   QuotaLimits            `yaml:"default"`
	Overrides map[string]QuotaLimits `yaml:"overrides" validate:"dive"`
}

// LimitsFor returns the limits applying to org
func (c *QuotaConfig) LimitsFor(org string) QuotaLimits {
	if l, ok := c.Overrides[org]; ok {
		return l
	}
	return c.Default
}

// LimitsConfig bounds the size of a single request
type LimitsConfig struct {
	MaxPayloadBytes      int   `yaml:"max_payload_bytes" validate:"gte=0"`
	MaxDecompressedBytes int64 `yaml:"max_decompressed_bytes" validate:"gte=0"`
}

// SetDefaults sets reasonable default values for request limits
func (c *LimitsConfig) SetDefaults(logger zerolog.Logger) {
	if c.MaxPayloadBytes == 0 {
		c.MaxPayloadBytes = 10 << 20 // 10MB
		logger.Warn().Int("value", c.MaxPayloadBytes).Msg("limits.max_payload_bytes not set, using default")
	}
	if c.MaxDecompressedBytes == 0 {
		c.MaxDecompressedBytes = 64 << 20
	}
}

// GatewayConfig defines all configuration required by the ingest gateway
type GatewayConfig struct {
	HttpListenAddr string `yaml:"http_listen_addr"`
	GrpcListenAddr string `yaml:"grpc_listen_addr"`
	GrpcMaxRecvMsg int    `yaml:"grpc_max_recv_msg_bytes" validate:"gte=0"`

	Database      DatabaseConfig          `yaml:"database"`
	KafkaProducer KafkaProducerConfig     `yaml:"kafka_producer"`
	Sink          SinkConfig              `yaml:"sink"`
	Registry      RegistryConfig          `yaml:"registry"`
	Streams       StreamsConfig           `yaml:"streams"`
	Quota         QuotaConfig             `yaml:"quota"`
	Limits        LimitsConfig            `yaml:"limits"`
	HttpServer    HttpServerConfig        `yaml:"http_server"`
	Monitoring    GatewayMonitoringConfig `yaml:"monitoring"`
}

// NeedsDatabase reports whether any configured backend is postgres
func (c *GatewayConfig) NeedsDatabase() bool {
	return c.Sink.Type == BackendPostgres || c.Registry.Type == BackendPostgres
}

// SetDefaults fills every unset value
func (c *GatewayConfig) SetDefaults(logger zerolog.Logger) {
	if c.Sink.Type == "" {
		c.Sink.Type = BackendMemory
		logger.Warn().Str("value", c.Sink.Type).Msg("sink.type not set, using default")
	}
	if c.Registry.Type == "" {
		c.Registry.Type = BackendMemory
		logger.Warn().Str("value", c.Registry.Type).Msg("registry.type not set, using default")
	}
	if c.GrpcMaxRecvMsg == 0 {
		c.GrpcMaxRecvMsg = 16 << 20
	}
	if c.NeedsDatabase() {
		c.Database.SetDefaults(logger)
	}
	c.Streams.SetDefaults()
	c.Limits.SetDefaults(logger)
	c.HttpServer.SetDefaults()
	c.Monitoring.SetDefaults()
}
