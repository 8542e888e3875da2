package producer

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"ingestgw/config"
)

// KafkaProducer implements the Producer interface
type KafkaProducer struct {
	writer      *kafka.Writer
	logger      zerolog.Logger
	topic       string
	topicPrefix string
}

// NewKafkaProducer creates a new KafkaProducer. Writes are synchronous so
// every message's fate is known before PublishBatch returns.
func NewKafkaProducer(cfg config.KafkaProducerConfig, logger zerolog.Logger) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka producer configuration incomplete: brokers are required")
	}
	logger = logger.With().Str("component", "kafka_producer").Logger()

	// Set defaults for batch settings if not configured
	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = 100
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = 10 * time.Millisecond
	}

	batchBytes := cfg.BatchBytes
	if batchBytes == 0 {
		batchBytes = 5 * 1024 * 1024 // Default 5MB
	}

	// Set timeouts if not configured
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 5 * time.Second
	}

	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 5 * time.Second
	}

	w := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{}, // keyed by stream, keeps per-stream order

		BatchSize:    batchSize,
		BatchTimeout: batchTimeout,
		BatchBytes:   int64(batchBytes),

		// Reliability settings
		RequiredAcks:           requiredAcks(cfg.RequiredAcks),
		Compression:            compression(cfg.Compression),
		AllowAutoTopicCreation: cfg.Topic == "",

		// Performance settings
		WriteTimeout: writeTimeout,
		ReadTimeout:  readTimeout,

		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error().Msgf(msg, args...)
		}),
	}

	logger.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Str("topic_prefix", cfg.TopicPrefix).
		Msg("Kafka producer created")

	return &KafkaProducer{
		writer:      w,
		logger:      logger,
		topic:       cfg.Topic,
		topicPrefix: cfg.TopicPrefix,
	}, nil
}

func requiredAcks(s string) kafka.RequiredAcks {
	switch s {
	case "none":
		return kafka.RequireNone
	case "all":
		return kafka.RequireAll
	default:
		return kafka.RequireOne // wait for leader
	}
}

func compression(s string) kafka.Compression {
	switch s {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return 0
	}
}

// PublishBatch sends msgs and waits for the configured acknowledgements
func (p *KafkaProducer) PublishBatch(ctx context.Context, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}

	kafkaMsgs := make([]kafka.Message, len(msgs))
	for i, msg := range msgs {
		kafkaMsgs[i] = kafka.Message{Key: msg.Key, Value: msg.Value}
		// the writer rejects a per-message topic when it has a fixed one
		if p.topic == "" {
			kafkaMsgs[i].Topic = p.topicFor(msg)
		}
	}

	err := p.writer.WriteMessages(ctx, kafkaMsgs...)
	if err == nil {
		return nil
	}
	var werrs kafka.WriteErrors
	if errors.As(err, &werrs) {
		p.logger.Warn().Int("failed", werrs.Count()).Int("count", len(msgs)).Msg("partial Kafka batch failure")
		return &BatchError{Errs: []error(werrs)}
	}
	p.logger.Error().Err(err).Int("count", len(msgs)).Msg("failed to write Kafka batch")
	return errors.Wrap(err, "failed to write to Kafka")
}

// topicFor names the per-stream topic: prefix + org.type.stream
func (p *KafkaProducer) topicFor(msg Message) string {
	return p.topicPrefix + topicSafe(msg.Stream.OrgID) + "." + string(msg.Stream.StreamType) + "." + topicSafe(msg.Stream.StreamName)
}

// topicSafe replaces characters Kafka does not allow in topic names
func topicSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

// Close closes the producer
func (p *KafkaProducer) Close() error {
	p.logger.Info().Msg("Closing Kafka producer")
	return p.writer.Close()
}

var _ Producer = (*KafkaProducer)(nil) // Compile-time interface check
