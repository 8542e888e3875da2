package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"ingestgw/config"
	"ingestgw/ingestion/decoder"
	"ingestgw/internal/metrics"
	"ingestgw/internal/models"
	"ingestgw/storage/store"
)

// Service runs one ingest call through validate, decode and admit. It keeps
// no per-call state.
type Service struct {
	validator       *Validator
	router          *Router
	maxDecompressed int64
	logger          zerolog.Logger
}

// NewService creates a new Service from the gateway configuration
func NewService(cfg *config.GatewayConfig, registry store.StreamRegistry, sink store.Sink, logger zerolog.Logger) *Service {
	quota := NewQuotaStore(cfg.Quota)
	return &Service{
		validator:       NewValidator(cfg.Limits.MaxPayloadBytes),
		router:          NewRouter(quota, registry, sink, cfg.Streams, logger),
		maxDecompressed: cfg.Limits.MaxDecompressedBytes,
		logger:          logger,
	}
}

// Ingest always returns a structured response; failures of any stage,
// panics included, are mapped to a status code.
func (s *Service) Ingest(ctx context.Context, req *models.IngestRequest) (resp models.Response) {
	start := time.Now()
	logger := s.logger.With().
		Str("request_id", uuid.NewString()).
		Str("org_id", req.OrgID).
		Str("stream", req.StreamName).
		Stringer("ingestion_type", req.IngestionType).
		Logger()

	defer func() {
		if p := recover(); p != nil {
			logger.Error().Interface("panic", p).Msg("ingest panicked")
			resp = models.Rejected{Kind: models.RejectInternal, Message: fmt.Sprintf("internal error: %v", p)}.Response()
		}
	}()

	outcome := s.process(ctx, req)
	resp = outcome.Response()
	record(req.OrgID, outcome)

	event := logger.Debug()
	switch {
	case resp.StatusCode >= 500:
		event = logger.Error()
	case resp.StatusCode >= 400 || resp.StatusCode == 207:
		event = logger.Warn()
	}
	event.Int32("status_code", resp.StatusCode).
		Int("bytes", len(req.Data)).
		Dur("took", time.Since(start)).
		Msg(resp.Message)
	return resp
}

func (s *Service) process(ctx context.Context, req *models.IngestRequest) models.Outcome {
	key, err := s.validator.Validate(req)
	if err != nil {
		return rejection(err)
	}

	payload, err := decoder.Decompress(metadataValue(req.Metadata, decoder.MetadataContentEncoding), req.Data, s.maxDecompressed)
	if err != nil {
		return rejection(err)
	}
	batch, err := decoder.Decode(req.IngestionType, payload)
	if err != nil {
		return rejection(err)
	}

	return s.router.Admit(ctx, key, batch, len(req.Data))
}

// rejection maps a stage error onto a Rejected outcome
func rejection(err error) models.Rejected {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return models.Rejected{Kind: ve.Kind, Message: ve.Message}
	}
	var de *decoder.DecodeError
	if errors.As(err, &de) {
		return models.Rejected{Kind: de.Kind, Message: de.Message}
	}
	return models.Rejected{Kind: models.RejectInternal, Message: err.Error()}
}

func record(org string, outcome models.Outcome) {
	switch o := outcome.(type) {
	case models.Rejected:
		metrics.BatchesRejectedTotal.WithLabelValues(o.Kind.String()).Inc()
	case models.PartiallyAccepted:
		for _, e := range o.Errors {
			metrics.RecordsRejectedTotal.WithLabelValues(org, e.Stage).Inc()
		}
	}
}
