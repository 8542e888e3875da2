package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"ingestgw/config"
	"ingestgw/ingestion/decoder"
	"ingestgw/internal/metrics"
	"ingestgw/internal/models"
	"ingestgw/storage/store"
)

// knownStreamTTL bounds how long a resolved stream skips the registry
const knownStreamTTL = 30 * time.Second

var (
	errStreamDeleting = errors.New("stream is being deleted")
	errStreamNotFound = errors.New("stream not found")
)

// Router admits decoded batches: quota, stream resolution, then the sink
type Router struct {
	quota    *QuotaStore
	registry store.StreamRegistry
	sink     store.Sink
	streams  config.StreamsConfig
	logger   zerolog.Logger
	now      func() time.Time

	known     sync.Map // store.StreamKey -> time.Time of last resolution
	lastSweep atomic.Int64
	group     singleflight.Group
}

// NewRouter creates a Router. quota is shared by every call.
func NewRouter(quota *QuotaStore, registry store.StreamRegistry, sink store.Sink, streams config.StreamsConfig, logger zerolog.Logger) *Router {
	streams.SetDefaults()
	return &Router{
		quota:    quota,
		registry: registry,
		sink:     sink,
		streams:  streams,
		logger:   logger,
		now:      time.Now,
	}
}

// Admit writes batch to the stream named by key. Records already written
// stay written whatever happens to the rest of the batch. A batch rejected
// as a whole after the quota stage gets its quota charge back.
func (r *Router) Admit(ctx context.Context, key store.StreamKey, batch decoder.Batch, payloadBytes int) models.Outcome {
	if len(batch.Records) == 0 {
		if len(batch.Errors) > 0 {
			return models.PartiallyAccepted{Accepted: 0, Rejected: len(batch.Errors), Errors: batch.Errors}
		}
		return models.Accepted{Count: 0}
	}

	// the caller's organization pays even when records are routed elsewhere
	charge, err := r.quota.Admit(key.OrgID, len(batch.Records), payloadBytes)
	if err != nil {
		return models.Rejected{Kind: models.RejectQuotaExceeded, Message: err.Error()}
	}
	out := r.dispatch(ctx, key, batch)
	if _, rejected := out.(models.Rejected); rejected {
		charge.Release()
	}
	return out
}

func (r *Router) dispatch(ctx context.Context, key store.StreamKey, batch decoder.Batch) models.Outcome {
	target := r.route(key, batch.Route)
	if err := r.resolveStream(ctx, target); err != nil {
		switch {
		case errors.Is(err, errStreamDeleting):
			return models.Rejected{Kind: models.RejectStreamDeleting, Message: fmt.Sprintf("stream [%s] is being deleted", target.StreamName)}
		case errors.Is(err, errStreamNotFound):
			return models.Rejected{Kind: models.RejectStreamNotFound, Message: fmt.Sprintf("stream [%s] not found and auto-create is disabled", target.StreamName)}
		default:
			r.logger.Error().Err(err).Str("stream", target.String()).Msg("stream resolution failed")
			return models.Rejected{Kind: models.RejectInternal, Message: "stream resolution failed: " + err.Error()}
		}
	}

	records := batch.Records
	nowMicros := r.now().UnixMicro()
	for i := range records {
		if records[i].Timestamp == 0 {
			records[i].Timestamp = nowMicros
		}
	}

	res, err := r.sink.Write(ctx, target, records)
	if err != nil {
		r.logger.Error().Err(err).Str("stream", target.String()).Int("records", len(records)).Msg("sink write failed")
		return models.Rejected{Kind: models.RejectSinkUnavailable, Message: "sink unavailable: " + err.Error()}
	}
	if res.Accepted == 0 && len(res.Failed) > 0 {
		return models.Rejected{
			Kind:    models.RejectSinkUnavailable,
			Message: fmt.Sprintf("sink rejected all %d record(s): %s", len(res.Failed), res.Failed[0].Reason),
		}
	}
	metrics.RecordsAcceptedTotal.WithLabelValues(key.OrgID).Add(float64(res.Accepted))

	errs := batch.Errors
	for _, f := range res.Failed {
		errs = append(errs, models.RecordError{Index: f.Index, Stage: models.StageWrite, Reason: f.Reason})
	}
	if len(errs) == 0 {
		return models.Accepted{Count: res.Accepted}
	}
	return models.PartiallyAccepted{Accepted: res.Accepted, Rejected: len(errs), Errors: errs}
}

// route redirects RUM and usage batches to their internal streams
func (r *Router) route(key store.StreamKey, route decoder.Route) store.StreamKey {
	switch route {
	case decoder.RouteRUM:
		key.StreamName = r.streams.RUMStream
		key.StreamType = models.StreamTypeLogs
	case decoder.RouteUsage:
		key.StreamName = r.streams.UsageStream
		key.StreamType = models.StreamTypeLogs
		if r.streams.UsageOrg != "" {
			key.OrgID = r.streams.UsageOrg
		}
	}
	return key
}

// resolveStream makes sure key exists, creating it when the policy allows.
// Concurrent resolutions of one stream share a single registry round trip.
func (r *Router) resolveStream(ctx context.Context, key store.StreamKey) error {
	if at, ok := r.known.Load(key); ok && r.now().Sub(at.(time.Time)) < knownStreamTTL {
		return nil
	}

	// detached so one caller's cancellation does not fail the others sharing the flight
	flightCtx := context.WithoutCancel(ctx)
	_, err, _ := r.group.Do(key.String(), func() (any, error) {
		deleting, err := r.registry.IsDeleting(flightCtx, key)
		if err != nil {
			return nil, err
		}
		if deleting {
			r.known.Delete(key)
			return nil, errStreamDeleting
		}

		exists, err := r.registry.Exists(flightCtx, key)
		if err != nil {
			return nil, err
		}
		if !exists {
			if !r.streams.AutoCreateEnabled() {
				return nil, errStreamNotFound
			}
			if err := r.registry.Create(flightCtx, key); err != nil {
				return nil, errors.Wrap(err, "implicit stream creation")
			}
			metrics.StreamsCreatedTotal.Inc()
			r.logger.Info().Str("stream", key.String()).Msg("stream created implicitly")
		}
		r.remember(key, r.now())
		return nil, nil
	})
	return err
}

// remember marks key as resolved at now, and at most once per TTL drops
// every entry that has expired.
func (r *Router) remember(key store.StreamKey, now time.Time) {
	r.known.Store(key, now)

	last := r.lastSweep.Load()
	if now.UnixNano()-last < int64(knownStreamTTL) || !r.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	r.known.Range(func(k, v any) bool {
		if now.Sub(v.(time.Time)) >= knownStreamTTL {
			r.known.Delete(k)
		}
		return true
	})
}
