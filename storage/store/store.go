// Package store defines the storage collaborators of the gateway: the sink
// records are written to and the registry that owns stream existence.
package store

import (
	"context"

	"ingestgw/internal/models"
)

// FailedRecord is a record the sink refused. Index is its position in the
// slice passed to Write.
type FailedRecord struct {
	Index  int
	Reason string
}

// WriteResult reports per-record outcome of a Write
type WriteResult struct {
	Accepted int
	Failed   []FailedRecord
}

// StreamKey identifies one stream of one organization
type StreamKey struct {
	OrgID      string
	StreamName string
	StreamType models.StreamType
}

func (k StreamKey) String() string {
	return k.OrgID + "/" + string(k.StreamType) + "/" + k.StreamName
}

// Sink is the durable append path. Records are written in slice order.
// A non-nil error means the sink could not report per-record results and
// nothing should be assumed written.
type Sink interface {
	Write(ctx context.Context, key StreamKey, records []models.NormalizedRecord) (WriteResult, error)
	Close() error
}

// StreamRegistry owns stream existence
type StreamRegistry interface {
	Exists(ctx context.Context, key StreamKey) (bool, error)
	// Create registers the stream; creating an existing stream is not an error
	Create(ctx context.Context, key StreamKey) error
	// IsDeleting reports whether the stream is being dropped and must not take writes
	IsDeleting(ctx context.Context, key StreamKey) (bool, error)
	Close() error
}
