// Package decoder turns raw ingestion payloads into normalized records.
//
// Decoders are pure: they perform no I/O, never modify the input slice and
// return identical batches for identical input. Dispatch over the ingestion
// type goes through a function table rather than a type hierarchy.
package decoder

import (
	"fmt"

	"ingestgw/internal/models"
)

// Route tags a batch whose records belong in a dedicated internal stream
type Route string

const (
	RouteNone  Route = ""
	RouteRUM   Route = "rum"
	RouteUsage Route = "usage"
)

// Batch is the decoded form of one payload
type Batch struct {
	Records []models.NormalizedRecord
	// Errors holds records that could not be decoded but did not fail the batch
	Errors []models.RecordError
	Route  Route
}

// DecodeError fails a whole payload
type DecodeError struct {
	Kind    models.RejectKind // RejectMalformedPayload or RejectUnsupportedType
	Message string
}

func (e *DecodeError) Error() string {
	return e.Message
}

func malformed(format string, args ...any) *DecodeError {
	return &DecodeError{Kind: models.RejectMalformedPayload, Message: fmt.Sprintf(format, args...)}
}

// Func decodes one payload format
type Func func(raw []byte) (Batch, error)

var decoders = map[models.IngestionType]Func{
	models.IngestionJSON:      decodeJSON,
	models.IngestionMulti:     decodeMulti,
	models.IngestionGCP:       decodeGCP,
	models.IngestionKinesisFH: decodeFirehose,
	models.IngestionRUM:       routed(RouteRUM, decodeJSON),
	models.IngestionUsage:     routed(RouteUsage, decodeJSON),
}

// Decode decodes raw according to t
func Decode(t models.IngestionType, raw []byte) (Batch, error) {
	fn, ok := decoders[t]
	if !ok {
		return Batch{}, &DecodeError{
			Kind:    models.RejectUnsupportedType,
			Message: fmt.Sprintf("unsupported ingestion_type: %d", int32(t)),
		}
	}
	return fn(raw)
}

func routed(route Route, fn Func) Func {
	return func(raw []byte) (Batch, error) {
		b, err := fn(raw)
		if err != nil {
			return Batch{}, err
		}
		b.Route = route
		return b, nil
	}
}
