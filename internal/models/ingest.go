package models

import (
	"fmt"
	"strings"
)

// StreamType is the kind of data a stream holds
type StreamType string

const (
	StreamTypeLogs    StreamType = "logs"
	StreamTypeMetrics StreamType = "metrics"
	StreamTypeTraces  StreamType = "traces"
	StreamTypeOther   StreamType = "other"
)

// ParseStreamType maps the wire value onto a StreamType. An empty value means logs.
func ParseStreamType(s string) (StreamType, bool) {
	switch StreamType(strings.ToLower(strings.TrimSpace(s))) {
	case "", StreamTypeLogs:
		return StreamTypeLogs, true
	case StreamTypeMetrics:
		return StreamTypeMetrics, true
	case StreamTypeTraces:
		return StreamTypeTraces, true
	case StreamTypeOther:
		return StreamTypeOther, true
	}
	return "", false
}

// IngestionType selects the decoder for a payload. Values match the wire enum.
type IngestionType int32

const (
	IngestionJSON      IngestionType = 0
	IngestionMulti     IngestionType = 1
	IngestionGCP       IngestionType = 2
	IngestionKinesisFH IngestionType = 3
	IngestionRUM       IngestionType = 4
	IngestionUsage     IngestionType = 5
)

func (t IngestionType) String() string {
	switch t {
	case IngestionJSON:
		return "json"
	case IngestionMulti:
		return "multi"
	case IngestionGCP:
		return "gcp"
	case IngestionKinesisFH:
		return "kinesis_firehose"
	case IngestionRUM:
		return "rum"
	case IngestionUsage:
		return "usage"
	default:
		return fmt.Sprintf("unknown(%d)", int32(t))
	}
}

// IngestRequest is one call's input, independent of the transport it came from.
// It lives only for the duration of the call.
type IngestRequest struct {
	OrgID         string
	StreamType    string // raw wire value, parsed by the validator
	StreamName    string
	Data          []byte
	IngestionType IngestionType
	Metadata      map[string]string
}

// TimestampField is the implicit timestamp column carried by every record
const TimestampField = "_timestamp"

// NormalizedRecord is one decoded unit of a batch
type NormalizedRecord struct {
	Fields map[string]any
	// Timestamp in microseconds since epoch; zero when the payload carried none
	Timestamp int64
}

// Record stages used in RecordError.Stage
const (
	StageDecode = "decode"
	StageWrite  = "write"
)

// RecordError describes one record that did not make it into storage.
// Index is the position in the payload for decode errors and the position in
// the decoded batch for write errors.
type RecordError struct {
	Index  int
	Stage  string
	Reason string
}

func (e RecordError) String() string {
	return fmt.Sprintf("%s #%d: %s", e.Stage, e.Index, e.Reason)
}
