package decoder

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"time"

	"ingestgw/internal/models"
)

// timestampKeys are checked in order; the first parseable one wins
var timestampKeys = []string{models.TimestampField, "@timestamp", "timestamp"}

// decodeJSON accepts a single object or an array of objects
func decodeJSON(raw []byte) (Batch, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Batch{}, malformed("empty payload")
	}

	v, err := parseValue(trimmed)
	if err != nil {
		return Batch{}, malformed("invalid JSON: %v", err)
	}

	var b Batch
	switch t := v.(type) {
	case map[string]any:
		b.Records = []models.NormalizedRecord{newRecord(t)}
	case []any:
		b.Records = make([]models.NormalizedRecord, 0, len(t))
		for i, elem := range t {
			obj, ok := elem.(map[string]any)
			if !ok {
				return Batch{}, malformed("array element %d is not a JSON object", i)
			}
			b.Records = append(b.Records, newRecord(obj))
		}
	default:
		return Batch{}, malformed("payload must be a JSON object or an array of objects")
	}
	return b, nil
}

// decodeMulti accepts newline-delimited JSON objects. Bad lines become
// per-record errors indexed by line number.
func decodeMulti(raw []byte) (Batch, error) {
	var b Batch
	for i, line := range bytes.Split(raw, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		obj, err := parseObject(line)
		if err != nil {
			b.Errors = append(b.Errors, models.RecordError{Index: i, Stage: models.StageDecode, Reason: err.Error()})
			continue
		}
		b.Records = append(b.Records, newRecord(obj))
	}
	if len(b.Records) == 0 && len(b.Errors) == 0 {
		return Batch{}, malformed("empty payload")
	}
	return b, nil
}

// decodeJSONOrMulti is used for envelope contents, which may hold either form
func decodeJSONOrMulti(raw []byte) (Batch, error) {
	b, err := decodeJSON(raw)
	if err == nil {
		return b, nil
	}
	if bytes.IndexByte(bytes.TrimSpace(raw), '\n') >= 0 {
		return decodeMulti(raw)
	}
	return Batch{}, err
}

func parseValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

func parseObject(data []byte) (map[string]any, error) {
	v, err := parseValue(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("not a JSON object")
	}
	return obj, nil
}

// newRecord takes ownership of fields
func newRecord(fields map[string]any) models.NormalizedRecord {
	rec := models.NormalizedRecord{Fields: fields}
	for _, key := range timestampKeys {
		v, ok := fields[key]
		if !ok {
			continue
		}
		if ts, ok := parseTimestamp(v); ok {
			rec.Timestamp = ts
			if key == models.TimestampField {
				delete(fields, key)
			}
			break
		}
	}
	return rec
}

// parseTimestamp returns microseconds. Numbers are scaled by magnitude so
// seconds, millis, micros and nanos are all accepted.
func parseTimestamp(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return scaleToMicros(n), n > 0
		}
		if f, err := t.Float64(); err == nil && f > 0 {
			return scaleToMicros(int64(f)), true
		}
	case float64:
		return scaleToMicros(int64(t)), t > 0
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return ts.UnixMicro(), true
		}
		if n, err := strconv.ParseInt(t, 10, 64); err == nil && n > 0 {
			return scaleToMicros(n), true
		}
	}
	return 0, false
}

func scaleToMicros(n int64) int64 {
	switch {
	case n < 1e11: // seconds
		return n * 1e6
	case n < 1e14: // milliseconds
		return n * 1e3
	case n < 1e17: // microseconds
		return n
	default: // nanoseconds
		return n / 1e3
	}
}
