package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"ingestgw/internal/models"
	"ingestgw/storage/store"
)

// recordMessage is the JSON value published for every record
type recordMessage struct {
	OrgID      string            `json:"org_id"`
	StreamType models.StreamType `json:"stream_type"`
	StreamName string            `json:"stream_name"`
	Timestamp  int64             `json:"_timestamp"`
	Fields     map[string]any    `json:"fields"`
}

// Sink writes stream records through a Producer
type Sink struct {
	producer       Producer
	maxRecordBytes int
	logger         zerolog.Logger
}

// NewSink wraps p as a store.Sink. Records whose encoding exceeds
// maxRecordBytes are failed individually; zero disables the check.
func NewSink(p Producer, maxRecordBytes int, logger zerolog.Logger) *Sink {
	return &Sink{producer: p, maxRecordBytes: maxRecordBytes, logger: logger}
}

func (s *Sink) Write(ctx context.Context, key store.StreamKey, records []models.NormalizedRecord) (store.WriteResult, error) {
	var res store.WriteResult
	msgs := make([]Message, 0, len(records))
	index := make([]int, 0, len(records)) // message position -> record index

	for i, rec := range records {
		value, err := json.Marshal(recordMessage{
			OrgID:      key.OrgID,
			StreamType: key.StreamType,
			StreamName: key.StreamName,
			Timestamp:  rec.Timestamp,
			Fields:     rec.Fields,
		})
		if err != nil {
			res.Failed = append(res.Failed, store.FailedRecord{Index: i, Reason: "encode: " + err.Error()})
			continue
		}
		if s.maxRecordBytes > 0 && len(value) > s.maxRecordBytes {
			res.Failed = append(res.Failed, store.FailedRecord{
				Index:  i,
				Reason: fmt.Sprintf("record of %d bytes exceeds limit of %d bytes", len(value), s.maxRecordBytes),
			})
			continue
		}
		msgs = append(msgs, Message{Stream: key, Key: []byte(key.String()), Value: value})
		index = append(index, i)
	}
	if len(msgs) == 0 {
		return res, nil
	}

	err := s.producer.PublishBatch(ctx, msgs)
	var berr *BatchError
	switch {
	case err == nil:
		res.Accepted = len(msgs)
	case errors.As(err, &berr):
		for pos, merr := range berr.Errs {
			if pos >= len(index) {
				break
			}
			if merr != nil {
				res.Failed = append(res.Failed, store.FailedRecord{Index: index[pos], Reason: merr.Error()})
			} else {
				res.Accepted++
			}
		}
	default:
		return store.WriteResult{}, err
	}
	// pre-check failures were collected before broker failures
	sort.Slice(res.Failed, func(a, b int) bool { return res.Failed[a].Index < res.Failed[b].Index })
	return res, nil
}

func (s *Sink) Close() error {
	return s.producer.Close()
}

var _ store.Sink = (*Sink)(nil)
