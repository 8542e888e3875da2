package decoder

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"ingestgw/internal/models"
)

// pubsubAttributePrefix namespaces Pub/Sub message attributes merged into records
const pubsubAttributePrefix = "attributes_"

// decodeGCP unwraps a Pub/Sub push envelope:
//
//	{"message":{"data":"<base64>","attributes":{..},"messageId":"..","publishTime":".."},"subscription":".."}
func decodeGCP(raw []byte) (Batch, error) {
	if !gjson.ValidBytes(raw) {
		return Batch{}, malformed("invalid pub/sub envelope: not valid JSON")
	}
	msg := gjson.GetBytes(raw, "message")
	if !msg.IsObject() {
		return Batch{}, malformed("invalid pub/sub envelope: missing message")
	}
	data := msg.Get("data")
	if data.Type != gjson.String {
		return Batch{}, malformed("invalid pub/sub envelope: missing message.data")
	}
	inner, err := decodeBase64(data.Str)
	if err != nil {
		return Batch{}, malformed("invalid pub/sub message data: %v", err)
	}

	b, err := decodeJSONOrMulti(inner)
	if err != nil {
		return Batch{}, err
	}

	var publishTime int64
	if pt, err := time.Parse(time.RFC3339Nano, msg.Get("publishTime").String()); err == nil {
		publishTime = pt.UnixMicro()
	}
	attrs := msg.Get("attributes")
	for i := range b.Records {
		rec := &b.Records[i]
		if attrs.IsObject() {
			attrs.ForEach(func(k, v gjson.Result) bool {
				key := pubsubAttributePrefix + k.String()
				if _, exists := rec.Fields[key]; !exists {
					rec.Fields[key] = v.String()
				}
				return true
			})
		}
		if rec.Timestamp == 0 {
			rec.Timestamp = publishTime
		}
	}
	return b, nil
}

// decodeFirehose unwraps a Kinesis Data Firehose HTTP endpoint delivery:
//
//	{"requestId":"..","timestamp":1700000000000,"records":[{"data":"<base64>"}]}
//
// A record that cannot be decoded is reported on its own and does not fail
// the delivery.
func decodeFirehose(raw []byte) (Batch, error) {
	if !gjson.ValidBytes(raw) {
		return Batch{}, malformed("invalid firehose envelope: not valid JSON")
	}
	records := gjson.GetBytes(raw, "records")
	if !records.IsArray() {
		return Batch{}, malformed("invalid firehose envelope: missing records array")
	}
	deliveredAt := gjson.GetBytes(raw, "timestamp").Int() * 1e3

	var b Batch
	for i, rec := range records.Array() {
		recs, err := decodeFirehoseRecord(rec)
		if err != nil {
			b.Errors = append(b.Errors, models.RecordError{Index: i, Stage: models.StageDecode, Reason: err.Error()})
			continue
		}
		for j := range recs {
			if recs[j].Timestamp == 0 {
				recs[j].Timestamp = deliveredAt
			}
		}
		b.Records = append(b.Records, recs...)
	}
	return b, nil
}

func decodeFirehoseRecord(rec gjson.Result) ([]models.NormalizedRecord, error) {
	data := rec.Get("data")
	if data.Type != gjson.String {
		return nil, fmt.Errorf("missing data")
	}
	payload, err := decodeBase64(data.Str)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %v", err)
	}
	if isGzip(payload) {
		if payload, err = gunzip(payload, defaultMaxDecompressedBytes); err != nil {
			return nil, fmt.Errorf("invalid gzip data: %v", err)
		}
	}
	if gjson.ValidBytes(payload) && gjson.GetBytes(payload, "logEvents").IsArray() {
		return cloudwatchRecords(payload), nil
	}

	b, err := decodeJSONOrMulti(payload)
	if err != nil {
		return nil, err
	}
	if len(b.Errors) > 0 {
		return nil, fmt.Errorf("%d malformed line(s), first: %s", len(b.Errors), b.Errors[0].Reason)
	}
	return b.Records, nil
}

// cloudwatchRecords expands a CloudWatch Logs subscription payload into one
// record per log event. Control messages carry no events worth keeping.
func cloudwatchRecords(payload []byte) []models.NormalizedRecord {
	if gjson.GetBytes(payload, "messageType").String() == "CONTROL_MESSAGE" {
		return nil
	}
	owner := gjson.GetBytes(payload, "owner").String()
	group := gjson.GetBytes(payload, "logGroup").String()
	stream := gjson.GetBytes(payload, "logStream").String()

	events := gjson.GetBytes(payload, "logEvents").Array()
	out := make([]models.NormalizedRecord, 0, len(events))
	for _, ev := range events {
		fields := map[string]any{
			"id":         ev.Get("id").String(),
			"message":    ev.Get("message").String(),
			"owner":      owner,
			"log_group":  group,
			"log_stream": stream,
		}
		out = append(out, models.NormalizedRecord{
			Fields:    fields,
			Timestamp: ev.Get("timestamp").Int() * 1e3,
		})
	}
	return out
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}
