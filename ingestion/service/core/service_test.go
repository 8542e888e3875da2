package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingestgw/config"
	"ingestgw/internal/models"
	"ingestgw/storage/store"
)

func newTestService(t *testing.T, mutate func(*config.GatewayConfig)) (*Service, *store.MemorySink, *store.MemoryRegistry) {
	t.Helper()
	cfg := &config.GatewayConfig{}
	if mutate != nil {
		mutate(cfg)
	}
	cfg.SetDefaults(zerolog.Nop())
	sink := store.NewMemorySink()
	reg := store.NewMemoryRegistry()
	return NewService(cfg, reg, sink, zerolog.Nop()), sink, reg
}

func appRequest(data string) *models.IngestRequest {
	return &models.IngestRequest{
		OrgID:         "acme",
		StreamType:    "logs",
		StreamName:    "app",
		Data:          []byte(data),
		IngestionType: models.IngestionJSON,
	}
}

func TestIngestSingleRecord(t *testing.T) {
	svc, sink, _ := newTestService(t, nil)

	resp := svc.Ingest(context.Background(), appRequest(`{"msg":"hi"}`))
	assert.Equal(t, models.Response{StatusCode: 200, Message: "1 record(s) accepted"}, resp)

	stored := sink.Records(appKey)
	require.Len(t, stored, 1)
	assert.Equal(t, "hi", stored[0].Fields["msg"])
	assert.NotZero(t, stored[0].Timestamp)
}

func TestIngestArrayAcceptsEveryRecord(t *testing.T) {
	svc, sink, _ := newTestService(t, nil)

	var items []string
	for i := 0; i < 25; i++ {
		items = append(items, fmt.Sprintf(`{"n":%d}`, i))
	}
	resp := svc.Ingest(context.Background(), appRequest("["+strings.Join(items, ",")+"]"))
	assert.Equal(t, models.Response{StatusCode: 200, Message: "25 record(s) accepted"}, resp)
	assert.Len(t, sink.Records(appKey), 25)
}

func TestIngestValidationFailures(t *testing.T) {
	svc, sink, reg := newTestService(t, func(c *config.GatewayConfig) { c.Limits.MaxPayloadBytes = 64 })

	tests := []struct {
		name string
		req  func(*models.IngestRequest)
		want models.Response
	}{
		{
			name: "missing org",
			req:  func(r *models.IngestRequest) { r.OrgID = "" },
			want: models.Response{StatusCode: 400, Message: "missing org_id"},
		},
		{
			name: "missing org wins over bad payload",
			req:  func(r *models.IngestRequest) { r.OrgID = ""; r.Data = []byte("{oops") },
			want: models.Response{StatusCode: 400, Message: "missing org_id"},
		},
		{
			name: "missing stream",
			req:  func(r *models.IngestRequest) { r.StreamName = "  " },
			want: models.Response{StatusCode: 400, Message: "missing stream_name"},
		},
		{
			name: "bad stream type",
			req:  func(r *models.IngestRequest) { r.StreamType = "blobs" },
			want: models.Response{StatusCode: 400, Message: "invalid stream_type: blobs"},
		},
		{
			name: "payload too large",
			req:  func(r *models.IngestRequest) { r.Data = bytes.Repeat([]byte(" "), 65) },
			want: models.Response{StatusCode: 413, Message: "payload of 65 bytes exceeds limit of 64 bytes"},
		},
		{
			name: "unsupported type",
			req:  func(r *models.IngestRequest) { r.IngestionType = 42 },
			want: models.Response{StatusCode: 400, Message: "unsupported ingestion_type: 42"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := appRequest(`{"msg":"hi"}`)
			tt.req(req)
			assert.Equal(t, tt.want, svc.Ingest(context.Background(), req))
		})
	}
	assert.Empty(t, sink.Records(appKey))
	assert.Zero(t, reg.Creates())
}

func TestIngestMalformedPayloadWritesNothing(t *testing.T) {
	svc, sink, _ := newTestService(t, nil)

	resp := svc.Ingest(context.Background(), appRequest(`[{"a":1},{"b":`))
	assert.Equal(t, int32(400), resp.StatusCode)
	assert.Empty(t, sink.Records(appKey))
}

func TestIngestMultiPartialAcceptance(t *testing.T) {
	svc, sink, _ := newTestService(t, nil)

	req := appRequest("{\"a\":1}\nnot json\n{\"a\":2}\n{\"a\":3}\n[1]\n")
	req.IngestionType = models.IngestionMulti

	resp := svc.Ingest(context.Background(), req)
	assert.Equal(t, int32(207), resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Message, "3 record(s) accepted, 2 record(s) rejected"), resp.Message)
	assert.Len(t, sink.Records(appKey), 3)
}

func TestIngestMultiWithOnlyBadLines(t *testing.T) {
	svc, sink, reg := newTestService(t, nil)

	req := appRequest("not json\n[1]\n")
	req.IngestionType = models.IngestionMulti

	resp := svc.Ingest(context.Background(), req)
	assert.Equal(t, int32(207), resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Message, "0 record(s) accepted, 2 record(s) rejected"), resp.Message)
	assert.Empty(t, sink.Records(appKey))
	assert.Zero(t, reg.Creates())
}

func TestIngestQuotaRejectsWholeBatch(t *testing.T) {
	svc, sink, _ := newTestService(t, func(c *config.GatewayConfig) {
		c.Quota.Overrides = map[string]config.QuotaLimits{
			"acme": {RecordsPerSecond: 0.001, RecordBurst: 2},
		}
	})

	resp := svc.Ingest(context.Background(), appRequest(`[{"a":1},{"a":2},{"a":3}]`))
	assert.Equal(t, int32(429), resp.StatusCode)
	assert.Empty(t, sink.Records(appKey))

	resp = svc.Ingest(context.Background(), appRequest(`[{"a":1},{"a":2}]`))
	assert.Equal(t, int32(200), resp.StatusCode)

	other := appRequest(`[{"a":1},{"a":2},{"a":3}]`)
	other.OrgID = "globex"
	assert.Equal(t, int32(200), svc.Ingest(context.Background(), other).StatusCode)
}

func TestIngestGzipContentEncoding(t *testing.T) {
	svc, sink, _ := newTestService(t, nil)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"msg":"compressed"}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	req := appRequest("")
	req.Data = buf.Bytes()
	req.Metadata = map[string]string{"Content-Encoding": "gzip"}

	resp := svc.Ingest(context.Background(), req)
	assert.Equal(t, models.Response{StatusCode: 200, Message: "1 record(s) accepted"}, resp)
	require.Len(t, sink.Records(appKey), 1)
	assert.Equal(t, "compressed", sink.Records(appKey)[0].Fields["msg"])
}

func TestIngestNormalizesStreamName(t *testing.T) {
	svc, sink, _ := newTestService(t, nil)

	req := appRequest(`{"msg":"hi"}`)
	req.StreamName = "App-Logs"
	req.StreamType = ""
	require.Equal(t, int32(200), svc.Ingest(context.Background(), req).StatusCode)
	assert.Len(t, sink.Records(store.StreamKey{OrgID: "acme", StreamName: "app_logs", StreamType: models.StreamTypeLogs}), 1)
}

type panickingSink struct{ store.MemorySink }

func (*panickingSink) Write(context.Context, store.StreamKey, []models.NormalizedRecord) (store.WriteResult, error) {
	panic("boom")
}

func TestIngestRecoversFromPanics(t *testing.T) {
	cfg := &config.GatewayConfig{}
	cfg.SetDefaults(zerolog.Nop())
	svc := NewService(cfg, store.NewMemoryRegistry(), &panickingSink{}, zerolog.Nop())

	resp := svc.Ingest(context.Background(), appRequest(`{"msg":"hi"}`))
	assert.Equal(t, models.Response{StatusCode: 500, Message: "internal error: boom"}, resp)
}
