package grpc

import (
	"bytes"
	"context"
	"net"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"ingestgw/config"
	core "ingestgw/ingestion/service/core"
	"ingestgw/internal/models"
	pb "ingestgw/proto/ingestpb"
	"ingestgw/storage/store"
)

// lockedBuffer collects log output written from server goroutines
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func dialTestServer(t *testing.T) (pb.IngestClient, *store.MemorySink) {
	t.Helper()
	return dialTestServerWithLogger(t, zerolog.Nop())
}

func dialTestServerWithLogger(t *testing.T, logger zerolog.Logger) (pb.IngestClient, *store.MemorySink) {
	t.Helper()

	cfg := &config.GatewayConfig{}
	cfg.SetDefaults(zerolog.Nop())
	sink := store.NewMemorySink()
	svc := core.NewService(cfg, store.NewMemoryRegistry(), sink, zerolog.Nop())

	lis := bufconn.Listen(1 << 20)
	srv := grpclib.NewServer()
	pb.RegisterIngestServer(srv, NewServer(svc, logger))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return pb.NewIngestClient(conn), sink
}

func TestIngestOverGRPC(t *testing.T) {
	client, sink := dialTestServer(t)

	resp, err := client.Ingest(context.Background(), &pb.IngestionRequest{
		OrgId:         "acme",
		StreamType:    "logs",
		StreamName:    "app",
		Data:          []byte(`{"msg":"hi"}`),
		IngestionType: pb.IngestionType_JSON.Enum(),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(200), resp.GetStatusCode())
	assert.Equal(t, "1 record(s) accepted", resp.GetMessage())

	key := store.StreamKey{OrgID: "acme", StreamName: "app", StreamType: models.StreamTypeLogs}
	assert.Len(t, sink.Records(key), 1)
}

func TestIngestOverGRPCReportsRejectionsInBand(t *testing.T) {
	client, _ := dialTestServer(t)

	resp, err := client.Ingest(context.Background(), &pb.IngestionRequest{
		StreamName: "app",
		Data:       []byte(`{"msg":"hi"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(400), resp.GetStatusCode())
	assert.Equal(t, "missing org_id", resp.GetMessage())

	resp, err = client.Ingest(context.Background(), &pb.IngestionRequest{
		OrgId:         "acme",
		StreamName:    "app",
		Data:          []byte("{\"a\":1}\nbroken\n"),
		IngestionType: pb.IngestionType_MULTI.Enum(),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(207), resp.GetStatusCode())
}

func TestIngestOverGRPCLogsEachCall(t *testing.T) {
	var out lockedBuffer
	client, _ := dialTestServerWithLogger(t, zerolog.New(&out).Level(zerolog.DebugLevel))

	resp, err := client.Ingest(context.Background(), &pb.IngestionRequest{
		OrgId:      "acme",
		StreamName: "app",
		StreamType: "nope",
		Data:       []byte(`{"msg":"hi"}`),
	})
	require.NoError(t, err)
	require.Equal(t, int32(400), resp.GetStatusCode())

	logged := out.String()
	assert.Contains(t, logged, `"transport":"grpc"`)
	assert.Contains(t, logged, `"org_id":"acme"`)
	assert.Contains(t, logged, `"status_code":400`)
	assert.Contains(t, logged, `"message":"ingest call"`)
}
