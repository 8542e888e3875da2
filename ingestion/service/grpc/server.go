package grpc

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	core "ingestgw/ingestion/service/core"
	"ingestgw/internal/metrics"
	"ingestgw/internal/models"
	pb "ingestgw/proto/ingestpb"
)

// Server implements the cluster_rpc.Ingest service
type Server struct {
	pb.UnimplementedIngestServer
	svc    *core.Service
	logger zerolog.Logger
}

// NewServer creates a new gRPC Server instance
func NewServer(s *core.Service, l zerolog.Logger) *Server {
	return &Server{svc: s, logger: l.With().Str("transport", "grpc").Logger()}
}

// Ingest never fails at the RPC level; every outcome travels in the response
// status code.
func (s *Server) Ingest(ctx context.Context, req *pb.IngestionRequest) (*pb.IngestionResponse, error) {
	start := time.Now()

	resp := s.svc.Ingest(ctx, &models.IngestRequest{
		OrgID:         req.GetOrgId(),
		StreamType:    req.GetStreamType(),
		StreamName:    req.GetStreamName(),
		Data:          req.GetData(),
		IngestionType: models.IngestionType(req.GetIngestionType()),
		Metadata:      req.GetMetadata(),
	})
	metrics.ObserveRequest("grpc", resp.StatusCode, start)

	ev := s.logger.Debug()
	if resp.StatusCode >= 500 {
		ev = s.logger.Warn()
	}
	ev.Str("org_id", req.GetOrgId()).
		Str("stream", req.GetStreamName()).
		Int32("status_code", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("ingest call")

	return &pb.IngestionResponse{StatusCode: resp.StatusCode, Message: resp.Message}, nil
}

var _ pb.IngestServer = (*Server)(nil)
