package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"

	apiconfig "ingestgw/config"
	core "ingestgw/ingestion/service/core"
	grpchandler "ingestgw/ingestion/service/grpc"
	httphandler "ingestgw/ingestion/service/http"
	"ingestgw/internal/logging"
	"ingestgw/internal/messaging/producer"
	pb "ingestgw/proto/ingestpb"
	"ingestgw/storage/store"
)

func main() {
	configPath := pflag.StringP("config", "c", "./config/ingestion.defaults.yml", "path to the gateway configuration file")
	pflag.Parse()

	bootLogger := logging.New("info", false, os.Stdout)
	bootLogger.Info().Msg("Starting ingest gateway...")

	// 1. Load gateway configuration
	cfg, err := apiconfig.LoadGatewayConfig(*configPath, bootLogger)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("Failed to load gateway configuration")
	}
	logger := logging.New(cfg.Monitoring.LogLevel, cfg.Monitoring.LogPretty, os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Initialize backends
	registry, sink, closeBackends := openBackends(ctx, cfg, logger)
	defer closeBackends()

	// 3. Create core Service and transports
	coreService := core.NewService(cfg, registry, sink, logger)
	ingestHTTPHandler := httphandler.NewIngestHandler(coreService, cfg.Limits.MaxPayloadBytes, logger)
	ingestGrpcService := grpchandler.NewServer(coreService, logger)

	var wg sync.WaitGroup

	// 4. [Conditional startup] HTTP server
	var httpServer *http.Server
	if cfg.HttpListenAddr != "" {
		httpServer = &http.Server{
			Addr:           cfg.HttpListenAddr,
			Handler:        httphandler.NewEcho(ingestHTTPHandler, cfg.Monitoring),
			ReadTimeout:    cfg.HttpServer.ReadTimeout,
			WriteTimeout:   cfg.HttpServer.WriteTimeout,
			IdleTimeout:    cfg.HttpServer.IdleTimeout,
			MaxHeaderBytes: cfg.HttpServer.MaxHeaderBytes,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info().Str("addr", cfg.HttpListenAddr).Msg("HTTP server listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("HTTP server startup failed")
			}
			logger.Info().Msg("HTTP server stopped listening.")
		}()
	} else {
		logger.Info().Msg("http_listen_addr not configured, skipping HTTP server startup.")
	}

	// 5. [Conditional startup] gRPC server
	var grpcServer *grpc.Server
	if cfg.GrpcListenAddr != "" {
		lis, err := net.Listen("tcp", cfg.GrpcListenAddr)
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.GrpcListenAddr).Msg("Unable to listen on gRPC port")
		}
		grpcServer = grpc.NewServer(grpc.MaxRecvMsgSize(cfg.GrpcMaxRecvMsg))
		pb.RegisterIngestServer(grpcServer, ingestGrpcService)
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info().Str("addr", cfg.GrpcListenAddr).Msg("gRPC server listening")
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				logger.Fatal().Err(err).Msg("gRPC server startup failed")
			}
			logger.Info().Msg("gRPC server stopped listening.")
		}()
	} else {
		logger.Info().Msg("grpc_listen_addr not configured, skipping gRPC server startup.")
	}

	// 6. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info().Stringer("signal", sig).Msg("Received shutdown signal, starting graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		logger.Info().Msg("Shutting down HTTP server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("HTTP server shutdown failed")
		}
	}
	if grpcServer != nil {
		logger.Info().Msg("Shutting down gRPC server...")
		grpcServer.GracefulStop()
	}

	// Wait for HTTP server and gRPC server to finish
	wg.Wait()
	logger.Info().Msg("All servers stopped. Ingest gateway shutdown.")
}

// openBackends builds the stream registry and sink named by the configuration.
// The returned func closes everything that was opened.
func openBackends(ctx context.Context, cfg *apiconfig.GatewayConfig, logger zerolog.Logger) (store.StreamRegistry, store.Sink, func()) {
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Error().Err(err).Msg("backend close failed")
			}
		}
	}

	var pg *store.PostgresStore
	if cfg.NeedsDatabase() {
		logger.Info().Msg("Initializing database connection...")
		var err error
		pg, err = store.NewPostgresStore(ctx, cfg.Database, cfg.Sink.MaxRecordBytes, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize database store")
		}
		closers = append(closers, pg.Close)
	}

	var registry store.StreamRegistry
	switch cfg.Registry.Type {
	case apiconfig.BackendPostgres:
		registry = pg
	default:
		registry = store.NewMemoryRegistry()
	}

	var sink store.Sink
	switch cfg.Sink.Type {
	case apiconfig.BackendPostgres:
		sink = pg
	case apiconfig.BackendKafka:
		logger.Info().Msg("Initializing Kafka producer...")
		kafkaProducer, err := producer.NewKafkaProducer(cfg.KafkaProducer, logger)
		if err != nil {
			closeAll()
			logger.Fatal().Err(err).Msg("Failed to initialize Kafka producer")
		}
		kafkaSink := producer.NewSink(kafkaProducer, cfg.Sink.MaxRecordBytes, logger)
		closers = append(closers, kafkaSink.Close)
		sink = kafkaSink
	default:
		logger.Warn().Msg("Using in-memory sink; records are not persisted")
		sink = store.NewMemorySink()
	}

	logger.Info().Str("registry", cfg.Registry.Type).Str("sink", cfg.Sink.Type).Msg("backends ready")
	return registry, sink, closeAll
}
