package http

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ingestgw/config"
	core "ingestgw/ingestion/service/core"
	"ingestgw/ingestion/decoder"
	"ingestgw/internal/metrics"
	"ingestgw/internal/models"
)

// formats maps the last path segment of the ingest route onto a decoder
var formats = map[string]models.IngestionType{
	"_json":             models.IngestionJSON,
	"_multi":            models.IngestionMulti,
	"_gcp":              models.IngestionGCP,
	"_kinesis_firehose": models.IngestionKinesisFH,
	"_rum":              models.IngestionRUM,
	"_usage":            models.IngestionUsage,
}

// ingestResponse is the body of every ingest reply
type ingestResponse struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// IngestHandler serves the HTTP mirror of the Ingest RPC
type IngestHandler struct {
	svc          *core.Service
	maxBodyBytes int64
	logger       zerolog.Logger
}

// NewIngestHandler creates a new IngestHandler. Bodies larger than
// maxBodyBytes are cut one byte past the limit so the size check still fires.
func NewIngestHandler(s *core.Service, maxBodyBytes int, l zerolog.Logger) *IngestHandler {
	return &IngestHandler{svc: s, maxBodyBytes: int64(maxBodyBytes), logger: l.With().Str("transport", "http").Logger()}
}

// NewEcho builds the router. Health and metrics paths come from mon.
func NewEcho(h *IngestHandler, mon config.GatewayMonitoringConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.POST("/api/:org/:stream/:format", h.Ingest)
	e.GET(mon.HealthCheckPath, h.HealthCheck)
	if mon.EnableMetrics {
		e.GET(mon.MetricsPath, echo.WrapHandler(promhttp.Handler()))
	}
	return e
}

// Ingest handles POST /api/:org/:stream/:format
func (h *IngestHandler) Ingest(c echo.Context) error {
	start := time.Now()

	format := c.Param("format")
	ingestionType, ok := formats[format]
	if !ok {
		return h.respond(c, start, models.Response{
			StatusCode: http.StatusNotFound,
			Message:    "unknown ingest format: " + format,
		})
	}

	body := c.Request().Body
	if h.maxBodyBytes > 0 {
		body = io.NopCloser(io.LimitReader(body, h.maxBodyBytes+1))
	}
	data, err := io.ReadAll(body)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to read request body")
		return h.respond(c, start, models.Response{
			StatusCode: http.StatusBadRequest,
			Message:    "failed to read request body",
		})
	}

	var metadata map[string]string
	if enc := strings.TrimSpace(c.Request().Header.Get(echo.HeaderContentEncoding)); enc != "" {
		metadata = map[string]string{decoder.MetadataContentEncoding: enc}
	}

	resp := h.svc.Ingest(c.Request().Context(), &models.IngestRequest{
		OrgID:         c.Param("org"),
		StreamType:    c.QueryParam("type"),
		StreamName:    c.Param("stream"),
		Data:          data,
		IngestionType: ingestionType,
		Metadata:      metadata,
	})
	return h.respond(c, start, resp)
}

// HealthCheck handles GET /health requests
func (h *IngestHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339Nano),
		"service":   "ingest-gateway",
	})
}

func (h *IngestHandler) respond(c echo.Context, start time.Time, resp models.Response) error {
	metrics.ObserveRequest("http", resp.StatusCode, start)
	return c.JSON(int(resp.StatusCode), ingestResponse{Code: resp.StatusCode, Message: resp.Message})
}
