package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"ingestgw/config"
	"ingestgw/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS streams (
	org_id      TEXT        NOT NULL,
	stream_type TEXT        NOT NULL,
	stream_name TEXT        NOT NULL,
	deleting    BOOLEAN     NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (org_id, stream_type, stream_name)
);
CREATE TABLE IF NOT EXISTS stream_records (
	id          BIGSERIAL PRIMARY KEY,
	org_id      TEXT   NOT NULL,
	stream_type TEXT   NOT NULL,
	stream_name TEXT   NOT NULL,
	ts          BIGINT NOT NULL,
	fields      JSONB  NOT NULL
);
CREATE INDEX IF NOT EXISTS stream_records_stream_ts
	ON stream_records (org_id, stream_type, stream_name, ts);
`

var recordColumns = []string{"org_id", "stream_type", "stream_name", "ts", "fields"}

// PostgresStore implements both StreamRegistry and Sink on one pool
type PostgresStore struct {
	pool           *pgxpool.Pool
	logger         zerolog.Logger
	maxRecordBytes int
	closeOnce      sync.Once
}

// NewPostgresStore connects, verifies the connection and creates the schema
func NewPostgresStore(ctx context.Context, cfg config.DatabaseConfig, maxRecordBytes int, logger zerolog.Logger) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "parse database dsn")
	}
	poolCfg.MaxConns = int32(cfg.MaxConnections)
	poolCfg.MinConns = int32(cfg.MinConnections)
	if d, err := time.ParseDuration(cfg.MaxIdleTime); err == nil {
		poolCfg.MaxConnIdleTime = d
	}
	if d, err := time.ParseDuration(cfg.MaxLifetime); err == nil {
		poolCfg.MaxConnLifetime = d
	}

	pool, err := pgxpool.ConnectConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "create schema")
	}

	logger.Info().
		Int32("max_conns", poolCfg.MaxConns).
		Int32("min_conns", poolCfg.MinConns).
		Msg("postgres store ready")
	return &PostgresStore{pool: pool, logger: logger, maxRecordBytes: maxRecordBytes}, nil
}

func (s *PostgresStore) Exists(ctx context.Context, key StreamKey) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM streams WHERE org_id = $1 AND stream_type = $2 AND stream_name = $3)`,
		key.OrgID, string(key.StreamType), key.StreamName,
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrapf(err, "lookup stream %s", key)
	}
	return exists, nil
}

func (s *PostgresStore) Create(ctx context.Context, key StreamKey) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO streams (org_id, stream_type, stream_name) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		key.OrgID, string(key.StreamType), key.StreamName,
	)
	if err != nil {
		return errors.Wrapf(err, "create stream %s", key)
	}
	if tag.RowsAffected() > 0 {
		s.logger.Info().Str("stream", key.String()).Msg("stream created")
	}
	return nil
}

func (s *PostgresStore) IsDeleting(ctx context.Context, key StreamKey) (bool, error) {
	var deleting bool
	err := s.pool.QueryRow(ctx,
		`SELECT deleting FROM streams WHERE org_id = $1 AND stream_type = $2 AND stream_name = $3`,
		key.OrgID, string(key.StreamType), key.StreamName,
	).Scan(&deleting)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "lookup stream %s", key)
	}
	return deleting, nil
}

// Write checks each record on its own (encoding, size) and copies the rest in
// one COPY. The COPY itself is all-or-nothing, so its failure is returned as
// an error rather than as per-record failures.
func (s *PostgresStore) Write(ctx context.Context, key StreamKey, records []models.NormalizedRecord) (WriteResult, error) {
	var res WriteResult
	rows := make([][]any, 0, len(records))
	for i, rec := range records {
		payload, err := json.Marshal(rec.Fields)
		if err != nil {
			res.Failed = append(res.Failed, FailedRecord{Index: i, Reason: fmt.Sprintf("encode fields: %v", err)})
			continue
		}
		if s.maxRecordBytes > 0 && len(payload) > s.maxRecordBytes {
			res.Failed = append(res.Failed, FailedRecord{
				Index:  i,
				Reason: fmt.Sprintf("record of %d bytes exceeds limit of %d", len(payload), s.maxRecordBytes),
			})
			continue
		}
		rows = append(rows, []any{key.OrgID, string(key.StreamType), key.StreamName, rec.Timestamp, payload})
	}
	if len(rows) == 0 {
		return res, nil
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"stream_records"}, recordColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return WriteResult{}, errors.Wrapf(err, "copy %d record(s) into %s", len(rows), key)
	}
	res.Accepted = int(n)
	return res, nil
}

func (s *PostgresStore) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Info().Msg("closing postgres store")
		s.pool.Close()
	})
	return nil
}

var (
	_ Sink           = (*PostgresStore)(nil)
	_ StreamRegistry = (*PostgresStore)(nil)
)
