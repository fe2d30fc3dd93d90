package repository

import (
	"context"
	"fmt"

	"cryptobook/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const createMirrorTables = `
CREATE TABLE IF NOT EXISTS market_history (
    ts          TIMESTAMPTZ NOT NULL,
    category    TEXT        NOT NULL,
    symbol      TEXT        NOT NULL,
    value       NUMERIC     NOT NULL,
    PRIMARY KEY (ts, category, symbol)
);

CREATE INDEX IF NOT EXISTS idx_market_history_symbol_ts
    ON market_history (symbol, category, ts DESC);

CREATE TABLE IF NOT EXISTS sentiment_history (
    ts          TIMESTAMPTZ NOT NULL,
    crypto      TEXT        NOT NULL,
    pos         INTEGER     NOT NULL,
    neg         INTEGER     NOT NULL,
    neu         INTEGER     NOT NULL,
    count       INTEGER     NOT NULL,
    PRIMARY KEY (ts, crypto)
);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// MirrorRepository copies appended CSV rows into Postgres. The CSV files stay
// the system of record; rows already mirrored are ignored.
type MirrorRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewMirrorRepository(pool PgxPool, tracer trace.Tracer) *MirrorRepository {
	return &MirrorRepository{pool: pool, tracer: tracer}
}

func (r *MirrorRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "mirror-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createMirrorTables)
	return err
}

// MirrorHistory stores one market_history row per non-null cell of rows.
func (r *MirrorRepository) MirrorHistory(ctx context.Context, rows []domain.HistoryRow) (int, error) {
	_, span := r.tracer.Start(ctx, "mirror-repo.mirror-history")
	defer span.End()

	batch := &pgx.Batch{}
	for _, row := range rows {
		for symbol, value := range row.Values {
			batch.Queue(
				`INSERT INTO market_history (ts, category, symbol, value)
				 VALUES ($1, $2, $3, $4::numeric)
				 ON CONFLICT (ts, category, symbol) DO NOTHING`,
				row.Timestamp.UTC(), string(row.Category), symbol, value.String(),
			)
		}
	}
	span.SetAttributes(attribute.Int("cells", batch.Len()))
	if err := r.send(ctx, batch); err != nil {
		return 0, fmt.Errorf("mirror history: %w", err)
	}
	return batch.Len(), nil
}

func (r *MirrorRepository) MirrorSentiment(ctx context.Context, rows []domain.SentimentRow) (int, error) {
	_, span := r.tracer.Start(ctx, "mirror-repo.mirror-sentiment")
	defer span.End()

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(
			`INSERT INTO sentiment_history (ts, crypto, pos, neg, neu, count)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (ts, crypto) DO NOTHING`,
			row.Time.UTC(), row.Crypto, row.Positive, row.Negative, row.Neutral, row.Count,
		)
	}
	if err := r.send(ctx, batch); err != nil {
		return 0, fmt.Errorf("mirror sentiment: %w", err)
	}
	return batch.Len(), nil
}

func (r *MirrorRepository) send(ctx context.Context, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
