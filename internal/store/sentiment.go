package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cryptobook/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var sentimentHeader = []string{"", "time", "crypto", "pos", "neg", "neu", "count"}

// SentimentLog is the append-only sentiment table backed by one CSV file.
type SentimentLog struct {
	path   string
	tracer trace.Tracer
}

func NewSentimentLog(path string, tracer trace.Tracer) *SentimentLog {
	return &SentimentLog{path: path, tracer: tracer}
}

func (l *SentimentLog) Path() string { return l.path }

// Load reads the whole table. A missing file is an empty table.
func (l *SentimentLog) Load(ctx context.Context) ([]domain.SentimentRow, error) {
	_, span := l.tracer.Start(ctx, "sentiment-log.load")
	defer span.End()

	records, exists, err := readRecords(l.path)
	if err != nil {
		return nil, err
	}
	if !exists || len(records) == 0 {
		return []domain.SentimentRow{}, nil
	}

	cols := columnIndex(records[0])
	for _, name := range sentimentHeader[1:] {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("sentiment header missing %s column", name)
		}
	}

	rows := make([]domain.SentimentRow, 0, len(records)-1)
	for n, record := range records[1:] {
		line := n + 2
		index, err := parseIndex(cell(record, 0), n)
		if err != nil {
			return nil, fmt.Errorf("sentiment line %d: %w", line, err)
		}
		ts, err := parseTimestamp(cell(record, cols["time"]))
		if err != nil {
			return nil, fmt.Errorf("sentiment line %d: %w", line, err)
		}
		row := domain.SentimentRow{
			Index:  index,
			Time:   ts,
			Crypto: cell(record, cols["crypto"]),
		}
		counts := []struct {
			name string
			dst  *int
		}{
			{"pos", &row.Positive},
			{"neg", &row.Negative},
			{"neu", &row.Neutral},
			{"count", &row.Count},
		}
		for _, c := range counts {
			v, err := parseCount(cell(record, cols[c.name]))
			if err != nil {
				return nil, fmt.Errorf("sentiment line %d column %s: %w", line, c.name, err)
			}
			*c.dst = v
		}
		rows = append(rows, row)
	}

	span.SetAttributes(attribute.Int("rows", len(rows)))
	return rows, nil
}

// AppendAndPersist appends rows with fresh indices and atomically rewrites
// the file.
func (l *SentimentLog) AppendAndPersist(ctx context.Context, rows []domain.SentimentRow) (AppendResult, error) {
	ctx, span := l.tracer.Start(ctx, "sentiment-log.append-and-persist")
	defer span.End()

	existing, err := l.Load(ctx)
	if err != nil {
		return AppendResult{}, fmt.Errorf("load sentiment: %w", err)
	}
	before := len(existing)

	var next int64
	if before > 0 {
		next = existing[before-1].Index + 1
	}
	all := existing
	for _, row := range rows {
		row.Index = next
		next++
		all = append(all, row)
	}

	records := make([][]string, 0, len(all)+1)
	records = append(records, sentimentHeader)
	for _, row := range all {
		records = append(records, []string{
			strconv.FormatInt(row.Index, 10),
			formatTimestamp(row.Time),
			row.Crypto,
			strconv.Itoa(row.Positive),
			strconv.Itoa(row.Negative),
			strconv.Itoa(row.Neutral),
			strconv.Itoa(row.Count),
		})
	}
	if err := writeRecordsAtomic(l.path, records); err != nil {
		return AppendResult{}, fmt.Errorf("persist sentiment: %w", err)
	}

	span.SetAttributes(attribute.Int("appended", len(rows)))
	return AppendResult{Before: before, Appended: len(rows), Total: len(all)}, nil
}

func parseCount(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	// pandas writes integer columns holding NaN as floats ("3.0").
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q", v)
	}
	return int(f), nil
}
