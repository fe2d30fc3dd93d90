package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"cryptobook/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// HistoryLog is the append-only market history table backed by one CSV file.
// It has no locking: callers must not run two writers at once.
type HistoryLog struct {
	path   string
	tracer trace.Tracer
}

func NewHistoryLog(path string, tracer trace.Tracer) *HistoryLog {
	return &HistoryLog{path: path, tracer: tracer}
}

func (l *HistoryLog) Path() string { return l.path }

// Load reads the whole table. A missing file is an empty table.
func (l *HistoryLog) Load(ctx context.Context) (*domain.HistoryTable, error) {
	_, span := l.tracer.Start(ctx, "history-log.load")
	defer span.End()

	records, exists, err := readRecords(l.path)
	if err != nil {
		return nil, err
	}
	table := &domain.HistoryTable{}
	if !exists || len(records) == 0 {
		return table, nil
	}

	header := records[0]
	cols := columnIndex(header)
	catCol, ok := cols[domain.ColumnCategory]
	if !ok {
		return nil, fmt.Errorf("history header missing %s column", domain.ColumnCategory)
	}
	tsCol, ok := cols[domain.ColumnTimestamp]
	if !ok {
		return nil, fmt.Errorf("history header missing %s column", domain.ColumnTimestamp)
	}

	symbolCols := make([]int, 0, len(header))
	for i := 1; i < len(header); i++ {
		if i == catCol || i == tsCol {
			continue
		}
		table.Symbols = append(table.Symbols, strings.TrimSpace(header[i]))
		symbolCols = append(symbolCols, i)
	}

	table.Rows = make([]domain.HistoryRow, 0, len(records)-1)
	for n, record := range records[1:] {
		line := n + 2
		index, err := parseIndex(cell(record, 0), n)
		if err != nil {
			return nil, fmt.Errorf("history line %d: %w", line, err)
		}
		ts, err := parseTimestamp(cell(record, tsCol))
		if err != nil {
			return nil, fmt.Errorf("history line %d: %w", line, err)
		}
		values := make(map[string]decimal.Decimal, len(symbolCols))
		for i, col := range symbolCols {
			raw := strings.TrimSpace(cell(record, col))
			if raw == "" {
				continue
			}
			v, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("history line %d column %s: %w", line, table.Symbols[i], err)
			}
			values[table.Symbols[i]] = v
		}
		table.Rows = append(table.Rows, domain.HistoryRow{
			Index:     index,
			Category:  domain.ValueCategory(cell(record, catCol)),
			Timestamp: ts,
			Values:    values,
		})
	}

	span.SetAttributes(attribute.Int("rows", len(table.Rows)))
	return table, nil
}

// AppendAndPersist loads the table, appends rows with fresh indices and
// atomically replaces the file. Existing rows are written back unchanged.
// Symbols first seen in rows become new columns; older rows stay null there.
func (l *HistoryLog) AppendAndPersist(ctx context.Context, rows []domain.HistoryRow) (AppendResult, error) {
	ctx, span := l.tracer.Start(ctx, "history-log.append-and-persist")
	defer span.End()

	table, err := l.Load(ctx)
	if err != nil {
		return AppendResult{}, fmt.Errorf("load history: %w", err)
	}
	before := len(table.Rows)

	next := table.NextIndex()
	for _, row := range rows {
		for _, symbol := range rowSymbols(row) {
			if !table.HasSymbol(symbol) {
				table.Symbols = append(table.Symbols, symbol)
			}
		}
		row.Index = next
		next++
		table.Rows = append(table.Rows, row)
	}

	if err := writeRecordsAtomic(l.path, historyRecords(table)); err != nil {
		return AppendResult{}, fmt.Errorf("persist history: %w", err)
	}

	span.SetAttributes(attribute.Int("appended", len(rows)))
	return AppendResult{Before: before, Appended: len(rows), Total: len(table.Rows)}, nil
}

func historyRecords(table *domain.HistoryTable) [][]string {
	records := make([][]string, 0, len(table.Rows)+1)

	header := make([]string, 0, len(table.Symbols)+3)
	header = append(header, "")
	header = append(header, table.Symbols...)
	header = append(header, domain.ColumnCategory, domain.ColumnTimestamp)
	records = append(records, header)

	for _, row := range table.Rows {
		record := make([]string, 0, len(header))
		record = append(record, fmt.Sprintf("%d", row.Index))
		for _, symbol := range table.Symbols {
			if v, ok := row.Values[symbol]; ok {
				record = append(record, v.String())
			} else {
				record = append(record, "")
			}
		}
		record = append(record, string(row.Category), formatTimestamp(row.Timestamp))
		records = append(records, record)
	}
	return records
}

// rowSymbols lists the value keys of row, in Symbols order when given.
func rowSymbols(row domain.HistoryRow) []string {
	seen := make(map[string]struct{}, len(row.Values))
	out := make([]string, 0, len(row.Values))
	for _, s := range row.Symbols {
		if _, ok := row.Values[s]; !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	rest := make([]string, 0)
	for s := range row.Values {
		if _, ok := seen[s]; !ok {
			rest = append(rest, s)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
