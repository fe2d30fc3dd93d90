package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ColumnCategory  = "ValueCategory"
	ColumnTimestamp = "timestamp"
)

// HistoryRow is one metric snapshot across all tracked assets. Values is keyed
// by symbol; a missing key is a null cell. Symbols, when set, orders the keys
// of Values for new columns.
type HistoryRow struct {
	Index     int64                      `json:"index"`
	Category  ValueCategory              `json:"category"`
	Timestamp time.Time                  `json:"timestamp"`
	Values    map[string]decimal.Decimal `json:"values"`
	Symbols   []string                   `json:"-"`
}

// HistoryTable is the persisted market time series. Symbols holds the asset
// columns in file order.
type HistoryTable struct {
	Symbols []string     `json:"symbols"`
	Rows    []HistoryRow `json:"rows"`
}

// HasSymbol reports whether symbol is already an asset column.
func (t *HistoryTable) HasSymbol(symbol string) bool {
	for _, s := range t.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

// NextIndex is the row index the next appended row receives.
func (t *HistoryTable) NextIndex() int64 {
	if len(t.Rows) == 0 {
		return 0
	}
	return t.Rows[len(t.Rows)-1].Index + 1
}
