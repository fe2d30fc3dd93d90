package domain

import "time"

// JoinedRow is a HistoryRow with the sentiment shares of the same minute.
// Sentiment is keyed by asset name; a missing key means no sentiment row
// matched.
type JoinedRow struct {
	HistoryRow
	Minute    time.Time        `json:"minute"`
	Sentiment map[string]Share `json:"sentiment"`
}

// JoinedView is the history table joined with sentiment shares.
type JoinedView struct {
	Symbols []string    `json:"symbols"`
	Assets  []string    `json:"assets"`
	Rows    []JoinedRow `json:"rows"`
}

// Correlation is the Pearson coefficient of one column against the target.
type Correlation struct {
	Column      string  `json:"column"`
	Coefficient float64 `json:"coefficient"`
	Samples     int     `json:"samples"`
}

// RunResult counts what one collector invocation produced.
type RunResult struct {
	QuotesParsed    int      `json:"quotes_parsed"`
	HistoryAppended int      `json:"history_appended"`
	PostsFetched    int      `json:"posts_fetched"`
	SentimentRows   int      `json:"sentiment_rows"`
	Errors          []string `json:"errors,omitempty"`
}
