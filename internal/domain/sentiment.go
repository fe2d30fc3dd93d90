package domain

import "time"

// SentimentRow summarizes the polarity of one batch of posts about an asset.
type SentimentRow struct {
	Index    int64     `json:"index"`
	Time     time.Time `json:"time"`
	Crypto   string    `json:"crypto"`
	Positive int       `json:"pos"`
	Negative int       `json:"neg"`
	Neutral  int       `json:"neu"`
	Count    int       `json:"count"`
}

// Post is one social media search result.
type Post struct {
	CreatedAt time.Time `json:"created_at"`
	Text      string    `json:"text"`
	Crypto    string    `json:"crypto"`
}

// Share holds the percentage of positive and negative posts in a SentimentRow.
type Share struct {
	Positive float64 `json:"percentage_pos"`
	Negative float64 `json:"percentage_neg"`
}
