package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cryptobook/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	twitterBaseURL    = "https://api.twitter.com"
	twitterMinResults = 10
	twitterMaxResults = 100
	// recent search rejects an end_time closer than this to now
	twitterEndTimeLag = 10 * time.Second
)

var ErrMissingBearerToken = errors.New("twitter bearer token is required")

// TwitterProvider searches recent English posts through the Twitter API v2.
type TwitterProvider struct {
	client      *http.Client
	baseURL     string
	bearerToken string
	tracer      trace.Tracer
	limiter     *RateLimiter
	now         func() time.Time
}

// NewTwitterProvider rate limits to 180 searches per 15 minutes, the app
// limit of the recent search endpoint.
func NewTwitterProvider(tracer trace.Tracer, bearerToken string) *TwitterProvider {
	return &TwitterProvider{
		client:      &http.Client{Timeout: 20 * time.Second},
		baseURL:     twitterBaseURL,
		bearerToken: strings.TrimSpace(bearerToken),
		tracer:      tracer,
		limiter:     NewRateLimiter(180, 5*time.Second),
		now:         time.Now,
	}
}

func (p *TwitterProvider) Name() string { return "twitter" }

// Search returns at most maxResults posts mentioning asset created in
// [start, end]. Only the first result page is read.
func (p *TwitterProvider) Search(ctx context.Context, asset string, start, end time.Time, maxResults int) ([]domain.Post, error) {
	ctx, span := p.tracer.Start(ctx, "twitter.search")
	defer span.End()
	span.SetAttributes(attribute.String("asset", asset))

	if p.bearerToken == "" {
		return nil, ErrMissingBearerToken
	}
	if latest := p.now().Add(-twitterEndTimeLag); end.After(latest) {
		end = latest
	}
	if !start.Before(end) {
		return []domain.Post{}, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("query", asset+" lang:en -is:retweet")
	q.Set("start_time", start.UTC().Format(time.RFC3339))
	q.Set("end_time", end.UTC().Format(time.RFC3339))
	q.Set("max_results", strconv.Itoa(clampResults(maxResults)))
	q.Set("tweet.fields", "created_at,text")

	u := strings.TrimRight(p.baseURL, "/") + "/2/tweets/search/recent?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.bearerToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		if reset, ok := resetFromHeader(resp.Header, "x-rate-limit-reset", p.now()); ok {
			p.limiter.PauseUntil(reset)
		}
		return nil, fmt.Errorf("twitter search %s: %w", asset, ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("twitter API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data []struct {
			ID        string `json:"id"`
			Text      string `json:"text"`
			CreatedAt string `json:"created_at"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode twitter response: %w", err)
	}

	posts := make([]domain.Post, 0, len(payload.Data))
	for _, tweet := range payload.Data {
		text := sanitizeText(tweet.Text, 0)
		if text == "" {
			continue
		}
		createdAt, err := time.Parse(time.RFC3339, tweet.CreatedAt)
		if err != nil {
			createdAt = end
		}
		posts = append(posts, domain.Post{
			CreatedAt: createdAt.UTC(),
			Text:      text,
			Crypto:    asset,
		})
	}
	span.SetAttributes(attribute.Int("posts", len(posts)))
	return posts, nil
}

func clampResults(n int) int {
	if n < twitterMinResults {
		return twitterMinResults
	}
	if n > twitterMaxResults {
		return twitterMaxResults
	}
	return n
}
