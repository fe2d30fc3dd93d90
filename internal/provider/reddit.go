package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"cryptobook/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	redditBaseURL   = "https://www.reddit.com"
	defaultRedditUA = "cryptobook/1.0 (sentiment collector)"
)

// RedditProvider searches new Reddit posts. It needs no credentials and
// backs the sentiment side when no Twitter token is configured.
type RedditProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
	tracer    trace.Tracer
	limiter   *RateLimiter
}

// NewRedditProvider keeps to Reddit's 10 unauthenticated requests per minute.
func NewRedditProvider(tracer trace.Tracer) *RedditProvider {
	return &RedditProvider{
		client:    &http.Client{Timeout: 20 * time.Second},
		baseURL:   redditBaseURL,
		userAgent: defaultRedditUA,
		tracer:    tracer,
		limiter:   NewRateLimiter(10, 6*time.Second),
	}
}

func (p *RedditProvider) Name() string { return "reddit" }

// Search returns posts mentioning asset created in [start, end].
func (p *RedditProvider) Search(ctx context.Context, asset string, start, end time.Time, maxResults int) ([]domain.Post, error) {
	ctx, span := p.tracer.Start(ctx, "reddit.search")
	defer span.End()
	span.SetAttributes(attribute.String("asset", asset))

	asset = strings.TrimSpace(asset)
	if asset == "" {
		return nil, fmt.Errorf("asset is required")
	}
	limit := clampResults(maxResults)

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", asset)
	q.Set("sort", "new")
	q.Set("t", searchPeriod(end.Sub(start)))
	q.Set("limit", fmt.Sprintf("%d", limit))
	base := strings.TrimRight(p.baseURL, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/search.json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		if reset, ok := resetFromHeader(resp.Header, "x-ratelimit-reset", time.Now()); ok {
			p.limiter.PauseUntil(reset)
		}
		return nil, fmt.Errorf("reddit search %s: %w", asset, ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("reddit API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data struct {
			Children []struct {
				Data struct {
					ID         string  `json:"id"`
					Title      string  `json:"title"`
					SelfText   string  `json:"selftext"`
					CreatedUTC float64 `json:"created_utc"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode reddit response: %w", err)
	}

	posts := make([]domain.Post, 0, len(payload.Data.Children))
	for _, row := range payload.Data.Children {
		data := row.Data
		createdAt := time.Unix(int64(data.CreatedUTC), 0).UTC()
		if createdAt.Before(start) || createdAt.After(end) {
			continue
		}
		text := sanitizeText(strings.TrimSpace(data.Title+" "+data.SelfText), 560)
		if strings.TrimSpace(data.ID) == "" || text == "" {
			continue
		}
		posts = append(posts, domain.Post{CreatedAt: createdAt, Text: text, Crypto: asset})
		if len(posts) >= limit {
			break
		}
	}
	span.SetAttributes(attribute.Int("posts", len(posts)))
	return posts, nil
}

func sanitizeText(in string, maxLen int) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	in = strings.ReplaceAll(in, "\n", " ")
	in = strings.ReplaceAll(in, "\r", " ")
	in = strings.Join(strings.Fields(in), " ")
	if maxLen > 0 && len(in) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(in[cut]) {
			cut--
		}
		in = in[:cut]
	}
	return in
}

// searchPeriod picks the smallest Reddit time filter covering the window.
func searchPeriod(window time.Duration) string {
	switch {
	case window <= time.Hour:
		return "hour"
	case window <= 24*time.Hour:
		return "day"
	case window <= 7*24*time.Hour:
		return "week"
	case window <= 31*24*time.Hour:
		return "month"
	default:
		return "year"
	}
}
