package provider

import (
	"context"
	"net/http"
	"testing"
	"time"
	"unicode/utf8"
)

func TestRedditSearch(t *testing.T) {
	start := time.Unix(1771009000, 0).UTC()
	end := start.Add(30 * time.Minute)

	p := NewRedditProvider(testTracer)
	p.baseURL = "https://example.com"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/search.json" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if req.URL.Query().Get("q") != "Bitcoin" || req.URL.Query().Get("sort") != "new" {
			t.Fatalf("unexpected query: %s", req.URL.RawQuery)
		}
		if req.Header.Get("User-Agent") == "" {
			t.Fatalf("expected user-agent header")
		}
		body := `{"data":{"children":[` +
			`{"data":{"id":"abc123","title":"BTC breaks out","selftext":"Market is\nmoving up","created_utc":1771009800}},` +
			`{"data":{"id":"old","title":"Yesterday","selftext":"","created_utc":1770900000}}]}}`
		return stubResponse(http.StatusOK, body)(req)
	})}

	posts, err := p.Search(context.Background(), "Bitcoin", start, end, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 post inside the window, got %d", len(posts))
	}
	if posts[0].Text != "BTC breaks out Market is moving up" {
		t.Fatalf("unexpected text: %q", posts[0].Text)
	}
	if posts[0].Crypto != "Bitcoin" {
		t.Fatalf("unexpected crypto: %q", posts[0].Crypto)
	}
}

func TestRedditSearchRequiresAsset(t *testing.T) {
	p := NewRedditProvider(testTracer)
	if _, err := p.Search(context.Background(), " ", time.Now(), time.Now(), 10); err == nil {
		t.Fatal("expected error for empty asset")
	}
}

func TestRedditSearchPeriodFollowsWindow(t *testing.T) {
	end := time.Unix(1771009000, 0).UTC()
	cases := map[time.Duration]string{
		30 * time.Minute: "hour",
		90 * time.Minute: "day",
		72 * time.Hour:   "week",
	}
	for window, want := range cases {
		var got string
		p := NewRedditProvider(testTracer)
		p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			got = req.URL.Query().Get("t")
			return stubResponse(http.StatusOK, `{"data":{"children":[]}}`)(req)
		})}
		if _, err := p.Search(context.Background(), "Bitcoin", end.Add(-window), end, 25); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("window %v: expected t=%s, got %s", window, want, got)
		}
	}
}

func TestSanitizeTextKeepsRunesWhole(t *testing.T) {
	in := "BTC ₿₿₿ to the moon"
	for maxLen := 1; maxLen < len(in); maxLen++ {
		out := sanitizeText(in, maxLen)
		if !utf8.ValidString(out) {
			t.Fatalf("maxLen %d produced invalid UTF-8: %q", maxLen, out)
		}
		if len(out) > maxLen {
			t.Fatalf("maxLen %d produced %d bytes", maxLen, len(out))
		}
	}
	if got := sanitizeText(in, 7); got != "BTC ₿" {
		t.Fatalf("unexpected cut: %q", got)
	}
}
