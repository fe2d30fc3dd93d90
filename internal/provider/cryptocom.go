package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cryptobook/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

const (
	cryptoComListingURL     = "https://crypto.com/price"
	defaultListingTableCls  = "chakra-table css-1qpk7f7"
	defaultCandidateLimit   = 20
	defaultListingUserAgent = "Mozilla/5.0 (X11; Linux x86_64) cryptobook/1.0"
)

// Positions of the quote fields among the collected cell texts of one row.
const (
	fieldRank      = 3
	fieldName      = 11
	fieldSymbol    = 12
	fieldPrice     = 14
	fieldChange    = 17
	fieldVolume    = 20
	fieldMarketCap = 21
)

// ErrListingTableNotFound is returned when the page has no table with the
// configured class.
var ErrListingTableNotFound = errors.New("listing table not found")

// CryptoComProvider scrapes the public price listing page.
type CryptoComProvider struct {
	client         *http.Client
	baseURL        string
	tableClass     string
	candidateLimit int
	userAgent      string
	tracer         trace.Tracer
}

func NewCryptoComProvider(tracer trace.Tracer, listingURL, tableClass string, candidateLimit int) *CryptoComProvider {
	if strings.TrimSpace(listingURL) == "" {
		listingURL = cryptoComListingURL
	}
	if strings.TrimSpace(tableClass) == "" {
		tableClass = defaultListingTableCls
	}
	if candidateLimit <= 0 {
		candidateLimit = defaultCandidateLimit
	}
	return &CryptoComProvider{
		client:         &http.Client{Timeout: 30 * time.Second},
		baseURL:        listingURL,
		tableClass:     tableClass,
		candidateLimit: candidateLimit,
		userAgent:      defaultListingUserAgent,
		tracer:         tracer,
	}
}

// FetchQuotes downloads the listing page and returns the raw quotes of its
// leading rows, in page order.
func (p *CryptoComProvider) FetchQuotes(ctx context.Context) ([]domain.AssetQuote, error) {
	ctx, span := p.tracer.Start(ctx, "cryptocom.fetch-quotes")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("listing error %d: %s", resp.StatusCode, string(body))
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	quotes, err := ExtractQuotes(doc, p.tableClass, p.candidateLimit)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("quotes", len(quotes)))
	return quotes, nil
}

// ExtractQuotes reads quote rows out of the listing table of doc. Rows with
// too few cells or a non-numeric rank are skipped.
func ExtractQuotes(doc *html.Node, tableClass string, limit int) ([]domain.AssetQuote, error) {
	table := findElement(doc, func(n *html.Node) bool {
		return n.Data == "table" && hasClasses(n, tableClass)
	})
	if table == nil {
		return nil, ErrListingTableNotFound
	}

	var quotes []domain.AssetQuote
	walkElements(table, func(n *html.Node) bool {
		if limit > 0 && len(quotes) >= limit {
			return false
		}
		if n.Data != "tr" {
			return true
		}
		if q, ok := quoteFromFields(rowFields(n)); ok {
			quotes = append(quotes, q)
		}
		return true
	})
	return quotes, nil
}

func rowFields(tr *html.Node) []string {
	var fields []string
	walkElements(tr, func(n *html.Node) bool {
		switch n.Data {
		case "p", "span", "div", "td":
			text := textContent(n)
			if !strings.HasPrefix(text, ".css") {
				fields = append(fields, strings.TrimSpace(text))
			}
		}
		return true
	})
	return fields
}

func quoteFromFields(fields []string) (domain.AssetQuote, bool) {
	if len(fields) <= fieldMarketCap {
		return domain.AssetQuote{}, false
	}
	rank, err := strconv.Atoi(fields[fieldRank])
	if err != nil {
		return domain.AssetQuote{}, false
	}
	return domain.AssetQuote{
		Rank:      rank,
		Name:      fields[fieldName],
		Symbol:    fields[fieldSymbol],
		Price:     fields[fieldPrice],
		Change24h: fields[fieldChange],
		Volume24h: fields[fieldVolume],
		MarketCap: fields[fieldMarketCap],
	}, true
}

// walkElements visits the element descendants of n in document order. It
// stops as soon as visit returns false.
func walkElements(n *html.Node, visit func(*html.Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && !visit(c) {
			return false
		}
		if !walkElements(c, visit) {
			return false
		}
	}
	return true
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walkElements(n, func(c *html.Node) bool {
		if match(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// hasClasses reports whether every class token of want is set on n.
func hasClasses(n *html.Node, want string) bool {
	var have []string
	for _, a := range n.Attr {
		if a.Key == "class" {
			have = strings.Fields(a.Val)
			break
		}
	}
	for _, w := range strings.Fields(want) {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return len(have) > 0
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}
