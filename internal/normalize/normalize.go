package normalize

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"cryptobook/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownUnit is returned for magnitudes whose unit suffix is not B or M.
	ErrUnknownUnit = errors.New("unknown magnitude unit")
	// ErrInvalidNumber is returned when the numeric part does not parse.
	ErrInvalidNumber = errors.New("invalid number")
)

var (
	thousand = decimal.NewFromInt(1000)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

var stripper = strings.NewReplacer("%", "", "$", "", ",", "")

// FieldError reports which quote field failed to normalize.
type FieldError struct {
	Symbol string
	Field  string
	Raw    string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("normalize %s %q: %v", e.Field, e.Raw, e.Err)
	}
	return fmt.Sprintf("normalize %s.%s %q: %v", e.Symbol, e.Field, e.Raw, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Strip removes the display punctuation "%", "$" and ",".
func Strip(raw string) string {
	return strings.TrimSpace(stripper.Replace(raw))
}

// ParseDecimal strips punctuation and parses the remainder as a decimal.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	v := Strip(raw)
	v = strings.ReplaceAll(v, "−", "-")
	v = strings.TrimPrefix(v, "+")
	if v == "" {
		return decimal.Zero, ErrInvalidNumber
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidNumber, err)
	}
	return d, nil
}

// ParseMillions converts a magnitude such as "$2.5 B" or "750 M" into whole
// millions. B multiplies by 1000; both units truncate toward zero.
func ParseMillions(raw string) (int64, error) {
	parts := strings.Fields(Strip(raw))
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: expected \"<number> <unit>\"", ErrUnknownUnit)
	}

	n, err := ParseDecimal(parts[0])
	if err != nil {
		return 0, err
	}

	switch parts[1] {
	case "B":
		n = n.Mul(thousand)
	case "M":
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, parts[1])
	}
	n = n.Truncate(0)
	if n.GreaterThan(maxInt64) || n.LessThan(minInt64) {
		return 0, fmt.Errorf("%w: %s millions out of range", ErrInvalidNumber, n.String())
	}
	return n.IntPart(), nil
}

// Quote normalizes every metric of q. The first failing field is returned as
// a *FieldError.
func Quote(q domain.AssetQuote) (domain.Quote, error) {
	out := domain.Quote{Rank: q.Rank, Name: strings.TrimSpace(q.Name), Symbol: strings.TrimSpace(q.Symbol)}

	price, err := ParseDecimal(q.Price)
	if err != nil {
		return domain.Quote{}, &FieldError{Symbol: out.Symbol, Field: "price", Raw: q.Price, Err: err}
	}
	change, err := ParseDecimal(q.Change24h)
	if err != nil {
		return domain.Quote{}, &FieldError{Symbol: out.Symbol, Field: "change_24h", Raw: q.Change24h, Err: err}
	}
	volume, err := ParseMillions(q.Volume24h)
	if err != nil {
		return domain.Quote{}, &FieldError{Symbol: out.Symbol, Field: "volume_24h", Raw: q.Volume24h, Err: err}
	}
	marketCap, err := ParseMillions(q.MarketCap)
	if err != nil {
		return domain.Quote{}, &FieldError{Symbol: out.Symbol, Field: "market_cap", Raw: q.MarketCap, Err: err}
	}

	out.Price = price
	out.Change24h = change
	out.Volume24h = decimal.NewFromInt(volume)
	out.MarketCap = decimal.NewFromInt(marketCap)
	return out, nil
}

// Quotes normalizes all rows and stops at the first error.
func Quotes(rows []domain.AssetQuote) ([]domain.Quote, error) {
	out := make([]domain.Quote, 0, len(rows))
	for _, row := range rows {
		q, err := Quote(row)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}
