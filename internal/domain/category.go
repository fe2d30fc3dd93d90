package domain

import "strings"

// ValueCategory labels one of the tracked market metrics.
type ValueCategory string

const (
	CategoryPrice     ValueCategory = "Price in $"
	CategoryVolume    ValueCategory = "24h Volume in M$"
	CategoryChange    ValueCategory = "24h Change in %"
	CategoryMarketCap ValueCategory = "Market Cap in M$"
)

// Categories lists the tracked metrics in the order rows are appended.
var Categories = []ValueCategory{
	CategoryPrice,
	CategoryVolume,
	CategoryChange,
	CategoryMarketCap,
}

var categorySlug = map[ValueCategory]string{
	CategoryPrice:     "price",
	CategoryVolume:    "volume",
	CategoryChange:    "change",
	CategoryMarketCap: "marketcap",
}

// Slug is the short identifier used in URLs and commands.
func (c ValueCategory) Slug() string {
	return categorySlug[c]
}

func (c ValueCategory) IsValid() bool {
	_, ok := categorySlug[c]
	return ok
}

// ParseCategory accepts either a slug ("price") or the full label ("Price in $").
func ParseCategory(v string) (ValueCategory, bool) {
	v = strings.TrimSpace(v)
	for c, slug := range categorySlug {
		if strings.EqualFold(v, slug) || v == string(c) {
			return c, true
		}
	}
	return "", false
}

// CategorySlugs lists the slugs in append order.
func CategorySlugs() []string {
	out := make([]string, 0, len(Categories))
	for _, c := range Categories {
		out = append(out, c.Slug())
	}
	return out
}
