package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cryptobook/internal/analysis"
	"cryptobook/internal/domain"
	"cryptobook/internal/service"

	tele "gopkg.in/telebot.v3"
)

const requestTimeout = 10 * time.Second

// Backend is the read side the bot answers from.
type Backend interface {
	LatestQuote(ctx context.Context, symbol string) (*domain.Quote, error)
	LatestSentiment(ctx context.Context, asset string) (domain.SentimentRow, error)
	TopMover(ctx context.Context) (analysis.Mover, error)
}

func StartTelegramBot(token string, backend Backend) {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Printf("Warning: failed to create Telegram bot: %v", err)
		return
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	b.Handle("/price", func(c tele.Context) error {
		return c.Send(priceReply(backend, c.Args()))
	})
	b.Handle("/volume", func(c tele.Context) error {
		return c.Send(volumeReply(backend, c.Args()))
	})
	b.Handle("/sentiment", func(c tele.Context) error {
		return c.Send(sentimentReply(backend, c.Args()))
	})
	b.Handle("/mover", func(c tele.Context) error {
		return c.Send(moverReply(backend))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func lookupQuote(backend Backend, args []string, usage string) (*domain.Quote, string) {
	if len(args) == 0 {
		return nil, usage
	}
	symbol := strings.ToUpper(strings.TrimSpace(args[0]))

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	quote, err := backend.LatestQuote(ctx, symbol)
	switch {
	case errors.Is(err, service.ErrUnknownSymbol):
		return nil, fmt.Sprintf("Unknown symbol: %s", symbol)
	case errors.Is(err, service.ErrNoData):
		return nil, "No market data collected yet"
	case err != nil:
		return nil, fmt.Sprintf("Error fetching %s: %v", symbol, err)
	}
	return quote, ""
}

func priceReply(backend Backend, args []string) string {
	quote, msg := lookupQuote(backend, args, "Usage: /price BTC")
	if quote == nil {
		return msg
	}
	return fmt.Sprintf(
		"%s (%s)\nPrice: $%s\n24h Change: %s%%\nMarket Cap: %s M$",
		quote.Symbol, quote.Name, quote.Price.StringFixed(2), quote.Change24h.StringFixed(2), quote.MarketCap.String(),
	)
}

func volumeReply(backend Backend, args []string) string {
	quote, msg := lookupQuote(backend, args, "Usage: /volume SOL")
	if quote == nil {
		return msg
	}
	return fmt.Sprintf(
		"%s 24h Trading Volume\nVolume: %s M$\nPrice: $%s\n24h Change: %s%%",
		quote.Symbol, quote.Volume24h.String(), quote.Price.StringFixed(2), quote.Change24h.StringFixed(2),
	)
}

func sentimentReply(backend Backend, args []string) string {
	if len(args) == 0 {
		return "Usage: /sentiment Bitcoin"
	}
	asset := strings.Join(args, " ")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	row, err := backend.LatestSentiment(ctx, asset)
	if errors.Is(err, service.ErrNoData) {
		return fmt.Sprintf("No sentiment collected for %s yet", asset)
	}
	if err != nil {
		return fmt.Sprintf("Error fetching sentiment for %s: %v", asset, err)
	}
	share, ok := analysis.Shares(row)
	if !ok {
		return fmt.Sprintf("%s: no posts in the last window (%s)", row.Crypto, row.Time.Format(time.RFC3339))
	}
	return fmt.Sprintf(
		"%s sentiment at %s\nPositive: %.1f%% (%d)\nNegative: %.1f%% (%d)\nNeutral: %d\nPosts: %d",
		row.Crypto, row.Time.Format(time.RFC3339),
		share.Positive, row.Positive, share.Negative, row.Negative, row.Neutral, row.Count,
	)
}

func moverReply(backend Backend) string {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	mover, err := backend.TopMover(ctx)
	if errors.Is(err, service.ErrNoData) {
		return "No market data collected yet"
	}
	if err != nil {
		return fmt.Sprintf("Error finding top mover: %v", err)
	}
	return fmt.Sprintf("Top mover: %s %s%% in 24h", mover.Symbol, mover.Change24h.StringFixed(2))
}
