package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DefaultListingURL        = "https://crypto.com/price"
	DefaultListingTableClass = "chakra-table css-1qpk7f7"
	DefaultSchedule          = "*/30 * * * *"
)

type Config struct {
	ListingURL        string
	ListingTableClass string
	TopN              int
	CandidateRows     int

	HistoryPath   string
	SentimentPath string
	PostsPath     string

	TwitterBearerToken  string
	SocialSource        string
	SentimentWindow     time.Duration
	SentimentMaxResults int

	CollectSchedule string
	CollectOnStart  bool

	DatabaseURL      string
	RedisURL         string
	TelegramBotToken string

	OpenAIAPIKey string
	OpenAIModel  string

	APIKey   string
	HTTPAddr string

	MCPRequestTimeoutSecs int
}

func Load() *Config {
	cfg := &Config{
		TwitterBearerToken: strings.TrimSpace(os.Getenv("TWITTER_BEARER_TOKEN")),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		APIKey:             os.Getenv("API_KEY"),
	}

	cfg.ListingURL = strings.TrimSpace(os.Getenv("LISTING_URL"))
	if cfg.ListingURL == "" {
		cfg.ListingURL = DefaultListingURL
	}

	cfg.ListingTableClass = strings.TrimSpace(os.Getenv("LISTING_TABLE_CLASS"))
	if cfg.ListingTableClass == "" {
		cfg.ListingTableClass = DefaultListingTableClass
	}

	cfg.TopN = positiveInt("TOP_N", 10)
	cfg.CandidateRows = positiveInt("CANDIDATE_ROWS", 20)
	if cfg.CandidateRows < cfg.TopN {
		log.Printf("Warning: CANDIDATE_ROWS=%d below TOP_N=%d, using TOP_N", cfg.CandidateRows, cfg.TopN)
		cfg.CandidateRows = cfg.TopN
	}

	cfg.HistoryPath = pathOrDefault("HISTORY_PATH", "HistoryDF.csv")
	cfg.SentimentPath = pathOrDefault("SENTIMENT_PATH", "TwitterDF.csv")
	cfg.PostsPath = pathOrDefault("POSTS_PATH", "Tweets.csv")

	cfg.SocialSource = strings.ToLower(strings.TrimSpace(os.Getenv("SOCIAL_SOURCE")))
	if cfg.SocialSource == "" {
		cfg.SocialSource = "twitter"
	}
	if cfg.SocialSource != "twitter" && cfg.SocialSource != "reddit" {
		log.Printf("Warning: unsupported SOCIAL_SOURCE=%q, defaulting to twitter", cfg.SocialSource)
		cfg.SocialSource = "twitter"
	}
	if cfg.SocialSource == "twitter" && cfg.TwitterBearerToken == "" {
		log.Println("Warning: TWITTER_BEARER_TOKEN not set, falling back to reddit search")
		cfg.SocialSource = "reddit"
	}

	cfg.SentimentWindow = time.Duration(positiveInt("SENTIMENT_WINDOW_MINS", 30)) * time.Minute
	cfg.SentimentMaxResults = positiveInt("SENTIMENT_MAX_RESULTS", 100)

	cfg.CollectSchedule = strings.TrimSpace(os.Getenv("COLLECT_SCHEDULE"))
	if cfg.CollectSchedule == "" {
		cfg.CollectSchedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(cfg.CollectSchedule); err != nil {
		log.Printf("Warning: invalid COLLECT_SCHEDULE=%q, defaulting to %s", cfg.CollectSchedule, DefaultSchedule)
		cfg.CollectSchedule = DefaultSchedule
	}

	cfg.CollectOnStart = strings.EqualFold(strings.TrimSpace(os.Getenv("COLLECT_ON_START")), "true")

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, postgres mirror disabled")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, quote cache disabled")
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, using lexicon sentiment only")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.HTTPAddr = strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.MCPRequestTimeoutSecs = positiveInt("MCP_REQUEST_TIMEOUT_SECS", 5)

	return cfg
}

func positiveInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, defaulting to %d", key, v, def)
		return def
	}
	return n
}

func pathOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
