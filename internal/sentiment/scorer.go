package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// BatchScorer returns polarities keyed by the position of each text in the
// batch. Positions it could not score are left out.
type BatchScorer interface {
	ScoreBatch(ctx context.Context, texts []string) (map[int]float64, error)
}

// Scorer uses a baseline classifier and lets the LLM override each batch it
// manages to score. An LLM failure keeps the baseline for that batch.
type Scorer struct {
	baseline  Classifier
	llm       BatchScorer
	batchSize int
}

func NewScorer(baseline Classifier, llm BatchScorer, batchSize int) *Scorer {
	if baseline == nil {
		baseline = NewLexiconClassifier()
	}
	if batchSize <= 0 {
		batchSize = 25
	}
	return &Scorer{baseline: baseline, llm: llm, batchSize: batchSize}
}

func (s *Scorer) Polarity(ctx context.Context, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out, err := s.baseline.Polarity(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("baseline polarity: %w", err)
	}
	if s.llm == nil {
		return out, nil
	}

	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		scored, err := s.llm.ScoreBatch(ctx, texts[start:end])
		if err != nil {
			log.Printf("Warning: llm polarity batch %d-%d failed: %v", start, end, err)
			continue
		}
		for pos, v := range scored {
			if pos < 0 || start+pos >= end {
				continue
			}
			out[start+pos] = clamp(v, -1, 1)
		}
	}
	return out, nil
}

type openAIChatClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// OpenAIClassifier asks a chat model for the polarity of a batch of posts.
type OpenAIClassifier struct {
	client openAIChatClient
	model  string
}

// NewOpenAIClassifier returns nil when apiKey is empty.
func NewOpenAIClassifier(apiKey string, model string) *OpenAIClassifier {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClassifier{
		client: &openAIClient{client: client},
		model:  model,
	}
}

func (c *OpenAIClassifier) ScoreBatch(ctx context.Context, texts []string) (map[int]float64, error) {
	if c == nil || c.client == nil || len(texts) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for i, text := range texts {
		sb.WriteString(fmt.Sprintf("id=%d\n", i))
		sb.WriteString(fmt.Sprintf("text=%s\n\n", strings.Join(strings.Fields(text), " ")))
	}

	systemPrompt := "You rate the sentiment of social media posts about crypto assets. Return ONLY a JSON array. Each object requires: id (int), polarity (-1..1, 0 for neutral). No markdown."
	completion, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage("Posts:\n" + sb.String()),
		},
	})
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty polarity completion")
	}

	raw := trimCodeFence(completion.Choices[0].Message.Content)
	var parsed []struct {
		ID       int     `json:"id"`
		Polarity float64 `json:"polarity"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse polarity json: %w", err)
	}

	out := make(map[int]float64, len(parsed))
	for _, row := range parsed {
		if row.ID < 0 || row.ID >= len(texts) {
			continue
		}
		out[row.ID] = clamp(row.Polarity, -1, 1)
	}
	return out, nil
}

// Polarity lets the classifier stand alone; it fails unless every text was
// scored.
func (c *OpenAIClassifier) Polarity(ctx context.Context, texts []string) ([]float64, error) {
	scored, err := c.ScoreBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(texts))
	for i := range texts {
		v, ok := scored[i]
		if !ok {
			return nil, fmt.Errorf("no polarity for post %d", i)
		}
		out[i] = v
	}
	return out, nil
}

func trimCodeFence(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "```") {
		v = strings.TrimPrefix(v, "```")
		v = strings.TrimSpace(v)
		if strings.HasPrefix(strings.ToLower(v), "json") {
			v = strings.TrimSpace(v[4:])
		}
		v = strings.TrimSuffix(v, "```")
		v = strings.TrimSpace(v)
	}
	return v
}

type openAIClient struct {
	client openai.Client
}

func (c *openAIClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
