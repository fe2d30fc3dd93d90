package sentiment

import (
	"context"
	"fmt"
	"log"
	"time"

	"cryptobook/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Classifier maps each text to a polarity in [-1, 1].
type Classifier interface {
	Polarity(ctx context.Context, texts []string) ([]float64, error)
}

// Tagger counts positive, negative and neutral posts in one batch.
type Tagger struct {
	classifier Classifier
	tracer     trace.Tracer
}

func NewTagger(classifier Classifier, tracer trace.Tracer) *Tagger {
	if classifier == nil {
		classifier = NewLexiconClassifier()
	}
	return &Tagger{classifier: classifier, tracer: tracer}
}

// Tag classifies texts and returns their counts for asset at now. An empty
// batch or a classifier failure yields a row with every count at zero.
func (t *Tagger) Tag(ctx context.Context, texts []string, asset string, now time.Time) domain.SentimentRow {
	ctx, span := t.tracer.Start(ctx, "sentiment-tagger.tag")
	defer span.End()
	span.SetAttributes(attribute.String("asset", asset), attribute.Int("texts", len(texts)))

	row := domain.SentimentRow{Time: now, Crypto: asset}
	if len(texts) == 0 {
		return row
	}

	polarities, err := t.classifier.Polarity(ctx, texts)
	if err == nil && len(polarities) != len(texts) {
		err = fmt.Errorf("classifier returned %d polarities for %d texts", len(polarities), len(texts))
	}
	if err != nil {
		span.RecordError(err)
		log.Printf("Warning: sentiment for %s unavailable: %v", asset, err)
		return row
	}

	for _, p := range polarities {
		switch {
		case p > 0:
			row.Positive++
		case p < 0:
			row.Negative++
		default:
			row.Neutral++
		}
	}
	row.Count = len(texts)
	return row
}
