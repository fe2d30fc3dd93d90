package store

import (
	"context"
	"fmt"
	"strconv"

	"cryptobook/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var postsHeader = []string{"", "created_at", "text", "crypto"}

// PostLog keeps the raw posts of the latest collection run. Unlike the other
// tables it is replaced on every run.
type PostLog struct {
	path   string
	tracer trace.Tracer
}

func NewPostLog(path string, tracer trace.Tracer) *PostLog {
	return &PostLog{path: path, tracer: tracer}
}

// Replace atomically overwrites the file with posts.
func (l *PostLog) Replace(ctx context.Context, posts []domain.Post) error {
	_, span := l.tracer.Start(ctx, "post-log.replace")
	defer span.End()
	span.SetAttributes(attribute.Int("posts", len(posts)))

	records := make([][]string, 0, len(posts)+1)
	records = append(records, postsHeader)
	for i, p := range posts {
		records = append(records, []string{
			strconv.Itoa(i),
			formatTimestamp(p.CreatedAt),
			p.Text,
			p.Crypto,
		})
	}
	if err := writeRecordsAtomic(l.path, records); err != nil {
		return fmt.Errorf("persist posts: %w", err)
	}
	return nil
}

// Load reads the posts of the last run. A missing file yields no posts.
func (l *PostLog) Load(ctx context.Context) ([]domain.Post, error) {
	_, span := l.tracer.Start(ctx, "post-log.load")
	defer span.End()

	records, exists, err := readRecords(l.path)
	if err != nil {
		return nil, err
	}
	if !exists || len(records) < 2 {
		return []domain.Post{}, nil
	}
	cols := columnIndex(records[0])
	posts := make([]domain.Post, 0, len(records)-1)
	for n, record := range records[1:] {
		ts, err := parseTimestamp(cell(record, cols["created_at"]))
		if err != nil {
			return nil, fmt.Errorf("posts line %d: %w", n+2, err)
		}
		posts = append(posts, domain.Post{
			CreatedAt: ts,
			Text:      cell(record, cols["text"]),
			Crypto:    cell(record, cols["crypto"]),
		})
	}
	return posts, nil
}
