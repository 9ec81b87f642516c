package service

import (
	"context"
	"io"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	TopicUserEvents     = "user_events"
	TopicProductEvents  = "product_events"
	TopicCategoryEvents = "category_events"
)

const sideEffectTimeout = 5 * time.Second

type TokenIssuer interface {
	Issue(userID uint, role string) (string, time.Time, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

type Indexer interface {
	IndexProduct(ctx context.Context, p models.Product) error
	RemoveProduct(ctx context.Context, id uint) error
}

type Searcher interface {
	Search(ctx context.Context, q string, from, size int) (total int64, ids []uint, err error)
}

// Event is the envelope written to every topic.
type Event struct {
	Type       string    `json:"type"`
	EntityID   uint      `json:"entity_id"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// bestEffort runs fn with a bounded context and only logs its failure.
func bestEffort(ctx context.Context, what string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logging.FromContext(ctx).Warn("side_effect_failed", "what", what, "error", err)
	}
}

func publish(ctx context.Context, p Publisher, topic, key string, ev Event) {
	if p == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	bestEffort(ctx, "publish "+ev.Type, func(ctx context.Context) error {
		return p.Publish(ctx, topic, key, ev)
	})
}
