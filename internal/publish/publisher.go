package publish

import (
	"context"
	"fmt"
	"log/slog"
)

// Artifact is one file produced by a build.
type Artifact struct {
	Name string
	Data []byte
}

// Publisher uploads build artifacts under a common prefix.
type Publisher struct {
	store  ObjectStore
	prefix string
	logger *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithPrefix sets the key prefix shared by all builds.
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a Publisher for store.
func NewPublisher(store ObjectStore, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish uploads artifacts to <prefix>/<dataset>/<buildID>/<name> and
// returns their locations in input order.
func (p *Publisher) Publish(ctx context.Context, dataset, buildID string, artifacts []Artifact) ([]string, error) {
	locations := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		key := JoinKey(p.prefix, dataset, buildID, a.Name)
		loc, err := p.store.Put(ctx, key, a.Data, ContentType(a.Name))
		if err != nil {
			return locations, fmt.Errorf("failed to publish %s: %w", a.Name, err)
		}
		p.logger.Info("published artifact", "name", a.Name, "location", loc, "bytes", len(a.Data))
		locations = append(locations, loc)
	}
	return locations, nil
}
