package registry

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Sources lists where topics come from. Later sources override earlier ones
// key by key: seed, then directory, then URL.
type Sources struct {
	SkipSeed bool
	Dir      string
	URL      string
}

// Populate loads every configured source into reg
func (l *Loader) Populate(ctx context.Context, reg *Registry, src Sources) error {
	var batches [][]Topic

	if !src.SkipSeed {
		seed, err := l.LoadSeed()
		if err != nil {
			return fmt.Errorf("failed to load seed corpus: %w", err)
		}
		batches = append(batches, seed)
	}
	if src.Dir != "" {
		topics, err := l.LoadDir(ctx, src.Dir)
		if err != nil {
			return err
		}
		batches = append(batches, topics)
	}
	if src.URL != "" {
		topics, err := l.LoadURL(ctx, src.URL)
		if err != nil {
			return err
		}
		batches = append(batches, topics)
	}

	merged := make(map[string]Topic)
	order := []string{}
	for _, batch := range batches {
		for _, t := range batch {
			if _, seen := merged[t.Key]; !seen {
				order = append(order, t.Key)
			}
			merged[t.Key] = t
		}
	}

	topics := make([]Topic, 0, len(order))
	for _, key := range order {
		topics = append(topics, merged[key])
	}
	if err := reg.Replace(topics); err != nil {
		return err
	}

	l.logger.Info("Content registry populated", zap.Int("topics", reg.Len()))
	return nil
}
