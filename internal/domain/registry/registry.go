package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/GriffinCanCode/PyLearn/backend/internal/shared/utils"
)

var (
	ErrTopicNotFound = errors.New("topic not found")
	ErrDuplicateKey  = errors.New("duplicate topic key")
)

// Topic is one learning page
type Topic struct {
	Key         string `json:"key" yaml:"key" toml:"key"`
	Label       string `json:"label" yaml:"label" toml:"label"`
	BadgeID     string `json:"badge_id" yaml:"badge_id" toml:"badge_id"`
	Color       string `json:"color" yaml:"color" toml:"color"`
	Description string `json:"description" yaml:"description" toml:"description"`
	Intro       string `json:"intro" yaml:"intro" toml:"intro"`
}

// Validate checks required fields
func (t Topic) Validate() error {
	if err := utils.ValidateTopicKey(t.Key); err != nil {
		return err
	}
	if err := utils.ValidateString(t.Label, "label", 1, utils.MaxLabelLength, true); err != nil {
		return fmt.Errorf("topic %s: %w", t.Key, err)
	}
	if err := utils.ValidateString(t.Description, "description", 0, utils.MaxDescriptionLength, false); err != nil {
		return fmt.Errorf("topic %s: %w", t.Key, err)
	}
	if err := utils.ValidateIntro(t.Intro); err != nil {
		return fmt.Errorf("topic %s: %w", t.Key, err)
	}
	return nil
}

// Registry is a thread-safe topic store
type Registry struct {
	mu     sync.RWMutex
	topics map[string]Topic
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		topics: make(map[string]Topic),
	}
}

// Register adds a topic; the key must be new
func (r *Registry) Register(topic Topic) error {
	if err := topic.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.topics[topic.Key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, topic.Key)
	}
	r.topics[topic.Key] = topic
	return nil
}

// Put adds or replaces a topic
func (r *Registry) Put(topic Topic) error {
	if err := topic.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	r.topics[topic.Key] = topic
	r.mu.Unlock()
	return nil
}

// Replace swaps the whole topic set atomically
func (r *Registry) Replace(topics []Topic) error {
	next := make(map[string]Topic, len(topics))
	for _, t := range topics {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, exists := next[t.Key]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, t.Key)
		}
		next[t.Key] = t
	}

	r.mu.Lock()
	r.topics = next
	r.mu.Unlock()
	return nil
}

// Get returns a topic by key
func (r *Registry) Get(key string) (Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topic, ok := r.topics[key]
	if !ok {
		return Topic{}, fmt.Errorf("%w: %s", ErrTopicNotFound, key)
	}
	return topic, nil
}

// List returns all topics sorted by key
func (r *Registry) List() []Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := make([]Topic, 0, len(r.topics))
	for _, t := range r.topics {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool {
		return topics[i].Key < topics[j].Key
	})
	return topics
}

// Len returns the number of topics
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.topics)
}
