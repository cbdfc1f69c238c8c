package views

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/content"
	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/disclosure"
	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/registry"
	"github.com/GriffinCanCode/PyLearn/backend/internal/shared/id"
	"github.com/GriffinCanCode/PyLearn/backend/internal/shared/utils"
)

var ErrViewNotFound = errors.New("view not found")

// TopicSource resolves topics by key
type TopicSource interface {
	Get(key string) (registry.Topic, error)
}

// view is one mounted page. Its mutex serializes interaction callbacks.
type view struct {
	mu          sync.Mutex
	id          id.ViewID
	topic       registry.Topic
	fingerprint string
	doc         content.Document
	state       *disclosure.State
	mountedAt   time.Time
	updatedAt   time.Time
}

// Snapshot is the externally visible state of a view
type Snapshot struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	Sections    int       `json:"sections"`
	Dropped     int       `json:"dropped"`
	Open        []int     `json:"open"`
	Fingerprint string    `json:"fingerprint"`
	MountedAt   time.Time `json:"mounted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Stats summarizes mounted views
type Stats struct {
	Mounted int64 `json:"mounted"`
	Total   int64 `json:"total"`
}

// Manager owns all mounted views
type Manager struct {
	views   sync.Map
	topics  TopicSource
	hasher  *utils.Hasher
	mounted atomic.Int64
	total   atomic.Int64
}

// NewManager creates a manager reading topics from source
func NewManager(source TopicSource) *Manager {
	return &Manager{
		topics: source,
		hasher: utils.NewHasher(utils.BLAKE2b),
	}
}

// Mount creates an all-collapsed view of topicKey
func (m *Manager) Mount(topicKey string) (Snapshot, error) {
	topic, err := m.topics.Get(topicKey)
	if err != nil {
		return Snapshot{}, err
	}

	now := time.Now()
	v := &view{
		id:        id.NewViewID(),
		mountedAt: now,
	}
	v.rebuild(topic, m.hasher.Fingerprint(topic.Intro), now)

	m.views.Store(v.id, v)
	m.mounted.Add(1)
	m.total.Add(1)

	return v.snapshot(), nil
}

// Get returns the current snapshot of a view
func (m *Manager) Get(viewID string) (Snapshot, error) {
	return m.mutate(viewID, nil)
}

// Toggle flips one section
func (m *Manager) Toggle(viewID string, index int) (Snapshot, error) {
	return m.mutate(viewID, func(s *disclosure.State) { s.Toggle(index) })
}

// ExpandAll opens every section
func (m *Manager) ExpandAll(viewID string) (Snapshot, error) {
	return m.mutate(viewID, (*disclosure.State).ExpandAll)
}

// CollapseAll closes every section
func (m *Manager) CollapseAll(viewID string) (Snapshot, error) {
	return m.mutate(viewID, (*disclosure.State).CollapseAll)
}

// Page builds the render model for a view
func (m *Manager) Page(viewID string) (disclosure.Page, error) {
	v, err := m.lookup(viewID)
	if err != nil {
		return disclosure.Page{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := m.refresh(v); err != nil {
		return disclosure.Page{}, err
	}
	return disclosure.BuildPage(v.topic.Label, v.doc, v.state), nil
}

// Unmount discards a view. It reports whether the view existed.
func (m *Manager) Unmount(viewID string) bool {
	if _, ok := m.views.LoadAndDelete(id.ViewID(viewID)); !ok {
		return false
	}
	m.mounted.Add(-1)
	return true
}

// Stats returns mount counters
func (m *Manager) Stats() Stats {
	return Stats{
		Mounted: m.mounted.Load(),
		Total:   m.total.Load(),
	}
}

func (m *Manager) lookup(viewID string) (*view, error) {
	value, ok := m.views.Load(id.ViewID(viewID))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, viewID)
	}
	return value.(*view), nil
}

func (m *Manager) mutate(viewID string, fn func(*disclosure.State)) (Snapshot, error) {
	v, err := m.lookup(viewID)
	if err != nil {
		return Snapshot{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := m.refresh(v); err != nil {
		return Snapshot{}, err
	}
	if fn != nil {
		fn(v.state)
		v.updatedAt = time.Now()
	}
	return v.snapshot(), nil
}

// refresh resets the view when its topic's intro changed
func (m *Manager) refresh(v *view) error {
	topic, err := m.topics.Get(v.topic.Key)
	if err != nil {
		return err
	}

	fp := m.hasher.Fingerprint(topic.Intro)
	if fp == v.fingerprint {
		v.topic = topic
		return nil
	}
	v.rebuild(topic, fp, time.Now())
	return nil
}

func (v *view) rebuild(topic registry.Topic, fingerprint string, now time.Time) {
	v.topic = topic
	v.fingerprint = fingerprint
	v.doc = content.Parse(topic.Intro)
	v.state = disclosure.NewState(len(v.doc.Sections))
	v.updatedAt = now
}

func (v *view) snapshot() Snapshot {
	return Snapshot{
		ID:          v.id.String(),
		Topic:       v.topic.Key,
		Sections:    len(v.doc.Sections),
		Dropped:     v.doc.Dropped,
		Open:        v.state.Visible(),
		Fingerprint: v.fingerprint,
		MountedAt:   v.mountedAt,
		UpdatedAt:   v.updatedAt,
	}
}
