package sermons_test

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/lectern/internal/audio"
	"github.com/JaimeStill/lectern/internal/sermons"
)

// memStore is an in-memory sermons.Store that counts calls and can inject failures.
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]sermons.Sermon
	next    int64

	calls     map[string]int
	failWrite error
}

func newMemStore() *memStore {
	return &memStore{
		records: make(map[uuid.UUID]sermons.Sermon),
		calls:   make(map[string]int),
	}
}

func (m *memStore) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *memStore) total() int {
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *memStore) matching(search *string) []sermons.Sermon {
	items := make([]sermons.Sermon, 0, len(m.records))
	for _, s := range m.records {
		if search != nil && !contains(s.Title, *search) && !contains(s.Description, *search) {
			continue
		}
		items = append(items, s)
	}
	slices.SortFunc(items, func(a, b sermons.Sermon) int {
		return int(b.Position - a.Position)
	})
	return items
}

func contains(field *string, search string) bool {
	return field != nil && strings.Contains(strings.ToLower(*field), strings.ToLower(search))
}

func (m *memStore) Count(_ context.Context, search *string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["count"]++
	return len(m.matching(search)), nil
}

func (m *memStore) Page(_ context.Context, search *string, offset, limit int) ([]sermons.Sermon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["page"]++

	items := m.matching(search)
	if offset >= len(items) {
		return []sermons.Sermon{}, nil
	}
	return items[offset:min(offset+limit, len(items))], nil
}

func (m *memStore) Find(_ context.Context, id uuid.UUID) (*sermons.Sermon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["find"]++

	s, ok := m.records[id]
	if !ok {
		return nil, sermons.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) Create(ctx context.Context, title, description *string, asset audio.Asset) (*sermons.Sermon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["create"]++

	if m.failWrite != nil {
		return nil, m.failWrite
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.next++
	s := sermons.Sermon{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		AssetURL:    asset.URL,
		AssetID:     asset.ID,
		Position:    m.next,
	}
	m.records[s.ID] = s
	return &s, nil
}

func (m *memStore) Update(_ context.Context, id uuid.UUID, patch sermons.Patch) (*sermons.Sermon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["update"]++

	if m.failWrite != nil {
		return nil, m.failWrite
	}

	s, ok := m.records[id]
	if !ok {
		return nil, sermons.ErrNotFound
	}
	if patch.Title != nil {
		s.Title = patch.Title
	}
	if patch.Description != nil {
		s.Description = patch.Description
	}
	if patch.Asset != nil {
		s.AssetURL = patch.Asset.URL
		s.AssetID = patch.Asset.ID
	}
	m.records[id] = s
	return &s, nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["delete"]++

	if _, ok := m.records[id]; !ok {
		return sermons.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

// countingPipeline wraps a Pipeline and counts calls. afterUpload, when set,
// runs once a successful Upload returns.
type countingPipeline struct {
	audio.Pipeline
	mu          sync.Mutex
	calls       int
	afterUpload func()
}

func (c *countingPipeline) inc() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *countingPipeline) Upload(ctx context.Context, data []byte) (audio.Asset, error) {
	c.inc()
	asset, err := c.Pipeline.Upload(ctx, data)
	if err == nil && c.afterUpload != nil {
		c.afterUpload()
	}
	return asset, err
}

func (c *countingPipeline) Replace(ctx context.Context, id string, data []byte) (audio.Asset, error) {
	c.inc()
	return c.Pipeline.Replace(ctx, id, data)
}

func (c *countingPipeline) Remove(ctx context.Context, id string) (audio.Removal, error) {
	c.inc()
	return c.Pipeline.Remove(ctx, id)
}
