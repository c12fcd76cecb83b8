package service

import (
	"context"
	"database/sql"
	"hash/fnv"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/vectool/vectool/store"
)

// fakeDriver is an in-memory store.Driver for tests.
type fakeDriver struct {
	mu      sync.Mutex
	tools   map[string]*store.Tool
	history []*store.SearchHistory
	nextTs  int64
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{tools: map[string]*store.Tool{}}
}

func newTestStore(driver store.Driver) *store.Store {
	return store.New(driver, nil)
}

func (d *fakeDriver) GetDB() *sql.DB { return nil }

func (d *fakeDriver) Close() error { return nil }

func (d *fakeDriver) Migrate(_ context.Context) error { return nil }

func (d *fakeDriver) CreateTool(_ context.Context, create *store.Tool) (*store.Tool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextTs++
	create.CreatedTs = d.nextTs
	create.UpdatedTs = d.nextTs
	if create.Tags == nil {
		create.Tags = []string{}
	}
	if create.Metadata == nil {
		create.Metadata = map[string]any{}
	}
	clone := *create
	d.tools[create.ID] = &clone
	return create, nil
}

func (d *fakeDriver) ListTools(_ context.Context, find *store.FindTool) ([]*store.Tool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list := []*store.Tool{}
	for _, tool := range d.tools {
		if find.ID != nil && tool.ID != *find.ID {
			continue
		}
		if find.VectorID != nil && (tool.VectorID == nil || *tool.VectorID != *find.VectorID) {
			continue
		}
		if find.WithoutVector && tool.VectorID != nil {
			continue
		}
		clone := *tool
		list = append(list, &clone)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedTs > list[j].CreatedTs
	})

	if find.Offset != nil {
		if *find.Offset >= len(list) {
			return []*store.Tool{}, nil
		}
		list = list[*find.Offset:]
	}
	if find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (d *fakeDriver) UpdateTool(_ context.Context, update *store.UpdateTool) (*store.Tool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tool, ok := d.tools[update.ID]
	if !ok {
		return nil, store.ErrToolNotFound
	}
	if update.Name != nil {
		tool.Name = *update.Name
	}
	if update.Description != nil {
		tool.Description = *update.Description
	}
	if update.Tags != nil {
		tool.Tags = *update.Tags
	}
	if update.Metadata != nil {
		tool.Metadata = *update.Metadata
	}
	if update.VectorID != nil {
		tool.VectorID = update.VectorID
	}
	d.nextTs++
	tool.UpdatedTs = d.nextTs

	clone := *tool
	return &clone, nil
}

func (d *fakeDriver) DeleteTool(_ context.Context, del *store.DeleteTool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.tools[del.ID]; !ok {
		return store.ErrToolNotFound
	}
	delete(d.tools, del.ID)
	return nil
}

func (d *fakeDriver) CreateSearchHistory(_ context.Context, create *store.SearchHistory) (*store.SearchHistory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextTs++
	create.CreatedTs = d.nextTs
	clone := *create
	d.history = append(d.history, &clone)
	return create, nil
}

func (d *fakeDriver) ListSearchHistory(_ context.Context, find *store.FindSearchHistory) ([]*store.SearchHistory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list := []*store.SearchHistory{}
	for i := len(d.history) - 1; i >= 0; i-- {
		entry := *d.history[i]
		list = append(list, &entry)
	}
	if find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

// fakeEmbedder produces deterministic bag-of-words vectors so that texts
// sharing tokens score higher than unrelated texts under cosine similarity.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	// failAfter, when > 0, makes every call past the n-th return an error.
	failAfter int
}

const fakeDimensions = 16

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls++
	if e.failAfter > 0 && e.calls > e.failAfter {
		return nil, errors.New("embedding provider unavailable")
	}

	vector := make([]float32, fakeDimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vector[h.Sum32()%fakeDimensions]++
	}
	return vector, nil
}

func (e *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vector, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vector)
	}
	return vectors, nil
}

func (e *fakeEmbedder) Dimensions() int { return fakeDimensions }

// failingEmbedder fails every call.
type failingEmbedder struct{}

func (e *failingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("embedding provider unavailable")
}

func (e *failingEmbedder) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, errors.New("embedding provider unavailable")
}

func (e *failingEmbedder) Dimensions() int { return fakeDimensions }
