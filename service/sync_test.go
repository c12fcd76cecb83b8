package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectool/vectool/store"
	"github.com/vectool/vectool/vecindex/memory"
)

func newTestService(t *testing.T) (*ToolService, *fakeDriver, *fakeEmbedder, *memory.Index) {
	t.Helper()
	driver := newFakeDriver()
	embedder := &fakeEmbedder{}
	index := memory.New()
	svc := New(newTestStore(driver), embedder, index, nil)
	return svc, driver, embedder, index
}

func TestEmbeddingText(t *testing.T) {
	tests := []struct {
		name        string
		toolName    string
		description string
		tags        []string
		want        string
	}{
		{
			name:        "name description and tags joined by single spaces",
			toolName:    "Redis",
			description: "in-memory key-value store",
			tags:        []string{"cache", "db"},
			want:        "Redis in-memory key-value store cache db",
		},
		{
			name:        "no tags",
			toolName:    "Redis",
			description: "kv store",
			tags:        nil,
			want:        "Redis kv store ",
		},
		{
			name:        "tag order preserved",
			toolName:    "a",
			description: "b",
			tags:        []string{"z", "y", "z"},
			want:        "a b z y z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, embeddingText(tt.toolName, tt.description, tt.tags))
		})
	}
}

func TestCreateToolAttachesVectorReference(t *testing.T) {
	ctx := context.Background()
	svc, _, _, index := newTestService(t)

	tool, err := svc.CreateTool(ctx, &CreateToolRequest{
		Name:        "Redis",
		Description: "in-memory key-value store",
		Tags:        []string{"cache", "db"},
		Metadata:    map[string]any{"license": "BSD"},
	})
	require.NoError(t, err)

	require.NotNil(t, tool.VectorID)
	assert.NotEmpty(t, *tool.VectorID)
	assert.Equal(t, 1, index.Len())

	// Round-trip through the store.
	got, err := svc.GetTool(ctx, tool.ID)
	require.NoError(t, err)
	assert.Equal(t, "Redis", got.Name)
	assert.Equal(t, "in-memory key-value store", got.Description)
	assert.Equal(t, []string{"cache", "db"}, got.Tags)
	assert.Equal(t, map[string]any{"license": "BSD"}, got.Metadata)
	require.NotNil(t, got.VectorID)
	assert.Equal(t, *tool.VectorID, *got.VectorID)
}

func TestCreateToolRequiresName(t *testing.T) {
	svc, _, _, index := newTestService(t)

	_, err := svc.CreateTool(context.Background(), &CreateToolRequest{Description: "x"})
	require.Error(t, err)
	assert.Equal(t, 0, index.Len())
}

func TestCreateToolEmbeddingFailureLeavesReferenceNull(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	index := memory.New()
	svc := New(newTestStore(driver), &failingEmbedder{}, index, nil)

	_, err := svc.CreateTool(ctx, &CreateToolRequest{Name: "broken", Description: "x"})
	require.Error(t, err)

	// The relational row exists but remains unsearchable.
	tools, err := svc.store.FindToolsWithoutVector(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Nil(t, tools[0].VectorID)
	assert.Equal(t, 0, index.Len())
}

func TestUpdateToolReusesVectorReference(t *testing.T) {
	ctx := context.Background()
	svc, _, _, index := newTestService(t)

	tool, err := svc.CreateTool(ctx, &CreateToolRequest{
		Name:        "Redis",
		Description: "in-memory key-value store",
		Tags:        []string{"cache"},
	})
	require.NoError(t, err)
	originalVectorID := *tool.VectorID

	newDescription := "distributed in-memory data structure server"
	updated, err := svc.UpdateTool(ctx, tool.ID, &UpdateToolRequest{Description: &newDescription})
	require.NoError(t, err)

	require.NotNil(t, updated.VectorID)
	assert.Equal(t, originalVectorID, *updated.VectorID, "update must reuse the existing reference")
	assert.Equal(t, 1, index.Len(), "in-place replacement must not grow the index")

	hits, err := index.Search(ctx, mustEmbed(t, "distributed data structure server"), 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, newDescription, hits[0].Payload.Description)
}

func TestUpdateToolWithoutVectorReferenceSkipsIndex(t *testing.T) {
	ctx := context.Background()
	svc, driver, _, index := newTestService(t)

	// A tool that was never synchronized: insert directly through the driver.
	tool, err := newTestStore(driver).CreateTool(ctx, &store.Tool{
		Name:        "orphan",
		Description: "never embedded",
	})
	require.NoError(t, err)
	require.Nil(t, tool.VectorID)

	before := index.Len()
	newName := "renamed orphan"
	updated, err := svc.UpdateTool(ctx, tool.ID, &UpdateToolRequest{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, "renamed orphan", updated.Name)
	assert.Nil(t, updated.VectorID)
	assert.Equal(t, before, index.Len(), "index must stay untouched for unsynchronized tools")
}

func TestUpdateToolNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	name := "x"
	_, err := svc.UpdateTool(context.Background(), "no-such-id", &UpdateToolRequest{Name: &name})
	require.ErrorIs(t, err, store.ErrToolNotFound)
}

func TestDeleteToolRemovesIndexEntryThenRow(t *testing.T) {
	ctx := context.Background()
	svc, _, _, index := newTestService(t)

	tool, err := svc.CreateTool(ctx, &CreateToolRequest{Name: "Redis", Description: "kv"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTool(ctx, tool.ID))

	assert.Equal(t, 0, index.Len())
	_, err = svc.GetTool(ctx, tool.ID)
	require.ErrorIs(t, err, store.ErrToolNotFound)
}

func TestDeleteToolNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	err := svc.DeleteTool(context.Background(), "no-such-id")
	require.ErrorIs(t, err, store.ErrToolNotFound)
}

func TestDeleteToolWithoutVectorReference(t *testing.T) {
	ctx := context.Background()
	svc, driver, _, _ := newTestService(t)

	tool, err := newTestStore(driver).CreateTool(ctx, &store.Tool{Name: "orphan", Description: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTool(ctx, tool.ID))
}

func mustEmbed(t *testing.T, text string) []float32 {
	t.Helper()
	vector, err := (&fakeEmbedder{}).Embed(context.Background(), text)
	require.NoError(t, err)
	return vector
}
