package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vectool/vectool/store"
	"github.com/vectool/vectool/vecindex"
)

// embeddingText builds the single embedding input for a tool: name,
// description and tags joined by single spaces, in that order.
func embeddingText(name, description string, tags []string) string {
	return fmt.Sprintf("%s %s %s", name, description, strings.Join(tags, " "))
}

func indexPayload(tool *store.Tool) vecindex.Payload {
	return vecindex.Payload{
		ID:          tool.ID,
		Name:        tool.Name,
		Description: tool.Description,
		Tags:        tool.Tags,
	}
}

// syncOnCreate embeds the tool's text and writes a fresh index entry.
// Returns the generated vector reference. Embedding or index failures
// propagate to the caller; there is no retry.
func (s *ToolService) syncOnCreate(ctx context.Context, tool *store.Tool) (string, error) {
	vector, err := s.embedder.Embed(ctx, embeddingText(tool.Name, tool.Description, tool.Tags))
	s.metrics.ObserveEmbedding(err)
	if err != nil {
		return "", err
	}

	vectorID := uuid.NewString()
	err = s.index.Upsert(ctx, vectorID, vector, indexPayload(tool))
	s.metrics.ObserveSync("create", err)
	if err != nil {
		return "", err
	}

	return vectorID, nil
}

// syncOnUpdate re-embeds the tool and replaces its index entry in place,
// reusing the existing vector reference. A tool with no vector reference is
// skipped: its text changes are never reflected in the index and subsequent
// searches will not surface the update.
func (s *ToolService) syncOnUpdate(ctx context.Context, tool *store.Tool) error {
	if tool.VectorID == nil || *tool.VectorID == "" {
		return nil
	}

	vector, err := s.embedder.Embed(ctx, embeddingText(tool.Name, tool.Description, tool.Tags))
	s.metrics.ObserveEmbedding(err)
	if err != nil {
		return err
	}

	err = s.index.Upsert(ctx, *tool.VectorID, vector, indexPayload(tool))
	s.metrics.ObserveSync("update", err)
	return err
}

// syncOnDelete removes the index entry behind the vector reference. A nil
// reference is a no-op; a missing index entry counts as success.
func (s *ToolService) syncOnDelete(ctx context.Context, vectorID *string) error {
	if vectorID == nil || *vectorID == "" {
		return nil
	}

	err := s.index.Delete(ctx, *vectorID)
	s.metrics.ObserveSync("delete", err)
	return err
}
