package service

import (
	"context"
	"log/slog"
)

// Backfill embeds and indexes every tool that has no vector reference yet,
// attaching each reference immediately after its index entry is written.
// The first failure aborts the remaining batch; records committed before the
// abort keep their references. Returns the number of records synchronized.
func (s *ToolService) Backfill(ctx context.Context) (int, error) {
	tools, err := s.store.FindToolsWithoutVector(ctx)
	if err != nil {
		return 0, err
	}

	slog.Info("found tools without vector embeddings", "count", len(tools))

	synced := 0
	for _, tool := range tools {
		vectorID, err := s.syncOnCreate(ctx, tool)
		if err != nil {
			return synced, err
		}
		if _, err := s.store.AttachToolVector(ctx, tool.ID, vectorID); err != nil {
			return synced, err
		}
		synced++
		slog.Info("synced tool", "name", tool.Name, "id", tool.ID)
	}

	return synced, nil
}
