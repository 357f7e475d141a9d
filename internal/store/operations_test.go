package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markwiseapp/markwise-server/internal/domain"
)

func TestAppendAndListOperations(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, s.AppendOperation(ctx, &domain.OperationLogEntry{
		ID:            "op-1",
		CreatedAt:     base.Add(-time.Hour),
		Kind:          domain.OperationReclassify,
		AffectedCount: 12,
		SnapshotID:    "snap-1",
	}))
	require.NoError(t, s.AppendOperation(ctx, &domain.OperationLogEntry{
		ID:            "op-2",
		CreatedAt:     base,
		Kind:          domain.OperationClean,
		AffectedCount: 3,
		SnapshotID:    "snap-2",
	}))

	entries, err := s.ListOperations(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "op-2", entries[0].ID)
	assert.Equal(t, domain.OperationClean, entries[0].Kind)
	assert.Equal(t, "op-1", entries[1].ID)
	assert.Equal(t, 12, entries[1].AffectedCount)
}

func TestPruneOperations(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()
	for i := 0; i < 6; i++ {
		require.NoError(t, s.AppendOperation(ctx, &domain.OperationLogEntry{
			ID:        fmt.Sprintf("op-%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Kind:      domain.OperationReclassify,
		}))
	}

	require.NoError(t, s.PruneOperations(ctx, 3))

	entries, err := s.ListOperations(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "op-5", entries[0].ID)
	assert.Equal(t, "op-3", entries[2].ID)
}
