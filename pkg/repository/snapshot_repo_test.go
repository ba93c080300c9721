package repository_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/repository"
	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/status"
)

func newRepo(t *testing.T) *repository.SnapshotRepo {
	t.Helper()
	db, err := repository.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewSnapshotRepo(db)
}

func normalized(st, updatedAt string) *status.NormalizedExecutionStatus {
	return status.Normalize(status.Payload{"status": st, "updatedAt": updatedAt, "amountIn": "100"})
}

func TestSnapshotRepo_RecordAndHistory(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	latest, err := repo.Latest(ctx, "addr-1")
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, repo.Record(ctx, "addr-1", normalized("PENDING_DEPOSIT", "2025-01-01T00:00:00.000Z")))
	require.NoError(t, repo.Record(ctx, "addr-1", normalized("PROCESSING", "2025-01-01T00:01:00.000Z")))
	require.NoError(t, repo.Record(ctx, "addr-2", normalized("FAILED", "2025-01-01T00:02:00.000Z")))
	require.NoError(t, repo.Record(ctx, "addr-1", normalized("SUCCESS", "2025-01-01T00:03:00.000Z")))

	history, err := repo.History(ctx, "addr-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "SUCCESS", history[0].Status)
	assert.Equal(t, "PROCESSING", history[1].Status)
	assert.Equal(t, "PENDING_DEPOSIT", history[2].Status)
	assert.Equal(t, "100", history[0].Normalized.SwapDetails.AmountIn)
	assert.Equal(t, []any{}, history[0].Normalized.SwapDetails.NearTxHashes)
	assert.NotEmpty(t, history[0].ID)

	limited, err := repo.History(ctx, "addr-1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	latest, err = repo.Latest(ctx, "addr-2")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "FAILED", latest.Status)
}

func TestSnapshotRepo_SkipsRepeatedStatus(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Record(ctx, "addr", normalized("PROCESSING", "2025-01-01T00:00:00.000Z")))
	}
	require.NoError(t, repo.Record(ctx, "addr", normalized("PROCESSING", "2025-01-01T00:00:30.000Z")))

	history, err := repo.History(ctx, "addr", 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestSnapshotRepo_EmptyHistory(t *testing.T) {
	history, err := newRepo(t).History(context.Background(), "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.NotNil(t, history)
}

func TestSnapshotRepo_ConcurrentRecordsDeduplicate(t *testing.T) {
	ctx := context.Background()
	db, err := repository.InitDB(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := repository.NewSnapshotRepo(db)

	st := normalized("PROCESSING", "2025-01-01T00:01:00.000Z")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Record(ctx, "addr-1", st)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	history, err := repo.History(ctx, "addr-1", 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
