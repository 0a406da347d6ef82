package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sachin-security/sachin-security-sub000/internal/model"
)

func TestMemoryStore_RollbackKeepsConcurrentWritesToSameDocument(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	jobs := store.Collection(model.CollectionJobs)
	_, err := jobs.Insert(ctx, newJob("JOB001", "Security Guard", "Vadodara", time.Now()))
	require.NoError(t, err)
	_, err = jobs.Insert(ctx, newJob("JOB002", "Lady Guard", "Surat", time.Now()))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.WithTransaction(ctx, func(txCtx context.Context) error {
		require.NoError(t, jobs.Increment(txCtx, ByID("JOB001"), "applicantsCount", 3))
		require.NoError(t, jobs.Delete(txCtx, ByID("JOB002")))

		require.NoError(t, jobs.Increment(ctx, ByID("JOB001"), "applicantsCount", 1))
		_, err := jobs.Insert(ctx, newJob("JOB003", "Bouncer", "Ahmedabad", time.Now()))
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var got model.Job
	require.NoError(t, jobs.FindOne(ctx, ByID("JOB001"), &got))
	assert.Equal(t, 1, got.ApplicantsCount)

	n, err := jobs.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestMemoryStore_NestedTransactionJoinsOuter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	jobs := store.Collection(model.CollectionJobs)

	boom := errors.New("boom")
	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		err := store.WithTransaction(ctx, func(ctx context.Context) error {
			_, err := jobs.Insert(ctx, newJob("JOB001", "Security Guard", "Vadodara", time.Now()))
			return err
		})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := jobs.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
