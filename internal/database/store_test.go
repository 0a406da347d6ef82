package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/sachin-security/sachin-security-sub000/internal/model"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	runStoreSuite(t, store, true)
}

func TestMongoStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	teardown, store, err := GetTestMongo(ctx)
	if teardown != nil {
		t.Cleanup(func() { _ = teardown(context.Background()) })
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	runStoreSuite(t, store, false)
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	teardown, store, err := GetTestPostgres(ctx)
	if teardown != nil {
		t.Cleanup(func() { _ = teardown(context.Background()) })
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	runStoreSuite(t, store, true)

	stats := store.Health(ctx)
	assert.Equal(t, "up", stats["status"])
	assert.Equal(t, "It's healthy", stats["message"])
}

func runStoreSuite(t *testing.T, store Store, transactional bool) {
	ctx := context.Background()

	reset := func(t *testing.T) {
		require.NoError(t, store.Drop(ctx, model.Collections...))
		require.NoError(t, store.EnsureIndexes(ctx, model.UniqueIndexes))
	}

	t.Run("insert and find one", func(t *testing.T) {
		reset(t)
		jobs := store.Collection(model.CollectionJobs)

		id, err := jobs.Insert(ctx, newJob("JOB001", "Security Guard", "Vadodara", time.Now()))
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		var got model.Job
		require.NoError(t, jobs.FindOne(ctx, ByID("JOB001"), &got))
		assert.Equal(t, id, got.StorageID)
		assert.Equal(t, "Security Guard", got.Title)
		assert.Equal(t, []string{"Night shift"}, got.Responsibilities)

		var byStorage model.Job
		require.NoError(t, jobs.FindOne(ctx, ByStorageID(id), &byStorage))
		assert.Equal(t, "JOB001", byStorage.ID)

		err = jobs.FindOne(ctx, ByID("JOB999"), &got)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("find filters and sorts newest first", func(t *testing.T) {
		reset(t)
		jobs := store.Collection(model.CollectionJobs)
		base := time.Now().UTC().Truncate(time.Second)

		_, err := jobs.Insert(ctx, newJob("JOB001", "Security Guard", "Vadodara", base.Add(-2*time.Hour)))
		require.NoError(t, err)
		_, err = jobs.Insert(ctx, newJob("JOB002", "Lady Guard", "Ahmedabad", base.Add(-time.Hour)))
		require.NoError(t, err)
		_, err = jobs.Insert(ctx, newJob("JOB003", "Security Supervisor", "vadodara west", base))
		require.NoError(t, err)

		var all []model.Job
		require.NoError(t, jobs.Find(ctx, Query{SortBy: "postedDate"}, &all))
		require.Len(t, all, 3)
		assert.Equal(t, []string{"JOB003", "JOB002", "JOB001"}, jobIDs(all))

		var inVadodara []model.Job
		require.NoError(t, jobs.Find(ctx, Query{
			Filters: []Filter{Contains("location", "VADODARA")},
			SortBy:  "postedDate",
		}, &inVadodara))
		assert.Equal(t, []string{"JOB003", "JOB001"}, jobIDs(inVadodara))

		var exact []model.Job
		require.NoError(t, jobs.Find(ctx, Query{
			Filters: []Filter{Eq("location", "Ahmedabad"), Contains("title", "guard")},
		}, &exact))
		assert.Equal(t, []string{"JOB002"}, jobIDs(exact))

		var either []model.Job
		require.NoError(t, jobs.Find(ctx, Query{
			Filters: []Filter{Search("ahmed", "title", "location")},
			SortBy:  "postedDate",
		}, &either))
		assert.Equal(t, []string{"JOB002"}, jobIDs(either))

		require.NoError(t, jobs.Find(ctx, Query{
			Filters: []Filter{Eq("status", string(model.JobActive)), Search("SUPER", "title", "location")},
		}, &either))
		assert.Equal(t, []string{"JOB003"}, jobIDs(either))

		var none []model.Job
		require.NoError(t, jobs.Find(ctx, Query{Filters: []Filter{Contains("title", "50%_off")}}, &none))
		assert.Empty(t, none)

		n, err := jobs.Count(ctx, []Filter{Eq("status", string(model.JobActive))})
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("equal timestamps list newest insert first", func(t *testing.T) {
		reset(t)
		jobs := store.Collection(model.CollectionJobs)
		posted := time.Now().UTC().Truncate(time.Second)

		for _, id := range []string{"JOB001", "JOB002", "JOB003", "JOB004", "JOB005"} {
			_, err := jobs.Insert(ctx, newJob(id, "Security Guard", "Vadodara", posted))
			require.NoError(t, err)
		}

		var all []model.Job
		require.NoError(t, jobs.Find(ctx, Query{SortBy: "postedDate"}, &all))
		assert.Equal(t, []string{"JOB005", "JOB004", "JOB003", "JOB002", "JOB001"}, jobIDs(all))
	})

	t.Run("update increment delete", func(t *testing.T) {
		reset(t)
		jobs := store.Collection(model.CollectionJobs)
		_, err := jobs.Insert(ctx, newJob("JOB001", "Security Guard", "Vadodara", time.Now()))
		require.NoError(t, err)

		require.NoError(t, jobs.Update(ctx, ByID("JOB001"), map[string]any{"status": "Inactive", "salary": "15000"}))
		require.NoError(t, jobs.Increment(ctx, ByID("JOB001"), "applicantsCount", 1))
		require.NoError(t, jobs.Increment(ctx, ByID("JOB001"), "applicantsCount", 1))

		var got model.Job
		require.NoError(t, jobs.FindOne(ctx, ByID("JOB001"), &got))
		assert.Equal(t, model.JobInactive, got.Status)
		assert.Equal(t, "15000", got.Salary)
		assert.Equal(t, "Security Guard", got.Title)
		assert.Equal(t, 2, got.ApplicantsCount)

		assert.ErrorIs(t, jobs.Update(ctx, ByID("JOB404"), map[string]any{"status": "Active"}), ErrNotFound)
		assert.ErrorIs(t, jobs.Increment(ctx, ByID("JOB404"), "applicantsCount", 1), ErrNotFound)

		require.NoError(t, jobs.Delete(ctx, ByID("JOB001")))
		assert.ErrorIs(t, jobs.Delete(ctx, ByID("JOB001")), ErrNotFound)
	})

	t.Run("unique indexes", func(t *testing.T) {
		reset(t)
		applicants := store.Collection(model.CollectionApplicants)

		first := model.Applicant{ID: "APP0001", ApplicantDetails: model.ApplicantDetails{JobID: "JOB001", Email: "a@example.com"}}
		_, err := applicants.Insert(ctx, first)
		require.NoError(t, err)

		dup := model.Applicant{ID: "APP0002", ApplicantDetails: model.ApplicantDetails{JobID: "JOB001", Email: "a@example.com"}}
		_, err = applicants.Insert(ctx, dup)
		assert.ErrorIs(t, err, ErrDuplicate)

		otherJob := model.Applicant{ID: "APP0003", ApplicantDetails: model.ApplicantDetails{JobID: "JOB002", Email: "a@example.com"}}
		_, err = applicants.Insert(ctx, otherJob)
		require.NoError(t, err)

		employees := store.Collection(model.CollectionEmployees)
		_, err = employees.Insert(ctx, model.Employee{ID: "EMP001", EmployeeDetails: model.EmployeeDetails{AadharNumber: "111122223333"}})
		require.NoError(t, err)
		_, err = employees.Insert(ctx, model.Employee{ID: "EMP002", EmployeeDetails: model.EmployeeDetails{AadharNumber: "444455556666"}})
		require.NoError(t, err)

		err = employees.Update(ctx, ByID("EMP002"), map[string]any{"aadharNumber": "111122223333"})
		assert.ErrorIs(t, err, ErrDuplicate)

		var unchanged model.Employee
		require.NoError(t, employees.FindOne(ctx, ByID("EMP002"), &unchanged))
		assert.Equal(t, "444455556666", unchanged.AadharNumber)
	})

	t.Run("sequences are atomic", func(t *testing.T) {
		reset(t)
		const workers = 20
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			seen = map[int64]bool{}
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, err := store.NextSequence(ctx, model.CollectionJobs)
				assert.NoError(t, err)
				mu.Lock()
				seen[n] = true
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.Len(t, seen, workers)
		for i := int64(1); i <= workers; i++ {
			assert.True(t, seen[i], "missing sequence value %d", i)
		}
	})

	t.Run("transaction", func(t *testing.T) {
		reset(t)
		jobs := store.Collection(model.CollectionJobs)
		_, err := jobs.Insert(ctx, newJob("JOB001", "Security Guard", "Vadodara", time.Now()))
		require.NoError(t, err)

		boom := errors.New("boom")
		err = store.WithTransaction(ctx, func(ctx context.Context) error {
			if _, err := store.Collection(model.CollectionApplicants).Insert(ctx, model.Applicant{ID: "APP0001"}); err != nil {
				return err
			}
			if err := jobs.Increment(ctx, ByID("JOB001"), "applicantsCount", 1); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		if !transactional {
			return
		}

		n, err := store.Collection(model.CollectionApplicants).Count(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)

		var got model.Job
		require.NoError(t, jobs.FindOne(ctx, ByID("JOB001"), &got))
		assert.Zero(t, got.ApplicantsCount)
	})

	t.Run("rollback keeps writes made outside the transaction", func(t *testing.T) {
		reset(t)
		jobs := store.Collection(model.CollectionJobs)
		_, err := jobs.Insert(ctx, newJob("JOB001", "Security Guard", "Vadodara", time.Now()))
		require.NoError(t, err)

		boom := errors.New("boom")
		err = store.WithTransaction(ctx, func(txCtx context.Context) error {
			if _, err := jobs.Insert(txCtx, newJob("JOB002", "Lady Guard", "Surat", time.Now())); err != nil {
				return err
			}
			if err := jobs.Increment(txCtx, ByID("JOB001"), "applicantsCount", 5); err != nil {
				return err
			}

			// A concurrent request writing without the transaction context.
			if _, err := jobs.Insert(ctx, newJob("JOB003", "Bouncer", "Ahmedabad", time.Now())); err != nil {
				return err
			}
			if _, err := store.NextSequence(ctx, model.CollectionJobs); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		if !transactional {
			return
		}

		var outside model.Job
		require.NoError(t, jobs.FindOne(ctx, ByID("JOB003"), &outside))
		assert.Equal(t, "Bouncer", outside.Title)

		assert.ErrorIs(t, jobs.FindOne(ctx, ByID("JOB002"), &model.Job{}), ErrNotFound)

		var counted model.Job
		require.NoError(t, jobs.FindOne(ctx, ByID("JOB001"), &counted))
		assert.Zero(t, counted.ApplicantsCount)

		next, err := store.NextSequence(ctx, model.CollectionJobs)
		require.NoError(t, err)
		assert.Equal(t, int64(2), next)
	})
}

func newJob(id, title, location string, posted time.Time) model.Job {
	return model.Job{
		ID: id,
		JobDetails: model.JobDetails{
			Title:            title,
			Department:       "Security",
			Location:         location,
			Type:             "Full-time",
			Experience:       "1-2 years",
			Description:      "Guard duty",
			Responsibilities: []string{"Night shift"},
			Status:           model.JobActive,
		},
		PostedDate: posted,
		CreatedAt:  posted,
		UpdatedAt:  posted,
	}
}

func jobIDs(jobs []model.Job) []string {
	ids := make([]string, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
	}
	return ids
}
