package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sachin-security/sachin-security-sub000/internal/database"
	"github.com/sachin-security/sachin-security-sub000/internal/model"
)

// CountFix records one corrected applicantsCount.
type CountFix struct {
	JobID string
	From  int
	To    int
}

// ReconcileApplicantCounts recomputes applicantsCount of every job from the applicants
// collection and rewrites the ones that drifted. Running it twice changes nothing the second time.
func ReconcileApplicantCounts(ctx context.Context, db database.Store, logger *slog.Logger) ([]CountFix, error) {
	var jobs []model.Job
	if err := db.Collection(model.CollectionJobs).Find(ctx, database.Query{}, &jobs); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	applicants := db.Collection(model.CollectionApplicants)
	var fixes []CountFix
	for _, job := range jobs {
		n, err := applicants.Count(ctx, []database.Filter{database.Eq("jobId", job.ID)})
		if err != nil {
			return fixes, fmt.Errorf("count applicants of %s: %w", job.ID, err)
		}
		if int(n) == job.ApplicantsCount {
			continue
		}

		err = db.Collection(model.CollectionJobs).Update(ctx, database.ByID(job.ID), map[string]any{
			"applicantsCount": n,
		})
		if err != nil {
			return fixes, fmt.Errorf("update %s: %w", job.ID, err)
		}
		logger.Info("applicant count corrected",
			slog.String("jobId", job.ID),
			slog.Int("from", job.ApplicantsCount),
			slog.Int64("to", n),
		)
		fixes = append(fixes, CountFix{JobID: job.ID, From: job.ApplicantsCount, To: int(n)})
	}
	return fixes, nil
}
