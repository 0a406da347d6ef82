// Package applicant provides HTTP handlers for job applications.
package applicant

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sachin-security/sachin-security-sub000/internal/controller"
	"github.com/sachin-security/sachin-security-sub000/internal/database"
	"github.com/sachin-security/sachin-security-sub000/internal/model"
	"github.com/sachin-security/sachin-security-sub000/internal/utilities"
)

const (
	msgApplicantNotFound = "Applicant not found"
	msgJobNotFound       = "Job not found"
	msgAlreadyApplied    = "You have already applied for this position"
	msgJobClosed         = "This position is no longer accepting applications"
)

var applicantFilters = controller.FilterSpec{
	Exact:  map[string]string{"jobId": "jobId", "status": "status"},
	Search: []string{"fullName", "email"},
}

// ApplicantController handles application endpoints
type ApplicantController struct {
	DB database.Store
}

// NewApplicantController creates a new instance of ApplicantController
func NewApplicantController(db database.Store) *ApplicantController {
	return &ApplicantController{
		DB: db,
	}
}

func (ac *ApplicantController) applicants() database.Collection {
	return ac.DB.Collection(model.CollectionApplicants)
}

// ApplyHandler records a public application for an Active job posting and bumps
// the posting's applicantsCount in the same transaction.
// @Summary Apply for a job
// @Description One application per job and email address
// @Tags Applicants
// @Accept json
// @Produce json
// @Param Application body model.ApplicantDetails true "Application"
// @Success 201 {object} utilities.Envelope{data=model.Applicant} "Application submitted"
// @Failure 400 {object} utilities.Envelope "Missing or invalid fields, or job closed"
// @Failure 404 {object} utilities.Envelope "Job not found"
// @Failure 409 {object} utilities.Envelope "Already applied"
// @Failure 500 {object} utilities.Envelope "Database error"
// @Router /applicants/apply [post]
func (ac *ApplicantController) ApplyHandler(c *gin.Context) {
	var details model.ApplicantDetails
	if err := utilities.BindJSON(c, &details); err != nil {
		utilities.RespondError(c, err)
		return
	}
	details.Email = strings.ToLower(strings.TrimSpace(details.Email))

	applicant, err := ac.apply(c.Request.Context(), details)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	utilities.Logger(c).Info("application received")
	c.JSON(http.StatusCreated, utilities.Envelope{
		Success: true,
		Data:    applicant,
		Message: "Application submitted successfully",
	})
}

func (ac *ApplicantController) apply(ctx context.Context, details model.ApplicantDetails) (model.Applicant, error) {
	jobs := ac.DB.Collection(model.CollectionJobs)

	var job model.Job
	if err := jobs.FindOne(ctx, database.ByID(details.JobID), &job); err != nil {
		return model.Applicant{}, utilities.FromStore(err, msgJobNotFound, "")
	}
	if job.Status != model.JobActive {
		return model.Applicant{}, utilities.ValidationError(msgJobClosed)
	}

	n, err := ac.applicants().Count(ctx, []database.Filter{
		database.Eq("jobId", details.JobID),
		database.Eq("email", details.Email),
	})
	if err != nil {
		return model.Applicant{}, utilities.Unhandled(err)
	}
	if n > 0 {
		return model.Applicant{}, utilities.ConflictError(msgAlreadyApplied)
	}

	seq, err := ac.DB.NextSequence(ctx, model.ApplicantSequence.Collection)
	if err != nil {
		return model.Applicant{}, utilities.Unhandled(err)
	}

	now := controller.Now()
	applicant := model.Applicant{
		ID:               model.ApplicantSequence.Format(seq),
		JobTitle:         job.Title,
		ApplicantDetails: details,
		Status:           model.ApplicantPending,
		AppliedDate:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// The unique (jobId, email) index rejects a concurrent duplicate that passed the count above.
	err = ac.DB.WithTransaction(ctx, func(ctx context.Context) error {
		id, err := ac.applicants().Insert(ctx, applicant)
		if err != nil {
			return err
		}
		applicant.StorageID = id
		return jobs.Increment(ctx, database.ByID(job.ID), "applicantsCount", 1)
	})
	if err != nil {
		return model.Applicant{}, utilities.FromStore(err, msgJobNotFound, msgAlreadyApplied)
	}
	return applicant, nil
}

// ListApplicantsHandler returns applications matching the query, most recent first.
// @Summary List applicants
// @Tags Applicants
// @Produce json
// @Param jobId query string false "Exact job id"
// @Param status query string false "Pending, Shortlisted or Rejected"
// @Param search query string false "Name or email, case insensitive substring"
// @Success 200 {object} utilities.Envelope{data=[]model.Applicant} "Applicants"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 500 {object} utilities.Envelope "Database error"
// @Router /applicants [get]
func (ac *ApplicantController) ListApplicantsHandler(c *gin.Context) {
	var applicants []model.Applicant
	err := ac.applicants().Find(c.Request.Context(), database.Query{
		Filters: controller.Filters(c, applicantFilters),
		SortBy:  "appliedDate",
	}, &applicants)
	if err != nil {
		utilities.RespondError(c, utilities.Unhandled(err))
		return
	}
	utilities.RespondList(c, applicants)
}

// GetApplicantHandler returns one application by id.
// @Summary Get applicant
// @Tags Applicants
// @Produce json
// @Param id path string true "Applicant id, e.g. APP0001"
// @Success 200 {object} utilities.Envelope{data=model.Applicant} "Applicant"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 404 {object} utilities.Envelope "Applicant not found"
// @Router /applicants/{id} [get]
func (ac *ApplicantController) GetApplicantHandler(c *gin.Context) {
	var applicant model.Applicant
	if err := ac.applicants().FindOne(c.Request.Context(), database.ByID(c.Param("id")), &applicant); err != nil {
		utilities.RespondError(c, utilities.FromStore(err, msgApplicantNotFound, ""))
		return
	}
	utilities.RespondData(c, http.StatusOK, applicant)
}

// UpdateApplicantStatusHandler sets the review status of one application.
// Any listed status may follow any other.
// @Summary Update applicant status
// @Tags Applicants
// @Accept json
// @Produce json
// @Param Status body model.ApplicantStatusUpdate true "Applicant id and new status"
// @Success 200 {object} utilities.Envelope "Status updated"
// @Failure 400 {object} utilities.Envelope "Missing id or invalid status"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 404 {object} utilities.Envelope "Applicant not found"
// @Router /applicants [patch]
func (ac *ApplicantController) UpdateApplicantStatusHandler(c *gin.Context) {
	var update model.ApplicantStatusUpdate
	if err := utilities.BindJSON(c, &update); err != nil {
		utilities.RespondError(c, err)
		return
	}

	err := ac.applicants().Update(c.Request.Context(), database.ByID(update.ID), map[string]any{
		"status":    string(update.Status),
		"updatedAt": controller.Now(),
	})
	if err != nil {
		utilities.RespondError(c, utilities.FromStore(err, msgApplicantNotFound, ""))
		return
	}
	utilities.RespondMessage(c, http.StatusOK, "Applicant status updated successfully")
}
