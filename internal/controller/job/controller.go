// Package job provides HTTP handlers for job postings and the public careers page.
package job

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sachin-security/sachin-security-sub000/internal/controller"
	"github.com/sachin-security/sachin-security-sub000/internal/database"
	"github.com/sachin-security/sachin-security-sub000/internal/model"
	"github.com/sachin-security/sachin-security-sub000/internal/utilities"
)

const (
	msgJobNotFound  = "Job not found"
	msgJobIDInUse   = "Job id already exists"
	sortJobsByField = "postedDate"
)

var (
	jobFilters = controller.FilterSpec{
		Exact:    map[string]string{"status": "status", "department": "department", "type": "type"},
		Contains: map[string]string{"location": "location"},
		Search:   []string{"title"},
	}
	careerFilters = controller.FilterSpec{
		Exact:    map[string]string{"department": "department", "type": "type"},
		Contains: map[string]string{"location": "location"},
		Search:   []string{"title"},
	}
)

// JobController handles job posting endpoints
type JobController struct {
	DB database.Store
}

// NewJobController creates a new instance of JobController
func NewJobController(db database.Store) *JobController {
	return &JobController{
		DB: db,
	}
}

func (jc *JobController) jobs() database.Collection {
	return jc.DB.Collection(model.CollectionJobs)
}

func (jc *JobController) list(ctx context.Context, filters []database.Filter) ([]model.Job, error) {
	var jobs []model.Job
	err := jc.jobs().Find(ctx, database.Query{Filters: filters, SortBy: sortJobsByField}, &jobs)
	if err != nil {
		return nil, utilities.Unhandled(err)
	}
	return jobs, nil
}

func (jc *JobController) find(ctx context.Context, filters []database.Filter) (model.Job, error) {
	var job model.Job
	err := jc.jobs().FindOne(ctx, filters, &job)
	return job, utilities.FromStore(err, msgJobNotFound, "")
}

// ListJobsHandler returns every job posting matching the query, newest first.
// @Summary List job postings
// @Tags Jobs
// @Produce json
// @Param status query string false "Active or Inactive"
// @Param department query string false "Exact department"
// @Param type query string false "Exact employment type"
// @Param location query string false "Location, case insensitive substring"
// @Param search query string false "Title, case insensitive substring"
// @Success 200 {object} utilities.Envelope{data=[]model.Job} "Job postings"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 500 {object} utilities.Envelope "Database error"
// @Router /jobs [get]
func (jc *JobController) ListJobsHandler(c *gin.Context) {
	jobs, err := jc.list(c.Request.Context(), controller.Filters(c, jobFilters))
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	utilities.RespondList(c, jobs)
}

// ListCareersHandler returns the Active job postings shown on the careers page.
// @Summary List open positions
// @Tags Careers
// @Produce json
// @Param department query string false "Exact department"
// @Param type query string false "Exact employment type"
// @Param location query string false "Location, case insensitive substring"
// @Param search query string false "Title, case insensitive substring"
// @Success 200 {object} utilities.Envelope{data=[]model.Job} "Open positions"
// @Failure 500 {object} utilities.Envelope "Database error"
// @Router /careers [get]
func (jc *JobController) ListCareersHandler(c *gin.Context) {
	filters := append(controller.Filters(c, careerFilters), database.Eq("status", string(model.JobActive)))
	jobs, err := jc.list(c.Request.Context(), filters)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	utilities.RespondList(c, jobs)
}

// GetJobHandler returns one job posting by its id.
// @Summary Get job posting
// @Tags Jobs
// @Produce json
// @Param id path string true "Job id, e.g. JOB001"
// @Success 200 {object} utilities.Envelope{data=model.Job} "Job posting"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 404 {object} utilities.Envelope "Job not found"
// @Router /jobs/{id} [get]
func (jc *JobController) GetJobHandler(c *gin.Context) {
	job, err := jc.find(c.Request.Context(), database.ByID(c.Param("id")))
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	utilities.RespondData(c, http.StatusOK, job)
}

// GetCareerHandler returns one Active job posting. Inactive postings are reported as not found.
// @Summary Get open position
// @Tags Careers
// @Produce json
// @Param id path string true "Job id, e.g. JOB001"
// @Success 200 {object} utilities.Envelope{data=model.Job} "Open position"
// @Failure 404 {object} utilities.Envelope "Job not found"
// @Router /careers/{id} [get]
func (jc *JobController) GetCareerHandler(c *gin.Context) {
	filters := append(database.ByID(c.Param("id")), database.Eq("status", string(model.JobActive)))
	job, err := jc.find(c.Request.Context(), filters)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	utilities.RespondData(c, http.StatusOK, job)
}

// CreateJobHandler creates a job posting with the next JOB id.
// @Summary Create job posting
// @Description status defaults to Active; applicantsCount starts at 0
// @Tags Jobs
// @Accept json
// @Produce json
// @Param Job body model.JobDetails true "Job posting"
// @Success 201 {object} utilities.Envelope{data=model.Job} "Created job posting"
// @Failure 400 {object} utilities.Envelope "Missing or invalid fields"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 500 {object} utilities.Envelope "Database error"
// @Router /jobs [post]
func (jc *JobController) CreateJobHandler(c *gin.Context) {
	var details model.JobDetails
	if err := utilities.BindJSON(c, &details); err != nil {
		utilities.RespondError(c, err)
		return
	}

	job, err := jc.createJob(c.Request.Context(), details)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	utilities.RespondData(c, http.StatusCreated, job)
}

func (jc *JobController) createJob(ctx context.Context, details model.JobDetails) (model.Job, error) {
	if details.Status == "" {
		details.Status = model.JobActive
	}
	if details.Eligibility == nil {
		details.Eligibility = []string{}
	}
	if details.Responsibilities == nil {
		details.Responsibilities = []string{}
	}

	seq, err := jc.DB.NextSequence(ctx, model.JobSequence.Collection)
	if err != nil {
		return model.Job{}, utilities.Unhandled(err)
	}

	now := controller.Now()
	job := model.Job{
		ID:         model.JobSequence.Format(seq),
		JobDetails: details,
		PostedDate: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	job.StorageID, err = jc.jobs().Insert(ctx, job)
	if err != nil {
		return model.Job{}, utilities.FromStore(err, "", msgJobIDInUse)
	}
	return job, nil
}

// UpdateJobHandler merges the given fields into a job posting.
// @Summary Update job posting
// @Description Only the fields present in the body change. Required fields cannot be blanked.
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job id"
// @Param Job body model.JobUpdate true "Fields to change"
// @Success 200 {object} utilities.Envelope{data=model.Job} "Updated job posting"
// @Failure 400 {object} utilities.Envelope "Invalid fields"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 404 {object} utilities.Envelope "Job not found"
// @Router /jobs/{id} [put]
func (jc *JobController) UpdateJobHandler(c *gin.Context) {
	var update model.JobUpdate
	if err := utilities.BindJSON(c, &update); err != nil {
		utilities.RespondError(c, err)
		return
	}

	set, err := update.Fields()
	if err != nil {
		utilities.RespondError(c, utilities.ValidationError("%s", err.Error()))
		return
	}
	if len(set) == 0 {
		utilities.RespondError(c, utilities.ValidationError("No fields to update"))
		return
	}
	set["updatedAt"] = controller.Now()

	ctx := c.Request.Context()
	id := c.Param("id")
	if err := jc.jobs().Update(ctx, database.ByID(id), set); err != nil {
		utilities.RespondError(c, utilities.FromStore(err, msgJobNotFound, msgJobIDInUse))
		return
	}

	job, err := jc.find(ctx, database.ByID(id))
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	utilities.RespondData(c, http.StatusOK, job)
}

// DeleteJobHandler removes a job posting. Its applicants are kept.
// @Summary Delete job posting
// @Tags Jobs
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} utilities.Envelope "Job deleted successfully"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 404 {object} utilities.Envelope "Job not found"
// @Router /jobs/{id} [delete]
func (jc *JobController) DeleteJobHandler(c *gin.Context) {
	if err := jc.jobs().Delete(c.Request.Context(), database.ByID(c.Param("id"))); err != nil {
		utilities.RespondError(c, utilities.FromStore(err, msgJobNotFound, ""))
		return
	}
	utilities.RespondMessage(c, http.StatusOK, "Job deleted successfully")
}
