// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	// Init swagger doc
	_ "github.com/sachin-security/sachin-security-sub000/docs"

	"github.com/sachin-security/sachin-security-sub000/internal/auth"
	"github.com/sachin-security/sachin-security-sub000/internal/controller/applicant"
	"github.com/sachin-security/sachin-security-sub000/internal/controller/contact"
	"github.com/sachin-security/sachin-security-sub000/internal/controller/employee"
	"github.com/sachin-security/sachin-security-sub000/internal/controller/file"
	"github.com/sachin-security/sachin-security-sub000/internal/controller/job"
	"github.com/sachin-security/sachin-security-sub000/internal/middleware"
	"github.com/sachin-security/sachin-security-sub000/internal/model"
	"github.com/sachin-security/sachin-security-sub000/internal/utilities"
)

// Admin page paths served behind the page-mode gate.
const (
	AdminHome  = "/admin/"
	AdminLogin = "/admin/login"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	utilities.RegisterValidators()

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.CorrelationID(),
		middleware.SlogLogger(s.Logger),
		middleware.Metrics(),
		middleware.SafeHeader(s.Config.Auth.CookieSecure),
	)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.Config.Server.AllowOrigins, // Admin and public site origins
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Content-Type", "X-Correlation-ID"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Correlation-ID"},
		AllowCredentials: true, // Enable cookies/auth
	}))

	login := auth.NewLoginHandler(s.Credentials, s.Tokens, s.Revoker, s.Config.Auth.CookieSecure)
	jobs := job.NewJobController(s.DB)
	applicants := applicant.NewApplicantController(s.DB)
	employees := employee.NewEmployeeController(s.DB)
	messages := contact.NewContactController(s.DB)
	files := file.NewFileController(s.DB, s.Objects, s.Config.Storage.MaxUploadBytes)

	limit := middleware.RateLimiterMiddleware(s.Config.RateLimit.RequestsPerSecond)
	sizeLimit := middleware.SizeLimit(s.Config.Storage.MaxUploadBytes)
	adminOnly := middleware.CheckRole(model.RoleAdmin)

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		// Public site
		api.POST("/login", limit, login.LoginHandler)
		api.GET("/careers", jobs.ListCareersHandler)
		api.GET("/careers/:id", jobs.GetCareerHandler)
		api.POST("/applicants/apply", limit, applicants.ApplyHandler)
		api.POST("/contact", limit, messages.SubmitMessageHandler)
		api.POST("/upload/resume", limit, sizeLimit, files.UploadResumeHandler)

		needAuth := api.Group("")
		{
			needAuth.Use(
				middleware.RequestGate(s.Tokens, middleware.GateConfig{API: true}),
				middleware.CheckRole(model.RoleAdmin, model.RoleHR),
			)
			needAuth.GET("/session", auth.SessionHandler)

			jobRoute := needAuth.Group("/jobs")
			{
				jobRoute.GET("", jobs.ListJobsHandler)
				jobRoute.POST("", jobs.CreateJobHandler)
				jobRoute.GET("/:id", jobs.GetJobHandler)
				jobRoute.PUT("/:id", jobs.UpdateJobHandler)
				jobRoute.DELETE("/:id", adminOnly, jobs.DeleteJobHandler)
			}

			applicantRoute := needAuth.Group("/applicants")
			{
				applicantRoute.GET("", applicants.ListApplicantsHandler)
				applicantRoute.PATCH("", applicants.UpdateApplicantStatusHandler)
				applicantRoute.GET("/:id", applicants.GetApplicantHandler)
			}

			employeeRoute := needAuth.Group("/employees")
			{
				employeeRoute.GET("", employees.ListEmployeesHandler)
				employeeRoute.POST("", employees.CreateEmployeeHandler)
				employeeRoute.GET("/:id", employees.GetEmployeeHandler)
				employeeRoute.PUT("/:id", employees.UpdateEmployeeHandler)
				employeeRoute.DELETE("/:id", adminOnly, employees.DeleteEmployeeHandler)
			}

			contactRoute := needAuth.Group("/contact")
			{
				contactRoute.GET("", messages.ListMessagesHandler)
				contactRoute.PATCH("", messages.UpdateMessageStatusHandler)
				contactRoute.GET("/:id", messages.GetMessageHandler)
			}

			needAuth.POST("/upload/profile", sizeLimit, files.UploadProfileHandler)
			needAuth.GET("/download/profile/:fileId", files.DownloadProfileHandler)
			needAuth.GET("/download/resume/:fileId", files.DownloadResumeHandler)
		}
	}

	admin := r.Group("/admin", middleware.RequestGate(s.Tokens, middleware.GateConfig{
		LoginPath: AdminLogin,
		HomePath:  AdminHome,
	}))
	admin.GET("/*filepath", s.adminPageHandler)

	return r
}

func (s *MyServer) healthHandler(c *gin.Context) {
	stats := s.DB.Health(c.Request.Context())
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, stats)
}

// adminPageHandler serves the static admin bundle. Extensionless paths resolve to
// their .html page, so /admin/employees serves employees.html.
func (s *MyServer) adminPageHandler(c *gin.Context) {
	name := path.Clean("/" + c.Param("filepath"))
	switch {
	case name == "/":
		name = "/index.html"
	case path.Ext(name) == "":
		name += ".html"
	}

	full := filepath.Join(s.Config.Server.AdminDir, filepath.FromSlash(name))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		c.Status(http.StatusNotFound)
		return
	}
	c.File(full)
}
