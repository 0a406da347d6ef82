// Package employee provides HTTP handlers for employee records.
package employee

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sachin-security/sachin-security-sub000/internal/controller"
	"github.com/sachin-security/sachin-security-sub000/internal/database"
	"github.com/sachin-security/sachin-security-sub000/internal/model"
	"github.com/sachin-security/sachin-security-sub000/internal/utilities"
)

const (
	msgEmployeeNotFound = "Employee not found"
	msgDuplicateAadhar  = "An employee with this Aadhar number already exists"
)

var employeeFilters = controller.FilterSpec{
	Exact:  map[string]string{"status": "status", "department": "department", "designation": "designation"},
	Search: []string{"fullName", "siteLocation"},
}

// EmployeeController handles employee endpoints
type EmployeeController struct {
	DB database.Store
}

// NewEmployeeController creates a new instance of EmployeeController
func NewEmployeeController(db database.Store) *EmployeeController {
	return &EmployeeController{
		DB: db,
	}
}

func (ec *EmployeeController) employees() database.Collection {
	return ec.DB.Collection(model.CollectionEmployees)
}

// aadharTaken reports whether another employee than exceptID holds aadhar.
func (ec *EmployeeController) aadharTaken(ctx context.Context, aadhar, exceptID string) (bool, error) {
	var existing model.Employee
	err := ec.employees().FindOne(ctx, []database.Filter{database.Eq("aadharNumber", aadhar)}, &existing)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, utilities.Unhandled(err)
	}
	return existing.ID != exceptID, nil
}

// ListEmployeesHandler returns employees matching the query, newest first.
// @Summary List employees
// @Tags Employees
// @Produce json
// @Param status query string false "Active, Inactive or Terminated"
// @Param department query string false "Exact department"
// @Param designation query string false "Exact designation"
// @Param search query string false "Name or site location, case insensitive substring"
// @Success 200 {object} utilities.Envelope{data=[]model.Employee} "Employees"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 500 {object} utilities.Envelope "Database error"
// @Router /employees [get]
func (ec *EmployeeController) ListEmployeesHandler(c *gin.Context) {
	var employees []model.Employee
	err := ec.employees().Find(c.Request.Context(), database.Query{
		Filters: controller.Filters(c, employeeFilters),
		SortBy:  "createdAt",
	}, &employees)
	if err != nil {
		utilities.RespondError(c, utilities.Unhandled(err))
		return
	}
	utilities.RespondList(c, employees)
}

// GetEmployeeHandler returns one employee by id.
// @Summary Get employee
// @Tags Employees
// @Produce json
// @Param id path string true "Employee id, e.g. EMP001"
// @Success 200 {object} utilities.Envelope{data=model.Employee} "Employee"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 404 {object} utilities.Envelope "Employee not found"
// @Router /employees/{id} [get]
func (ec *EmployeeController) GetEmployeeHandler(c *gin.Context) {
	var employee model.Employee
	if err := ec.employees().FindOne(c.Request.Context(), database.ByID(c.Param("id")), &employee); err != nil {
		utilities.RespondError(c, utilities.FromStore(err, msgEmployeeNotFound, ""))
		return
	}
	utilities.RespondData(c, http.StatusOK, employee)
}

// CreateEmployeeHandler creates an employee record with the next EMP id.
// @Summary Create employee
// @Description aadharNumber must be unique; status defaults to Active
// @Tags Employees
// @Accept json
// @Produce json
// @Param Employee body model.EmployeeDetails true "Employee"
// @Success 201 {object} utilities.Envelope{data=model.Employee} "Created employee"
// @Failure 400 {object} utilities.Envelope "Missing or invalid fields"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 409 {object} utilities.Envelope "Duplicate Aadhar number"
// @Failure 500 {object} utilities.Envelope "Database error"
// @Router /employees [post]
func (ec *EmployeeController) CreateEmployeeHandler(c *gin.Context) {
	var details model.EmployeeDetails
	if err := utilities.BindJSON(c, &details); err != nil {
		utilities.RespondError(c, err)
		return
	}
	if details.Status == "" {
		details.Status = model.EmployeeActive
	}

	ctx := c.Request.Context()
	taken, err := ec.aadharTaken(ctx, details.AadharNumber, "")
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	if taken {
		utilities.RespondError(c, utilities.ConflictError(msgDuplicateAadhar))
		return
	}

	seq, err := ec.DB.NextSequence(ctx, model.EmployeeSequence.Collection)
	if err != nil {
		utilities.RespondError(c, utilities.Unhandled(err))
		return
	}

	now := controller.Now()
	employee := model.Employee{
		ID:              model.EmployeeSequence.Format(seq),
		EmployeeDetails: details,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	employee.StorageID, err = ec.employees().Insert(ctx, employee)
	if err != nil {
		utilities.RespondError(c, utilities.FromStore(err, "", msgDuplicateAadhar))
		return
	}

	c.JSON(http.StatusCreated, utilities.Envelope{
		Success: true,
		Data:    employee,
		Message: "Employee created successfully",
	})
}

// UpdateEmployeeHandler replaces every editable field of an employee.
// @Summary Replace employee
// @Description Fields left out of the body are cleared
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Employee id"
// @Param Employee body model.EmployeeDetails true "Employee"
// @Success 200 {object} utilities.Envelope{data=model.Employee} "Updated employee"
// @Failure 400 {object} utilities.Envelope "Missing or invalid fields"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 404 {object} utilities.Envelope "Employee not found"
// @Failure 409 {object} utilities.Envelope "Duplicate Aadhar number"
// @Router /employees/{id} [put]
func (ec *EmployeeController) UpdateEmployeeHandler(c *gin.Context) {
	var details model.EmployeeDetails
	if err := utilities.BindJSON(c, &details); err != nil {
		utilities.RespondError(c, err)
		return
	}
	if details.Status == "" {
		details.Status = model.EmployeeActive
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	taken, err := ec.aadharTaken(ctx, details.AadharNumber, id)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	if taken {
		utilities.RespondError(c, utilities.ConflictError(msgDuplicateAadhar))
		return
	}

	set, err := utilities.FieldMap(details)
	if err != nil {
		utilities.RespondError(c, utilities.Unhandled(err))
		return
	}
	set["updatedAt"] = controller.Now()

	if err := ec.employees().Update(ctx, database.ByID(id), set); err != nil {
		utilities.RespondError(c, utilities.FromStore(err, msgEmployeeNotFound, msgDuplicateAadhar))
		return
	}

	var employee model.Employee
	if err := ec.employees().FindOne(ctx, database.ByID(id), &employee); err != nil {
		utilities.RespondError(c, utilities.FromStore(err, msgEmployeeNotFound, ""))
		return
	}
	utilities.RespondData(c, http.StatusOK, employee)
}

// DeleteEmployeeHandler removes an employee record.
// @Summary Delete employee
// @Tags Employees
// @Produce json
// @Param id path string true "Employee id"
// @Success 200 {object} utilities.Envelope "Employee deleted successfully"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 404 {object} utilities.Envelope "Employee not found"
// @Router /employees/{id} [delete]
func (ec *EmployeeController) DeleteEmployeeHandler(c *gin.Context) {
	if err := ec.employees().Delete(c.Request.Context(), database.ByID(c.Param("id"))); err != nil {
		utilities.RespondError(c, utilities.FromStore(err, msgEmployeeNotFound, ""))
		return
	}
	utilities.RespondMessage(c, http.StatusOK, "Employee deleted successfully")
}
