package model

import "time"

// EmployeeStatus is the employment state of a guard or staff member.
type EmployeeStatus string

const (
	EmployeeActive     EmployeeStatus = "Active"
	EmployeeInactive   EmployeeStatus = "Inactive"
	EmployeeTerminated EmployeeStatus = "Terminated"
)

// EmployeeDetails holds every field an admin can set on an employee record.
// A PUT replaces all of them.
type EmployeeDetails struct {
	// Personal
	FullName      string `bson:"fullName" json:"fullName" binding:"required"`
	FatherName    string `bson:"fatherName" json:"fatherName"`
	DateOfBirth   string `bson:"dateOfBirth" json:"dateOfBirth" binding:"required,datetime=2006-01-02"`
	Gender        string `bson:"gender" json:"gender" binding:"required,oneof=Male Female Other"`
	MaritalStatus string `bson:"maritalStatus" json:"maritalStatus"`
	BloodGroup    string `bson:"bloodGroup" json:"bloodGroup"`

	// Contact
	Email            string `bson:"email" json:"email" binding:"omitempty,email"`
	Phone            string `bson:"phone" json:"phone" binding:"required,phone"`
	AlternatePhone   string `bson:"alternatePhone" json:"alternatePhone" binding:"omitempty,phone"`
	CurrentAddress   string `bson:"currentAddress" json:"currentAddress" binding:"required"`
	PermanentAddress string `bson:"permanentAddress" json:"permanentAddress"`
	City             string `bson:"city" json:"city"`
	State            string `bson:"state" json:"state"`
	Pincode          string `bson:"pincode" json:"pincode" binding:"omitempty,pincode"`

	// Government IDs
	AadharNumber string `bson:"aadharNumber" json:"aadharNumber" binding:"required,aadhar"`
	PanNumber    string `bson:"panNumber" json:"panNumber" binding:"omitempty,pan"`
	UanNumber    string `bson:"uanNumber" json:"uanNumber"`
	EsicNumber   string `bson:"esicNumber" json:"esicNumber"`

	// Employment
	Designation    string         `bson:"designation" json:"designation" binding:"required"`
	Department     string         `bson:"department" json:"department"`
	SiteLocation   string         `bson:"siteLocation" json:"siteLocation"`
	JoiningDate    string         `bson:"joiningDate" json:"joiningDate" binding:"required,datetime=2006-01-02"`
	EmploymentType string         `bson:"employmentType" json:"employmentType"`
	Status         EmployeeStatus `bson:"status" json:"status" binding:"omitempty,oneof=Active Inactive Terminated"`

	// Salary
	BasicSalary float64 `bson:"basicSalary" json:"basicSalary" binding:"gte=0"`
	Allowances  float64 `bson:"allowances" json:"allowances" binding:"gte=0"`

	// Bank
	BankName          string `bson:"bankName" json:"bankName"`
	AccountNumber     string `bson:"accountNumber" json:"accountNumber"`
	IfscCode          string `bson:"ifscCode" json:"ifscCode" binding:"omitempty,ifsc"`
	AccountHolderName string `bson:"accountHolderName" json:"accountHolderName"`

	// Emergency contact
	EmergencyContactName     string `bson:"emergencyContactName" json:"emergencyContactName"`
	EmergencyContactRelation string `bson:"emergencyContactRelation" json:"emergencyContactRelation"`
	EmergencyContactPhone    string `bson:"emergencyContactPhone" json:"emergencyContactPhone" binding:"omitempty,phone"`

	ProfileURL      string `bson:"profileUrl" json:"profileUrl"`
	ProfileFilename string `bson:"profileFilename" json:"profileFilename"`
}

// Employee is a record in the employees collection.
type Employee struct {
	StorageID       string `bson:"_id,omitempty" json:"_id,omitempty"`
	ID              string `bson:"id" json:"id"`
	EmployeeDetails `bson:",inline"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
