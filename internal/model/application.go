package model

import "time"

// ApplicantStatus is the review state of an application.
type ApplicantStatus string

const (
	ApplicantPending     ApplicantStatus = "Pending"
	ApplicantShortlisted ApplicantStatus = "Shortlisted"
	ApplicantRejected    ApplicantStatus = "Rejected"
)

// ApplicantDetails is what a candidate submits from the careers page.
type ApplicantDetails struct {
	JobID          string `bson:"jobId" json:"jobId" binding:"required"`
	FullName       string `bson:"fullName" json:"fullName" binding:"required"`
	Email          string `bson:"email" json:"email" binding:"required,email"`
	Phone          string `bson:"phone" json:"phone" binding:"required,phone"`
	DateOfBirth    string `bson:"dateOfBirth" json:"dateOfBirth" binding:"required,datetime=2006-01-02"`
	Education      string `bson:"education" json:"education" binding:"required"`
	Experience     string `bson:"experience" json:"experience" binding:"required"`
	Address        string `bson:"address" json:"address" binding:"required"`
	ResumeURL      string `bson:"resumeUrl" json:"resumeUrl" binding:"required"`
	ResumeFilename string `bson:"resumeFilename" json:"resumeFilename"`
	CoverLetter    string `bson:"coverLetter" json:"coverLetter"`
}

// Applicant is an application stored in the applicants collection.
type Applicant struct {
	StorageID        string `bson:"_id,omitempty" json:"_id,omitempty"`
	ID               string `bson:"id" json:"id"`
	JobTitle         string `bson:"jobTitle" json:"jobTitle"`
	ApplicantDetails `bson:",inline"`

	Status      ApplicantStatus `bson:"status" json:"status"`
	AppliedDate time.Time       `bson:"appliedDate" json:"appliedDate"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// ApplicantStatusUpdate is the body of PATCH /api/applicants.
type ApplicantStatusUpdate struct {
	ID     string          `json:"id" binding:"required"`
	Status ApplicantStatus `json:"status" binding:"required,oneof=Pending Shortlisted Rejected"`
}
