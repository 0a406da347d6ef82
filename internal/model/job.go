package model

import (
	"fmt"
	"strings"
	"time"
)

// JobStatus is the publication state of a job posting.
type JobStatus string

const (
	JobActive   JobStatus = "Active"
	JobInactive JobStatus = "Inactive"
)

// JobDetails is the admin-editable part of a job posting.
type JobDetails struct {
	Title            string    `bson:"title" json:"title" binding:"required"`
	Department       string    `bson:"department" json:"department" binding:"required"`
	Location         string    `bson:"location" json:"location" binding:"required"`
	Type             string    `bson:"type" json:"type" binding:"required"`
	Experience       string    `bson:"experience" json:"experience" binding:"required"`
	Salary           string    `bson:"salary" json:"salary"`
	Description      string    `bson:"description" json:"description" binding:"required"`
	Eligibility      []string  `bson:"eligibility" json:"eligibility"`
	Responsibilities []string  `bson:"responsibilities" json:"responsibilities"`
	Status           JobStatus `bson:"status" json:"status" binding:"omitempty,oneof=Active Inactive"`
}

// Job is a posting stored in the jobs collection.
type Job struct {
	StorageID  string `bson:"_id,omitempty" json:"_id,omitempty"`
	ID         string `bson:"id" json:"id"`
	JobDetails `bson:",inline"`

	PostedDate      time.Time `bson:"postedDate" json:"postedDate"`
	ApplicantsCount int       `bson:"applicantsCount" json:"applicantsCount"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

// JobUpdate is a partial job payload; nil fields are left untouched.
type JobUpdate struct {
	Title            *string    `json:"title"`
	Department       *string    `json:"department"`
	Location         *string    `json:"location"`
	Type             *string    `json:"type"`
	Experience       *string    `json:"experience"`
	Salary           *string    `json:"salary"`
	Description      *string    `json:"description"`
	Eligibility      *[]string  `json:"eligibility"`
	Responsibilities *[]string  `json:"responsibilities"`
	Status           *JobStatus `json:"status" binding:"omitempty,oneof=Active Inactive"`
}

// Fields returns the document fields set by the update.
// Required text fields may be changed but not blanked.
func (u JobUpdate) Fields() (map[string]any, error) {
	set := map[string]any{}
	required := []struct {
		name  string
		value *string
	}{
		{"title", u.Title},
		{"department", u.Department},
		{"location", u.Location},
		{"type", u.Type},
		{"experience", u.Experience},
		{"description", u.Description},
	}
	for _, f := range required {
		if f.value == nil {
			continue
		}
		if strings.TrimSpace(*f.value) == "" {
			return nil, fmt.Errorf("%s cannot be empty", f.name)
		}
		set[f.name] = *f.value
	}
	if u.Salary != nil {
		set["salary"] = *u.Salary
	}
	if u.Eligibility != nil {
		set["eligibility"] = *u.Eligibility
	}
	if u.Responsibilities != nil {
		set["responsibilities"] = *u.Responsibilities
	}
	if u.Status != nil {
		set["status"] = string(*u.Status)
	}
	return set, nil
}
