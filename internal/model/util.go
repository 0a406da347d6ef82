// Package model contains the documents stored by the back-office API.
package model

import "fmt"

// Collection names.
const (
	CollectionJobs       = "jobs"
	CollectionApplicants = "applicants"
	CollectionEmployees  = "employees"
	CollectionSupport    = "support_messages"
	CollectionUploads    = "uploads"
	CollectionBlobs      = "upload_blobs"
)

// Collections lists every collection the service writes to.
var Collections = []string{
	CollectionJobs,
	CollectionApplicants,
	CollectionEmployees,
	CollectionSupport,
	CollectionUploads,
	CollectionBlobs,
}

// UniqueIndexes maps a collection to its unique field combinations.
var UniqueIndexes = map[string][][]string{
	CollectionJobs:       {{"id"}},
	CollectionApplicants: {{"id"}, {"jobId", "email"}},
	CollectionEmployees:  {{"id"}, {"aadharNumber"}},
	CollectionSupport:    {{"id"}},
}

// Sequential id prefixes and pad widths.
var (
	JobSequence       = Sequence{Collection: CollectionJobs, Prefix: "JOB", Width: 3}
	ApplicantSequence = Sequence{Collection: CollectionApplicants, Prefix: "APP", Width: 4}
	EmployeeSequence  = Sequence{Collection: CollectionEmployees, Prefix: "EMP", Width: 3}
	SupportSequence   = Sequence{Collection: CollectionSupport, Prefix: "MSG", Width: 4}
)

// Sequence describes a human readable id series.
type Sequence struct {
	Collection string
	Prefix     string
	Width      int
}

// Format renders the n-th id of the series, e.g. JOB001.
func (s Sequence) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", s.Prefix, s.Width, n)
}
