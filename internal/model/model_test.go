package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceFormat(t *testing.T) {
	assert.Equal(t, "JOB001", JobSequence.Format(1))
	assert.Equal(t, "APP0001", ApplicantSequence.Format(1))
	assert.Equal(t, "EMP042", EmployeeSequence.Format(42))
	assert.Equal(t, "JOB1000", JobSequence.Format(1000))
}

func TestJobUpdateFields(t *testing.T) {
	title := "Bouncer"
	status := JobInactive
	tags := []string{"10th pass"}

	set, err := JobUpdate{Title: &title, Status: &status, Eligibility: &tags}.Fields()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"title":       "Bouncer",
		"status":      "Inactive",
		"eligibility": []string{"10th pass"},
	}, set)
}

func TestJobUpdateFields_RejectsBlankRequired(t *testing.T) {
	blank := "  "
	_, err := JobUpdate{Location: &blank}.Fields()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "location")
}
