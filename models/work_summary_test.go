package models_test

import (
	"testing"
	"time"

	"github.com/als-computing/scicat-beamline/models"
	"github.com/stretchr/testify/assert"
)

func TestNewWorkSummary(t *testing.T) {
	s := models.NewWorkSummary()
	assert.False(t, s.Attempted)
	assert.NotNil(t, s.Errors)
	assert.Equal(t, 0, len(s.Errors))
	assert.True(t, s.StartedAt.IsZero())
	assert.True(t, s.FinishedAt.IsZero())
}

func TestSummaryStart(t *testing.T) {
	s := models.NewWorkSummary()
	assert.False(t, s.Started())
	s.Start()
	assert.True(t, s.Started())
	assert.True(t, s.Attempted)
	assert.False(t, s.StartedAt.IsZero())
}

func TestSummaryFinish(t *testing.T) {
	s := models.NewWorkSummary()
	assert.False(t, s.Finished())
	s.Finish()
	assert.True(t, s.Finished())
	assert.False(t, s.FinishedAt.IsZero())
}

func TestSummaryRunTime(t *testing.T) {
	s := models.NewWorkSummary()
	now := time.Now()
	fiveMinutesAgo := now.Add(-5 * time.Minute)
	s.StartedAt = fiveMinutesAgo
	s.FinishedAt = now
	assert.EqualValues(t, 5*time.Minute, s.RunTime())
}

func TestSummarySucceeded(t *testing.T) {
	s := models.NewWorkSummary()

	// Not finished.
	assert.False(t, s.Succeeded())

	// Finished with no errors
	s.Finish()
	assert.True(t, s.Succeeded())

	// Finished with errors
	s.AddError("Oopsie!")
	assert.False(t, s.Succeeded())
}

func TestSummaryAddError(t *testing.T) {
	s := models.NewWorkSummary()
	s.AddError("First error is number %d", 1)
	assert.Equal(t, 1, len(s.Errors))
	assert.Equal(t, "First error is number 1", s.Errors[0])

	s.AddError("%s error is number %d", "Second", 2)
	assert.Equal(t, 2, len(s.Errors))
	assert.Equal(t, "Second error is number 2", s.Errors[1])
}

func TestSummaryHasErrors(t *testing.T) {
	s := models.NewWorkSummary()
	assert.False(t, s.HasErrors())
	s.AddError("First error is number %d", 1)
	assert.True(t, s.HasErrors())
}

func TestSummaryFirstError(t *testing.T) {
	s := models.NewWorkSummary()
	assert.Equal(t, "", s.FirstError())
	s.AddError("First error is number %d", 1)
	assert.Equal(t, "First error is number 1", s.FirstError())
	s.AddError("Second error is number %d", 2)
	assert.Equal(t, "First error is number 1", s.FirstError())
}

func TestSummaryAllErrorsAsString(t *testing.T) {
	s := models.NewWorkSummary()
	s.AddError("First error is number %d", 1)
	s.AddError("Second error is number %d", 2)
	assert.Equal(t, "First error is number 1\nSecond error is number 2", s.AllErrorsAsString())
}
