package models

import (
	"fmt"
	"strings"
	"time"
)

// WorkSummary records the outcome of one attempt to process a
// candidate path: when it started and finished, and any errors
// along the way. The dispatcher keeps one per candidate.
type WorkSummary struct {
	// This is set to true when processing of the candidate starts.
	Attempted bool

	// Errors is a list of strings describing errors that occurred
	// while extracting or submitting this candidate.
	Errors []string

	// StartedAt describes when processing of the candidate started.
	StartedAt time.Time

	// FinishedAt describes when processing of the candidate
	// completed. Note that the attempt may have completed without
	// succeeding. Check the Succeeded() method to see whether it
	// actually worked.
	FinishedAt time.Time
}

func NewWorkSummary() *WorkSummary {
	return &WorkSummary{
		Attempted:  false,
		Errors:     make([]string, 0),
		StartedAt:  time.Time{},
		FinishedAt: time.Time{},
	}
}

func (summary *WorkSummary) Start() {
	summary.Attempted = true
	summary.StartedAt = time.Now().UTC()
}

func (summary *WorkSummary) Started() bool {
	return !summary.StartedAt.IsZero()
}

func (summary *WorkSummary) Finish() {
	summary.FinishedAt = time.Now().UTC()
}

func (summary *WorkSummary) Finished() bool {
	return !summary.FinishedAt.IsZero()
}

func (summary *WorkSummary) RunTime() time.Duration {
	startTime := summary.StartedAt
	if startTime.IsZero() {
		return time.Duration(0)
	}
	endTime := summary.FinishedAt
	if endTime.IsZero() {
		endTime = time.Now()
	}
	return endTime.Sub(startTime)
}

func (summary *WorkSummary) Succeeded() bool {
	return summary.Finished() && len(summary.Errors) == 0
}

func (summary *WorkSummary) AddError(format string, a ...interface{}) {
	summary.Errors = append(summary.Errors, fmt.Sprintf(format, a...))
}

func (summary *WorkSummary) HasErrors() bool {
	return len(summary.Errors) > 0
}

func (summary *WorkSummary) FirstError() string {
	firstError := ""
	if len(summary.Errors) > 0 {
		firstError = summary.Errors[0]
	}
	return firstError
}

func (summary *WorkSummary) AllErrorsAsString() string {
	if len(summary.Errors) > 0 {
		return strings.Join(summary.Errors, "\n")
	}
	return ""
}
