package stats_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/als-computing/scicat-beamline/constants"
	"github.com/als-computing/scicat-beamline/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRunStats() *stats.IngestRunStats {
	runStats := stats.NewIngestRunStats("run-0001")
	runStats.StartedAt = time.Now().UTC().Add(-90 * time.Second)
	runStats.AddSucceeded("/data/sample_001", "als/aaa-111")
	runStats.AddSucceeded("/data/sample_002", "als/bbb-222")
	runStats.AddUnmatched("/data/notes.md")
	runStats.AddFailedExtraction("/data/sample_003")
	runStats.AddFailedSubmission("/data/sample_004")
	runStats.AddError("Ingester als_11012_nexafs failed on /data/sample_003: no table header")
	runStats.AddWarning("Error attaching thumbnail to dataset als/aaa-111")
	runStats.FinishedAt = time.Now().UTC()
	return runStats
}

func TestNewIngestRunStats(t *testing.T) {
	runStats := stats.NewIngestRunStats("run-0001")
	assert.Equal(t, "run-0001", runStats.RunId)
	assert.NotNil(t, runStats.Succeeded)
	assert.NotNil(t, runStats.Unmatched)
	assert.NotNil(t, runStats.FailedExtraction)
	assert.NotNil(t, runStats.FailedSubmission)
	assert.NotNil(t, runStats.DatasetIds)
	assert.Equal(t, 0, runStats.Processed())
}

func TestRunStatsBuckets(t *testing.T) {
	runStats := sampleRunStats()
	assert.Equal(t, 5, runStats.Processed())
	assert.Equal(t, 2, len(runStats.Succeeded))
	assert.Equal(t, "als/aaa-111", runStats.DatasetIds["/data/sample_001"])
	assert.Equal(t, "als/bbb-222", runStats.DatasetIds["/data/sample_002"])
}

func TestRunStatsStateOf(t *testing.T) {
	runStats := sampleRunStats()
	assert.Equal(t, constants.StateSucceeded, runStats.StateOf("/data/sample_001"))
	assert.Equal(t, constants.StateUnmatched, runStats.StateOf("/data/notes.md"))
	assert.Equal(t, constants.StateExtractionFailed, runStats.StateOf("/data/sample_003"))
	assert.Equal(t, constants.StateSubmissionFailed, runStats.StateOf("/data/sample_004"))
	assert.Equal(t, "", runStats.StateOf("/data/never_seen"))
}

func TestRunStatsSummary(t *testing.T) {
	runStats := sampleRunStats()
	assert.Equal(t,
		"processed: 5, succeeded: 2, unmatched: 1, failed extraction: 1, failed submission: 1",
		runStats.Summary())
}

func TestRunStatsDumpAndLoad(t *testing.T) {
	runStats := sampleRunStats()
	pathToFile := filepath.Join(t.TempDir(), "run-0001.json")
	require.Nil(t, runStats.DumpToFile(pathToFile))

	loaded, err := stats.IngestRunStatsLoadFromFile(pathToFile)
	require.Nil(t, err)
	assert.Equal(t, runStats.RunId, loaded.RunId)
	assert.Equal(t, runStats.Succeeded, loaded.Succeeded)
	assert.Equal(t, runStats.Unmatched, loaded.Unmatched)
	assert.Equal(t, runStats.FailedExtraction, loaded.FailedExtraction)
	assert.Equal(t, runStats.FailedSubmission, loaded.FailedSubmission)
	assert.Equal(t, runStats.DatasetIds, loaded.DatasetIds)
	assert.Equal(t, runStats.Errors, loaded.Errors)
	assert.Equal(t, runStats.Warnings, loaded.Warnings)
}

func TestRunStatsDumpRefusesUnsafeOverwrite(t *testing.T) {
	pathToFile := filepath.Join(t.TempDir(), "precious.txt")
	require.Nil(t, os.WriteFile(pathToFile, []byte("do not clobber"), 0644))
	err := sampleRunStats().DumpToFile(pathToFile)
	require.NotNil(t, err)
	data, readErr := os.ReadFile(pathToFile)
	require.Nil(t, readErr)
	assert.Equal(t, "do not clobber", string(data))
}

func TestRunStatsLoadMissingFile(t *testing.T) {
	_, err := stats.IngestRunStatsLoadFromFile("/no/such/stats.json")
	assert.NotNil(t, err)
}
