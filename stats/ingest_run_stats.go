package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/als-computing/scicat-beamline/constants"
	"github.com/als-computing/scicat-beamline/util"
	"github.com/als-computing/scicat-beamline/util/fileutil"
)

// IngestRunStats is the report one dispatcher run produces: which
// candidate paths landed in which terminal state, plus any warnings
// and errors worth keeping. It is cheap enough to keep for every
// run, and DumpToFile makes it available to integration tests that
// want to compare what the dispatcher said it did against what
// actually happened.
type IngestRunStats struct {
	// RunId identifies one dispatcher invocation in the logs.
	RunId string

	StartedAt  time.Time
	FinishedAt time.Time

	// The four terminal buckets. Each candidate path appears in
	// exactly one of these.
	Succeeded        []string
	Unmatched        []string
	FailedExtraction []string
	FailedSubmission []string

	// DatasetIds maps each succeeded path to the pid SciCat
	// assigned to its dataset.
	DatasetIds map[string]string

	Errors   []string
	Warnings []string
}

// NewIngestRunStats creates a new, empty IngestRunStats object.
func NewIngestRunStats(runId string) *IngestRunStats {
	return &IngestRunStats{
		RunId:            runId,
		Succeeded:        make([]string, 0),
		Unmatched:        make([]string, 0),
		FailedExtraction: make([]string, 0),
		FailedSubmission: make([]string, 0),
		DatasetIds:       make(map[string]string),
		Errors:           make([]string, 0),
		Warnings:         make([]string, 0),
	}
}

// IngestRunStatsLoadFromFile loads run stats from a JSON file like
// the ones that IngestRunStats.DumpToFile dumps out.
func IngestRunStatsLoadFromFile(pathToFile string) (*IngestRunStats, error) {
	file, err := os.ReadFile(pathToFile)
	if err != nil {
		return nil, fmt.Errorf("error reading file '%s': %v", pathToFile, err)
	}
	_stats := &IngestRunStats{}
	err = json.Unmarshal(file, _stats)
	if err != nil {
		return nil, fmt.Errorf("error parsing JSON from file '%s': %v", pathToFile, err)
	}
	return _stats, nil
}

// DumpToFile dumps a JSON representation of this object to a file at
// the specified path. This will overwrite the existing file, if the
// existing file has a .json extension. The output is human-readable
// formatted JSON. See also IngestRunStatsLoadFromFile.
func (stats *IngestRunStats) DumpToFile(pathToFile string) error {
	// Matches .json, or tempfile with random ending, like .json43272
	fileNameLooksSafe, err := regexp.MatchString("\\.json\\d*$", pathToFile)
	if err != nil {
		return fmt.Errorf("DumpToFile(): path '%s'?? : %v", pathToFile, err)
	}
	if fileutil.FileExists(pathToFile) && !fileNameLooksSafe {
		return fmt.Errorf("DumpToFile() will not overwrite existing file "+
			"'%s' because that might be dangerous. Give your output file a .json "+
			"extension to be safe.", pathToFile)
	}

	jsonData, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}

	outputFile, err := os.Create(pathToFile)
	if err != nil {
		return err
	}
	defer outputFile.Close()
	outputFile.Write(jsonData)
	return nil
}

// AddSucceeded records that the dataset derived from path was
// created in SciCat under the given pid.
func (stats *IngestRunStats) AddSucceeded(path, datasetId string) {
	stats.Succeeded = append(stats.Succeeded, path)
	stats.DatasetIds[path] = datasetId
}

// AddUnmatched records that no configured ingester accepted path.
func (stats *IngestRunStats) AddUnmatched(path string) {
	stats.Unmatched = append(stats.Unmatched, path)
}

// AddFailedExtraction records that the matching ingester failed to
// derive a record from path.
func (stats *IngestRunStats) AddFailedExtraction(path string) {
	stats.FailedExtraction = append(stats.FailedExtraction, path)
}

// AddFailedSubmission records that SciCat rejected, or the network
// lost, the record derived from path.
func (stats *IngestRunStats) AddFailedSubmission(path string) {
	stats.FailedSubmission = append(stats.FailedSubmission, path)
}

// AddError adds an error message to the stats.
func (stats *IngestRunStats) AddError(message string) {
	stats.Errors = append(stats.Errors, message)
}

// AddWarning adds a warning message to the stats.
func (stats *IngestRunStats) AddWarning(message string) {
	stats.Warnings = append(stats.Warnings, message)
}

// Processed returns the number of candidates that reached any
// terminal state in this run.
func (stats *IngestRunStats) Processed() int {
	return len(stats.Succeeded) + len(stats.Unmatched) +
		len(stats.FailedExtraction) + len(stats.FailedSubmission)
}

// StateOf returns the terminal state path reached in this run, or
// an empty string if the path was never processed.
func (stats *IngestRunStats) StateOf(path string) string {
	switch {
	case util.StringListContains(stats.Succeeded, path):
		return constants.StateSucceeded
	case util.StringListContains(stats.Unmatched, path):
		return constants.StateUnmatched
	case util.StringListContains(stats.FailedExtraction, path):
		return constants.StateExtractionFailed
	case util.StringListContains(stats.FailedSubmission, path):
		return constants.StateSubmissionFailed
	}
	return ""
}

// Summary returns a one-line description of the run for the logs.
func (stats *IngestRunStats) Summary() string {
	return fmt.Sprintf("processed: %d, succeeded: %d, unmatched: %d, "+
		"failed extraction: %d, failed submission: %d",
		stats.Processed(), len(stats.Succeeded), len(stats.Unmatched),
		len(stats.FailedExtraction), len(stats.FailedSubmission))
}
