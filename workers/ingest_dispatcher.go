package workers

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/als-computing/scicat-beamline/context"
	"github.com/als-computing/scicat-beamline/ingesters"
	"github.com/als-computing/scicat-beamline/models"
	"github.com/als-computing/scicat-beamline/network"
	"github.com/als-computing/scicat-beamline/stats"
	"github.com/als-computing/scicat-beamline/util/fileutil"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// IngestDispatcher walks the immediate entries of the configured
// root folder, routes each candidate to the first ingester in the
// ingest spec that accepts it, and registers the resulting dataset
// with SciCat. Failures are per-candidate: a directory that fails
// extraction or submission is logged and counted, and the run
// continues. Candidates are processed one at a time in the calling
// goroutine; the run stats are the only mutable state.
type IngestDispatcher struct {
	Context   *context.Context
	ingesters []ingesters.Ingester
	stats     *stats.IngestRunStats
}

// NewIngestDispatcher creates a dispatcher for the ingest spec in
// the context's config. An ingester name with no registered
// ingester is a configuration error, caught here before any
// directory is scanned.
func NewIngestDispatcher(_context *context.Context) (*IngestDispatcher, error) {
	specIngesters := make([]ingesters.Ingester, 0, len(_context.Config.IngestSpec))
	for _, name := range _context.Config.IngestSpec {
		ingester, ok := ingesters.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown ingester '%s' in ingest spec (known: %v)",
				name, ingesters.Names())
		}
		specIngesters = append(specIngesters, ingester)
	}
	return &IngestDispatcher{
		Context:   _context,
		ingesters: specIngesters,
	}, nil
}

// Run processes every candidate under the root folder once and
// returns the run report. The returned error is non-nil only for
// invocation-level problems: a missing root folder, or a failed
// SciCat login. Per-candidate failures never make Run fail; they
// are recorded in the report.
func (dispatcher *IngestDispatcher) Run() (*stats.IngestRunStats, error) {
	runId := uuid.NewV4().String()
	dispatcher.stats = stats.NewIngestRunStats(runId)
	dispatcher.stats.StartedAt = time.Now().UTC()

	rootFolder := dispatcher.Context.Config.RootFolder
	if !fileutil.IsDir(rootFolder) {
		return dispatcher.stats, fmt.Errorf("root folder '%s' does not exist", rootFolder)
	}
	names, err := fileutil.ListDirectory(rootFolder)
	if err != nil {
		return dispatcher.stats, errors.Wrapf(err, "cannot list root folder '%s'", rootFolder)
	}

	dispatcher.Context.MessageLog.Info("Run %s: scanning %s (%d entries) with ingest spec %v",
		runId, rootFolder, len(names), dispatcher.Context.Config.IngestSpec)

	for _, name := range names {
		candidate := filepath.Join(rootFolder, name)
		if err := dispatcher.processCandidate(candidate); err != nil {
			// Only a failed login aborts the run.
			dispatcher.finishRun()
			return dispatcher.stats, err
		}
	}
	dispatcher.finishRun()
	return dispatcher.stats, nil
}

func (dispatcher *IngestDispatcher) finishRun() {
	dispatcher.stats.FinishedAt = time.Now().UTC()
	dispatcher.Context.MessageLog.Info("Run %s finished: %s",
		dispatcher.stats.RunId, dispatcher.stats.Summary())
	dispatcher.Context.LogStats()
	if jsonData, err := json.Marshal(dispatcher.stats); err == nil {
		dispatcher.Context.JsonLog.Println(string(jsonData))
	}
}

// processCandidate walks one candidate through its state machine:
// Discovered, then Matched or Unmatched, then Extracted or
// ExtractionFailed, then Submitted or SubmissionFailed. Every state
// it can end in is terminal for this run. The returned error is
// non-nil only when SciCat login fails.
func (dispatcher *IngestDispatcher) processCandidate(candidate string) error {
	log := dispatcher.Context.MessageLog
	summary := models.NewWorkSummary()
	summary.Start()

	ingester := dispatcher.selectIngester(candidate)
	if ingester == nil {
		log.Info("Skipping %s: no ingester in spec accepts it", candidate)
		dispatcher.stats.AddUnmatched(candidate)
		return nil
	}
	log.Debug("Candidate %s matched ingester %s", candidate, ingester.Name())

	record, err := ingester.Extract(candidate, dispatcher.Context.Config.IngestUser)
	if err != nil {
		summary.AddError("Ingester %s failed on %s: %v", ingester.Name(), candidate, err)
		summary.Finish()
		log.Error(summary.FirstError())
		dispatcher.stats.AddFailedExtraction(candidate)
		dispatcher.stats.AddError(summary.FirstError())
		dispatcher.Context.IncrementFailed()
		return nil
	}

	// Authenticate once, lazily, on the first successful extraction.
	if !dispatcher.Context.ScicatClient.HasToken() {
		if err := dispatcher.Context.ScicatClient.Login(); err != nil {
			dispatcher.stats.AddError(err.Error())
			return errors.Wrap(err, "aborting run")
		}
	}

	dispatcher.submitRecord(candidate, record, summary)
	return nil
}

// selectIngester returns the first ingester in the spec that
// accepts the candidate, or nil. First match wins; later ingesters
// are never consulted (and no ambiguity detection is attempted).
func (dispatcher *IngestDispatcher) selectIngester(candidate string) ingesters.Ingester {
	for _, ingester := range dispatcher.ingesters {
		if ingester.Matches(candidate) {
			return ingester
		}
	}
	return nil
}

// submitRecord registers one extracted record with SciCat: the
// dataset itself, then its origdatablock, then any thumbnail
// attachments. Any dataset or datablock failure puts the candidate
// in the failed-submission bucket; a failed attachment is only a
// warning, since the dataset and its files are already cataloged.
func (dispatcher *IngestDispatcher) submitRecord(candidate string, record *models.DatasetRecord, summary *models.WorkSummary) {
	log := dispatcher.Context.MessageLog
	client := dispatcher.Context.ScicatClient

	if record.IsDerived() && record.InputDatasetName != "" {
		pid, err := dispatcher.resolveInputDataset(record.InputDatasetName)
		if err != nil {
			dispatcher.markSubmissionFailed(candidate, summary,
				"Cannot resolve input dataset '%s' for %s: %v",
				record.InputDatasetName, candidate, err)
			return
		}
		record.Derived.InputDatasets = []string{pid}
	}

	var createResp *network.ScicatResponse
	if record.IsDerived() {
		createResp = client.DerivedDatasetCreate(record.Derived)
	} else {
		createResp = client.DatasetCreate(record.Raw)
	}
	if err := createResp.ErrorOrStatus(); err != nil {
		dispatcher.markSubmissionFailed(candidate, summary,
			"Error creating dataset for %s: %v", candidate, err)
		return
	}
	datasetId := createResp.DatasetId()
	if datasetId == "" {
		dispatcher.markSubmissionFailed(candidate, summary,
			"SciCat returned no pid for dataset created from %s", candidate)
		return
	}
	log.Debug("Created dataset %s for %s", datasetId, candidate)

	blockResp := client.OrigDatablockCreate(datasetId, record.Datablock(datasetId))
	if err := blockResp.ErrorOrStatus(); err != nil {
		dispatcher.markSubmissionFailed(candidate, summary,
			"Error creating origdatablock for dataset %s (%s): %v",
			datasetId, candidate, err)
		return
	}

	for _, attachment := range record.Attachments {
		attachment.DatasetId = datasetId
		attachResp := client.AttachmentCreate(datasetId, attachment)
		if err := attachResp.ErrorOrStatus(); err != nil {
			message := fmt.Sprintf("Error attaching thumbnail to dataset %s (%s): %v",
				datasetId, candidate, err)
			log.Warning(message)
			dispatcher.stats.AddWarning(message)
		}
	}

	summary.Finish()
	dispatcher.stats.AddSucceeded(candidate, datasetId)
	dispatcher.Context.IncrementSucceeded()
	log.Info("Ingested %s as dataset %s (%s) in %s",
		candidate, datasetId, record.Name, summary.RunTime())
}

// resolveInputDataset looks up the pid of the raw dataset a derived
// record was computed from.
func (dispatcher *IngestDispatcher) resolveInputDataset(datasetName string) (string, error) {
	resp := dispatcher.Context.ScicatClient.DatasetList(map[string]string{
		"datasetName": datasetName,
	})
	if err := resp.ErrorOrStatus(); err != nil {
		return "", err
	}
	datasets := resp.Datasets()
	if len(datasets) == 0 {
		return "", fmt.Errorf("no dataset named '%s' in catalog", datasetName)
	}
	return datasets[0].Pid, nil
}

func (dispatcher *IngestDispatcher) markSubmissionFailed(candidate string, summary *models.WorkSummary, format string, a ...interface{}) {
	summary.AddError(format, a...)
	summary.Finish()
	dispatcher.Context.MessageLog.Error(summary.FirstError())
	dispatcher.stats.AddFailedSubmission(candidate)
	dispatcher.stats.AddError(summary.FirstError())
	dispatcher.Context.IncrementFailed()
}

// GetStats returns the report for the most recent run.
func (dispatcher *IngestDispatcher) GetStats() *stats.IngestRunStats {
	return dispatcher.stats
}
