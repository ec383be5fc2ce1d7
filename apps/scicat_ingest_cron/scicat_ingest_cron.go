package main

import (
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/als-computing/scicat-beamline/context"
	"github.com/als-computing/scicat-beamline/models"
	"github.com/als-computing/scicat-beamline/network"
	"github.com/als-computing/scicat-beamline/util/logger"
	"github.com/als-computing/scicat-beamline/workers"
	"github.com/op/go-logging"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Schedule describes when and how the recurring ingest runs. It is
// loaded from a small YAML file so operators can change the cadence
// without rebuilding.
type Schedule struct {
	// CronExpr is a standard five-field cron expression.
	CronExpr string `yaml:"schedule"`
	// RunOnStart triggers one ingest run immediately on startup,
	// before the first scheduled tick.
	RunOnStart bool `yaml:"run_on_start"`
	// StatsDir, when set, receives one JSON run report per run,
	// named by the run id.
	StatsDir string `yaml:"stats_dir"`
}

func LoadSchedule(pathToFile string) (*Schedule, error) {
	data, err := os.ReadFile(pathToFile)
	if err != nil {
		return nil, err
	}
	schedule := &Schedule{}
	if err = yaml.Unmarshal(data, schedule); err != nil {
		return nil, fmt.Errorf("cannot parse schedule file %s: %v", pathToFile, err)
	}
	if schedule.CronExpr == "" {
		return nil, fmt.Errorf("schedule file %s has no 'schedule' entry", pathToFile)
	}
	return schedule, nil
}

// ingestJob is the unit of work the scheduler fires. Each run
// builds its own Context around a fresh SciCat client, so runs
// share nothing mutable and a token that expired between firings
// never leaks into the next run. Only the loggers are shared.
type ingestJob struct {
	config     *models.Config
	messageLog *logging.Logger
	jsonLog    *stdlog.Logger
	schedule   *Schedule
}

func (job *ingestJob) Run() {
	client, err := network.NewScicatClient(job.config.ScicatURL, job.config.Username,
		job.config.Password, job.config.HTTPTimeout, job.messageLog)
	if err != nil {
		job.messageLog.Error(err.Error())
		return
	}
	_context := &context.Context{
		Config:       job.config,
		MessageLog:   job.messageLog,
		JsonLog:      job.jsonLog,
		ScicatClient: client,
	}
	dispatcher, err := workers.NewIngestDispatcher(_context)
	if err != nil {
		job.messageLog.Error(err.Error())
		return
	}
	runStats, err := dispatcher.Run()
	if err != nil {
		job.messageLog.Error("Scheduled run failed: %v", err)
	}
	if runStats != nil && job.schedule.StatsDir != "" {
		pathToStatsFile := filepath.Join(job.schedule.StatsDir, runStats.RunId+".json")
		if dumpErr := runStats.DumpToFile(pathToStatsFile); dumpErr != nil {
			job.messageLog.Error("Cannot write stats file: %v", dumpErr)
		}
	}
}

func main() {
	pathToEnvFile, pathToScheduleFile := parseCommandLine()
	schedule, err := LoadSchedule(pathToScheduleFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	config, err := models.LoadConfigFromEnv(pathToEnvFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if err = config.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if _, err = config.EnsureLogDirectory(); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create log directory: %v\n", err)
		os.Exit(1)
	}
	messageLog, _ := logger.InitLogger(config)
	jsonLog, _ := logger.InitJsonLogger(config)
	job := &ingestJob{
		config:     config,
		messageLog: messageLog,
		jsonLog:    jsonLog,
		schedule:   schedule,
	}

	// Ingest runs are strictly sequential: a firing that comes due
	// while the previous run is still going is skipped.
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err = scheduler.AddJob(schedule.CronExpr, job); err != nil {
		fmt.Fprintf(os.Stderr, "bad cron expression '%s': %v\n", schedule.CronExpr, err)
		os.Exit(1)
	}
	messageLog.Info("Scheduling ingest runs with cron expression '%s'", schedule.CronExpr)
	if schedule.RunOnStart {
		job.Run()
	}
	scheduler.Start()

	// Run until killed.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	received := <-signals
	messageLog.Info("Received signal %v, waiting for running jobs", received)
	<-scheduler.Stop().Done()
}

func parseCommandLine() (envFile string, scheduleFile string) {
	var pathToEnvFile string
	var pathToScheduleFile string
	flag.StringVar(&pathToEnvFile, "env", "", "Path to .env file with SciCat ingest settings")
	flag.StringVar(&pathToScheduleFile, "schedule", "", "Path to YAML schedule file")
	flag.Parse()
	if pathToScheduleFile == "" {
		printUsage()
		os.Exit(1)
	}
	return pathToEnvFile, pathToScheduleFile
}

// Tell the user about the program.
func printUsage() {
	message := `
scicat_ingest_cron: Runs the SciCat beamline ingest on a recurring
schedule. Each run scans the configured root folder and registers any
datasets it finds, exactly as a single scicat_ingest invocation would.
Runs never overlap: a firing that comes due while the previous run is
still in progress is skipped.

Usage: scicat_ingest_cron -schedule=<path to schedule.yml> [-env=<path to .env file>]

Param -schedule is required. The schedule file looks like:

    schedule: "*/30 * * * *"
    run_on_start: true
    stats_dir: "/var/run/scicat-ingest"

SciCat connection settings come from the environment or the .env file,
the same way scicat_ingest reads them.
`
	fmt.Println(message)
}
