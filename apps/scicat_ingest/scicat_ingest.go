package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/als-computing/scicat-beamline/context"
	"github.com/als-computing/scicat-beamline/models"
	"github.com/als-computing/scicat-beamline/util/fileutil"
	"github.com/als-computing/scicat-beamline/workers"
)

func main() {
	opts := parseCommandLine()
	config, err := models.LoadConfigFromEnv(opts.pathToEnvFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	applyOverrides(config, opts)
	if err = config.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	_context := context.NewContext(config)
	dispatcher, err := workers.NewIngestDispatcher(_context)
	if err != nil {
		_context.MessageLog.Error(err.Error())
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	runStats, err := dispatcher.Run()
	if opts.pathToStatsFile != "" && runStats != nil {
		if dumpErr := runStats.DumpToFile(opts.pathToStatsFile); dumpErr != nil {
			_context.MessageLog.Error("Cannot write stats file: %v", dumpErr)
		} else {
			fmt.Println("Wrote stats to", opts.pathToStatsFile)
			_context.MessageLog.Info("Wrote stats to %s", opts.pathToStatsFile)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	fmt.Println(runStats.Summary())
}

type cliOptions struct {
	pathToEnvFile   string
	pathToStatsFile string
	rootFolder      string
	scicatUrl       string
	username        string
	password        string
	ingestUser      string
	ingestSpec      string
}

func parseCommandLine() *cliOptions {
	opts := &cliOptions{}
	flag.StringVar(&opts.pathToEnvFile, "env", "", "Path to .env file with SciCat ingest settings")
	flag.StringVar(&opts.pathToStatsFile, "stats", "", "Path to file where we should dump JSON run stats")
	flag.StringVar(&opts.rootFolder, "root", "", "Folder whose entries should be scanned for ingest")
	flag.StringVar(&opts.scicatUrl, "url", "", "Base URL of the SciCat API")
	flag.StringVar(&opts.username, "username", "", "SciCat login name")
	flag.StringVar(&opts.password, "password", "", "SciCat password")
	flag.StringVar(&opts.ingestUser, "owner", "", "Username recorded as dataset owner")
	flag.StringVar(&opts.ingestSpec, "spec", "", "Semicolon-separated list of ingester names, tried in order")
	help := flag.Bool("help", false, "Print usage and exit")
	flag.Parse()
	if *help {
		printUsage()
		os.Exit(0)
	}
	var err error
	opts.pathToStatsFile, err = fileutil.ExpandTilde(opts.pathToStatsFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	return opts
}

// Command-line flags beat environment settings.
func applyOverrides(config *models.Config, opts *cliOptions) {
	if opts.rootFolder != "" {
		config.RootFolder = opts.rootFolder
	}
	if opts.scicatUrl != "" {
		config.ScicatURL = opts.scicatUrl
	}
	if opts.username != "" {
		config.Username = opts.username
	}
	if opts.password != "" {
		config.Password = opts.password
	}
	if opts.ingestUser != "" {
		config.IngestUser = opts.ingestUser
	}
	if opts.ingestSpec != "" {
		config.IngestSpec = models.ParseIngestSpec(opts.ingestSpec)
	}
}

// Tell the user about the program.
func printUsage() {
	message := `
scicat_ingest: Scans the entries of a beamline data folder, extracts a
dataset record from each one using the ingesters named in the ingest
spec, and registers the datasets with a SciCat catalog.

Usage: scicat_ingest [-env=<path to .env file>] [-stats=<path to stats file>]
                     [-root=...] [-url=...] [-username=...] [-password=...]
                     [-owner=...] [-spec=...]

All settings can come from the environment (SCICAT_INGEST_BASE_FOLDER,
SCICAT_INGEST_URL, SCICAT_INGEST_USERNAME, SCICAT_INGEST_PASSWORD,
SCICAT_INGEST_OWNER, SCICAT_INGEST_SPEC), from the .env file named by
-env, or from the flags above. Flags win over the environment.

Param -stats tells us where to dump the JSON run report. This is mainly
for testing and diagnostics.

Exit code is 0 when the scan completed, even if some entries failed to
ingest (check the log and the stats file for those). Exit code is
non-zero only for bad configuration, a missing root folder, or a failed
SciCat login.
`
	fmt.Println(message)
}
