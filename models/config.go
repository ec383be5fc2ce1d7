package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/als-computing/scicat-beamline/constants"
	"github.com/als-computing/scicat-beamline/util/fileutil"
	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

// Environment variable names. The SCICAT_INGEST_* names are
// canonical; the bare legacy names the older ingest scripts used
// are accepted as fallbacks so existing .env files keep working.
var envNames = map[string][]string{
	"RootFolder": {"SCICAT_INGEST_BASE_FOLDER", "ROOT_FOLDER"},
	"ScicatURL":  {"SCICAT_INGEST_URL", "SCICAT_URL"},
	"Username":   {"SCICAT_INGEST_USERNAME", "USERNAME"},
	"Password":   {"SCICAT_INGEST_PASSWORD", "PASSWORD"},
	"IngestUser": {"SCICAT_INGEST_OWNER", "INGEST_USER"},
	"IngestSpec": {"SCICAT_INGEST_SPEC", "INGEST_SPEC"},
}

// Config holds everything one dispatcher invocation needs. It is
// built once at startup and passed by reference into the dispatcher,
// so nothing else in the system reads environment variables.
type Config struct {
	// RootFolder is the folder whose immediate entries are
	// candidates for ingest.
	RootFolder string

	// ScicatURL is the base URL of the SciCat API, including the
	// API prefix, e.g. https://mwet.lbl.gov/api/v3
	ScicatURL string

	// Username and Password authenticate against the SciCat API.
	// They are never logged.
	Username string
	Password string

	// IngestUser is the user doing the ingesting. May be different
	// from Username, which only authenticates the API session.
	IngestUser string

	// IngestSpec is the ordered list of ingester names eligible for
	// this run. The first ingester that accepts a candidate wins.
	IngestSpec []string

	// LogDirectory is where we'll write our log files.
	LogDirectory string

	// LogLevel is defined in github.com/op/go-logging.
	LogLevel logging.Level

	// If true, processes will log to STDERR in addition to their
	// standard log files. You really only want to do this in
	// development.
	LogToStderr bool

	// HTTPTimeout bounds each call to the SciCat API. A timeout
	// fails the single directory being submitted, not the run.
	HTTPTimeout time.Duration
}

// LoadConfigFromEnv builds a Config from environment variables,
// first merging in the .env-style file at envFile if one is given.
// Variables already set in the environment win over the file.
// Callers should Validate the result (after applying any flag
// overrides) and treat failure as fatal before any directory is
// scanned.
func LoadConfigFromEnv(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.Wrapf(err, "error loading env file '%s'", envFile)
		}
	} else if fileutil.FileExists(".env") {
		// Same courtesy the python scripts extended: pick up a
		// .env in the working directory when there is one.
		_ = godotenv.Load()
	}

	config := &Config{
		RootFolder:   getenv("RootFolder"),
		ScicatURL:    getenv("ScicatURL"),
		Username:     getenv("Username"),
		Password:     getenv("Password"),
		IngestUser:   getenv("IngestUser"),
		IngestSpec:   ParseIngestSpec(getenv("IngestSpec")),
		LogDirectory: os.Getenv("SCICAT_INGEST_LOG_DIR"),
		LogToStderr:  false,
		LogLevel:     logging.INFO,
		HTTPTimeout:  constants.DefaultHTTPTimeout,
	}
	if config.LogDirectory == "" {
		config.LogDirectory = "logs"
	}
	if levelName := os.Getenv("SCICAT_INGEST_LOG_LEVEL"); levelName != "" {
		level, err := logging.LogLevel(levelName)
		if err != nil {
			return nil, errors.Wrapf(err, "bad SCICAT_INGEST_LOG_LEVEL '%s'", levelName)
		}
		config.LogLevel = level
	}
	if stderrFlag := os.Getenv("SCICAT_INGEST_LOG_TO_STDERR"); stderrFlag != "" {
		config.LogToStderr, _ = strconv.ParseBool(stderrFlag)
	}
	if timeout := os.Getenv("SCICAT_INGEST_HTTP_TIMEOUT"); timeout != "" {
		duration, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, errors.Wrapf(err, "bad SCICAT_INGEST_HTTP_TIMEOUT '%s'", timeout)
		}
		config.HTTPTimeout = duration
	}
	return config, nil
}

// ParseIngestSpec splits an ingest spec string into its ingester
// names. Names may be separated by semicolons or by the literal
// word OR, which is how the original .env files wrote them, e.g.
// "als_11012_igor OR als_11012_nexafs".
func ParseIngestSpec(spec string) []string {
	spec = strings.Replace(spec, " OR ", ";", -1)
	parts := strings.Split(spec, ";")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Validate returns an error naming every required setting that is
// missing. The dispatcher must not start with an invalid config.
func (config *Config) Validate() error {
	missing := make([]string, 0)
	if config.RootFolder == "" {
		missing = append(missing, envNames["RootFolder"][0])
	}
	if config.ScicatURL == "" {
		missing = append(missing, envNames["ScicatURL"][0])
	}
	if config.Username == "" {
		missing = append(missing, envNames["Username"][0])
	}
	if config.Password == "" {
		missing = append(missing, envNames["Password"][0])
	}
	if config.IngestUser == "" {
		missing = append(missing, envNames["IngestUser"][0])
	}
	if len(config.IngestSpec) == 0 {
		missing = append(missing, envNames["IngestSpec"][0])
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s",
			strings.Join(missing, ", "))
	}
	return nil
}

// EnsureLogDirectory creates the logging directory if necessary
// and returns its absolute path.
func (config *Config) EnsureLogDirectory() (string, error) {
	if config.LogDirectory == "" {
		return "", fmt.Errorf("you must define config.LogDirectory")
	}
	if !fileutil.FileExists(config.LogDirectory) {
		err := os.MkdirAll(config.LogDirectory, 0755)
		if err != nil {
			return "", err
		}
	}
	return config.AbsLogDirectory(), nil
}

func (config *Config) AbsLogDirectory() string {
	absLogDir, err := filepath.Abs(config.LogDirectory)
	if err != nil {
		msg := fmt.Sprintf("Cannot get absolute path to log directory. "+
			"config.LogDirectory is set to '%s'", config.LogDirectory)
		panic(msg)
	}
	return absLogDir
}

// getenv returns the first non-empty value among the canonical and
// legacy environment variable names for the given setting.
func getenv(setting string) string {
	for _, name := range envNames[setting] {
		if value := os.Getenv(name); value != "" {
			return value
		}
	}
	return ""
}
