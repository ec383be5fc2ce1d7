package context

import (
	"fmt"
	stdlog "log"
	"os"
	"sync/atomic"

	"github.com/als-computing/scicat-beamline/models"
	"github.com/als-computing/scicat-beamline/network"
	"github.com/als-computing/scicat-beamline/util/logger"
	"github.com/op/go-logging"
)

/*
Context sets up the items common to the ingest processes: the
configuration, the loggers and the SciCat client. It also keeps the
running success/failure counts.
*/
type Context struct {
	Config        *models.Config
	MessageLog    *logging.Logger
	JsonLog       *stdlog.Logger
	ScicatClient  *network.ScicatClient
	pathToLogFile string
	pathToJsonLog string
	succeeded     int64
	failed        int64
}

/*
NewContext creates and returns a new Context object. Because some
items are absolutely required by this object and the processes that
use it, this function will exit if it cannot set up essential
services, such as logging or the SciCat client. It is meant to be
used as a singleton within one ingest process.
*/
func NewContext(config *models.Config) (context *Context) {
	context = &Context{
		succeeded: int64(0),
		failed:    int64(0),
	}
	context.Config = config
	if _, err := config.EnsureLogDirectory(); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create log directory: %v\n", err)
		os.Exit(1)
	}
	context.MessageLog, context.pathToLogFile = logger.InitLogger(config)
	context.JsonLog, context.pathToJsonLog = logger.InitJsonLogger(config)
	context.initScicatClient()
	return context
}

// Initializes a reusable SciCat client.
func (context *Context) initScicatClient() {
	scicatClient, err := network.NewScicatClient(
		context.Config.ScicatURL,
		context.Config.Username,
		context.Config.Password,
		context.Config.HTTPTimeout,
		context.MessageLog)
	if err != nil {
		message := fmt.Sprintf("Exiting. Cannot initialize SciCat client: %v", err)
		fmt.Fprintln(os.Stderr, message)
		context.MessageLog.Fatal(message)
	}
	context.ScicatClient = scicatClient
}

// Returns the number of candidates that were ingested successfully.
func (context *Context) Succeeded() int64 {
	return atomic.LoadInt64(&context.succeeded)
}

// Returns the number of candidates that failed.
func (context *Context) Failed() int64 {
	return atomic.LoadInt64(&context.failed)
}

// Increases the count of successfully ingested candidates by one.
func (context *Context) IncrementSucceeded() int64 {
	return atomic.AddInt64(&context.succeeded, 1)
}

// Increases the count of failed candidates by one.
func (context *Context) IncrementFailed() int64 {
	return atomic.AddInt64(&context.failed, 1)
}

// Returns the path to this process' log file.
func (context *Context) PathToLogFile() string {
	return context.pathToLogFile
}

// Returns the path to this process' JSON log file.
func (context *Context) PathToJsonLog() string {
	return context.pathToJsonLog
}

// Logs info about the number of candidates that have succeeded and
// failed.
func (context *Context) LogStats() {
	context.MessageLog.Info("**STATS** Succeeded: %d, Failed: %d",
		context.Succeeded(), context.Failed())
}
