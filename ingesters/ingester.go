/*
Package ingesters holds the per-instrument plugins that recognize
and parse one experiment's output layout. Each ingester knows how to
tell whether a candidate path looks like its instrument's output
(Matches) and how to derive a dataset record from it (Extract). The
dispatcher owns everything else: candidate enumeration, first-match
selection, and submission to SciCat.

New instruments register themselves in an init function and need no
changes anywhere else.
*/
package ingesters

import (
	"fmt"

	"github.com/als-computing/scicat-beamline/models"
)

// Ownership constants for datasets produced by the MWET project
// beamtimes. Every ingester stamps its records with these groups so
// the project and the ingest account can see them in the catalog.
const (
	OwnerGroup   = "MWET"
	ContactEmail = "mwet-data@lbl.gov"
)

var AccessGroups = []string{"MWET", "ingestor"}

// Ingester is a named capability: recognize a candidate path, and
// turn it into a dataset record. Extract must not talk to the
// catalog; anything that needs the API (like resolving an input
// dataset pid) is expressed declaratively on the record and
// resolved by the dispatcher.
type Ingester interface {
	// Name returns the ingest-spec name of this ingester, e.g.
	// "als_11012_nexafs".
	Name() string

	// Matches reports whether the candidate path looks like this
	// instrument's output. It must be cheap and must not modify
	// anything.
	Matches(path string) bool

	// Extract derives a dataset record from the candidate path.
	// Param owner is the username that will own the dataset.
	Extract(path, owner string) (*models.DatasetRecord, error)
}

var registry = make(map[string]Ingester)
var registrationOrder = make([]string, 0)

// Register adds an ingester to the registry. Each ingester file
// calls this from init, so importing the package is enough to make
// every compiled-in instrument available.
func Register(ingester Ingester) {
	name := ingester.Name()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("ingester '%s' registered twice", name))
	}
	registry[name] = ingester
	registrationOrder = append(registrationOrder, name)
}

// Get returns the ingester registered under name.
func Get(name string) (Ingester, bool) {
	ingester, ok := registry[name]
	return ingester, ok
}

// Names returns the names of all registered ingesters, in
// registration order.
func Names() []string {
	names := make([]string, len(registrationOrder))
	copy(names, registrationOrder)
	return names
}
