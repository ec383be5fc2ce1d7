package constants

import (
	"time"
)

// Dataset types recognized by the SciCat API.
const (
	DatasetTypeRaw     = "raw"
	DatasetTypeDerived = "derived"
)

// Values for the Type field of a DataFile. SciCat uses these to
// distinguish files belonging to raw and derived datasets.
const (
	FileTypeRaw     = "RawDatasets"
	FileTypeDerived = "DerivedDatasets"
)

// Terminal states for a candidate path within a single dispatcher run.
// Every candidate the dispatcher discovers ends up in exactly one of
// these states. There is no cross-run persistence of state.
const (
	StateSucceeded        = "Succeeded"
	StateUnmatched        = "Unmatched"
	StateExtractionFailed = "ExtractionFailed"
	StateSubmissionFailed = "SubmissionFailed"
)

// Names of the compiled-in ingesters. The ingest spec refers to
// ingesters by these names.
const (
	IngesterALS11012Igor       = "als_11012_igor"
	IngesterALS11012Nexafs     = "als_11012_nexafs"
	IngesterALS11012Scattering = "als_11012_scattering"
)

// InstrumentGroupDefault is the instrumentGroup SciCat expects on
// origdatablocks when no specific instrument group applies.
const InstrumentGroupDefault = "instrument-default"

// SciCatTimeFormat is the timestamp format the SciCat API accepts
// for creationTime and file modification times.
const SciCatTimeFormat = "2006-01-02T15:04:05Z"

// DefaultHTTPTimeout bounds every call to the SciCat API so that a
// hung connection fails a single directory rather than the whole run.
const DefaultHTTPTimeout = 30 * time.Second
