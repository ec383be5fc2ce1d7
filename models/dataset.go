package models

import (
	"time"

	"github.com/als-computing/scicat-beamline/constants"
)

// Ownable carries the ownership and access-control fields common to
// every object the SciCat API accepts.
type Ownable struct {
	Owner        string   `json:"owner,omitempty"`
	OwnerGroup   string   `json:"ownerGroup"`
	AccessGroups []string `json:"accessGroups,omitempty"`
	CreatedBy    string   `json:"createdBy,omitempty"`
	UpdatedBy    string   `json:"updatedBy,omitempty"`
	CreatedAt    string   `json:"createdAt,omitempty"`
	UpdatedAt    string   `json:"updatedAt,omitempty"`
}

// NewOwnable returns an Ownable stamped with the current time and
// owned by the given user and group.
func NewOwnable(owner, ownerGroup string, accessGroups []string) Ownable {
	now := time.Now().UTC().Format(constants.SciCatTimeFormat)
	return Ownable{
		Owner:        owner,
		OwnerGroup:   ownerGroup,
		AccessGroups: accessGroups,
		CreatedBy:    owner,
		UpdatedBy:    owner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// DataFile describes one file belonging to a dataset.
type DataFile struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
	Time string `json:"time"`
	Type string `json:"type,omitempty"`
}

// RawDataset is the dataset record SciCat expects for raw
// experiment output.
type RawDataset struct {
	Ownable
	ContactEmail          string                 `json:"contactEmail"`
	CreationLocation      string                 `json:"creationLocation"`
	CreationTime          string                 `json:"creationTime"`
	DatasetName           string                 `json:"datasetName"`
	Type                  string                 `json:"type"`
	InstrumentId          string                 `json:"instrumentId,omitempty"`
	ProposalId            string                 `json:"proposalId,omitempty"`
	DataFormat            string                 `json:"dataFormat,omitempty"`
	PrincipalInvestigator string                 `json:"principalInvestigator"`
	SourceFolder          string                 `json:"sourceFolder"`
	Size                  int64                  `json:"size,omitempty"`
	ScientificMetadata    map[string]interface{} `json:"scientificMetadata,omitempty"`
	SampleId              string                 `json:"sampleId,omitempty"`
	IsPublished           bool                   `json:"isPublished"`
	Description           string                 `json:"description,omitempty"`
	Keywords              []string               `json:"keywords,omitempty"`
}

// DerivedDataset is the dataset record SciCat expects for analysis
// output derived from one or more raw datasets.
type DerivedDataset struct {
	Ownable
	Investigator        string                 `json:"investigator"`
	InputDatasets       []string               `json:"inputDatasets"`
	UsedSoftware        []string               `json:"usedSoftware"`
	ContactEmail        string                 `json:"contactEmail"`
	CreationTime        string                 `json:"creationTime"`
	DatasetName         string                 `json:"datasetName"`
	Type                string                 `json:"type"`
	InstrumentId        string                 `json:"instrumentId,omitempty"`
	ProposalId          string                 `json:"proposalId,omitempty"`
	DataFormat          string                 `json:"dataFormat,omitempty"`
	SourceFolder        string                 `json:"sourceFolder"`
	Size                int64                  `json:"size,omitempty"`
	ScientificMetadata  map[string]interface{} `json:"scientificMetadata,omitempty"`
	SampleId            string                 `json:"sampleId,omitempty"`
	IsPublished         bool                   `json:"isPublished"`
	Description         string                 `json:"description,omitempty"`
	Keywords            []string               `json:"keywords,omitempty"`
}

// OrigDatablock lists the files that make up a dataset. SciCat wants
// one of these attached to each dataset after the dataset exists.
type OrigDatablock struct {
	Ownable
	DatasetId       string     `json:"datasetId"`
	InstrumentGroup string     `json:"instrumentGroup,omitempty"`
	Size            int64      `json:"size"`
	DataFileList    []DataFile `json:"dataFileList"`
}

// Attachment is a thumbnail image attached to a dataset. The
// Thumbnail field holds a base64 data URI.
type Attachment struct {
	Ownable
	DatasetId string `json:"datasetId,omitempty"`
	Thumbnail string `json:"thumbnail"`
	Caption   string `json:"caption,omitempty"`
}

// DatasetSummary is the slice of a catalog dataset the dispatcher
// needs when looking up existing datasets: the persistent identifier
// and the name it was registered under.
type DatasetSummary struct {
	Pid         string `json:"pid"`
	DatasetName string `json:"datasetName"`
}

// DatasetRecord is what an ingester hands back to the dispatcher:
// one dataset (raw or derived, never both) plus the files and
// thumbnail attachments that go with it. Records live only for the
// duration of one submission; nothing is persisted locally.
type DatasetRecord struct {
	// Name is the human-readable identifier for log messages and
	// the run report.
	Name string

	// SourcePath is the candidate path this record was derived from.
	SourcePath string

	Raw     *RawDataset
	Derived *DerivedDataset

	// InputDatasetName, for derived records, names the raw dataset
	// this analysis was computed from. The dispatcher resolves it to
	// a pid at submission time so ingesters never talk to the API.
	InputDatasetName string

	// Files and TotalSize describe the origdatablock to create once
	// the dataset exists.
	Files     []DataFile
	TotalSize int64

	Attachments []*Attachment
}

// IsDerived returns true if this record holds a derived dataset.
func (record *DatasetRecord) IsDerived() bool {
	return record.Derived != nil
}

// DatasetOwnable returns the ownership fields of whichever dataset
// this record holds.
func (record *DatasetRecord) DatasetOwnable() Ownable {
	if record.Derived != nil {
		return record.Derived.Ownable
	}
	if record.Raw != nil {
		return record.Raw.Ownable
	}
	return Ownable{}
}

// Datablock builds the origdatablock for this record. Param
// datasetId is the pid SciCat assigned when the dataset was created.
func (record *DatasetRecord) Datablock(datasetId string) *OrigDatablock {
	return &OrigDatablock{
		Ownable:         record.DatasetOwnable(),
		DatasetId:       datasetId,
		InstrumentGroup: constants.InstrumentGroupDefault,
		Size:            record.TotalSize,
		DataFileList:    record.Files,
	}
}
