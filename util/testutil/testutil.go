package testutil

// Factory functions for objects used across the _test packages.

import (
	"fmt"
	"time"

	"github.com/als-computing/scicat-beamline/constants"
	"github.com/als-computing/scicat-beamline/models"
	"github.com/icrowley/fake"
	uuid "github.com/satori/go.uuid"
)

// MakeOwnable creates an Ownable with random owner fields.
func MakeOwnable() models.Ownable {
	return models.NewOwnable(fake.UserName(), "MWET", []string{"MWET", "ingestor"})
}

// MakeDataFile creates a mock dataset file entry.
func MakeDataFile() models.DataFile {
	return models.DataFile{
		Path: fmt.Sprintf("%s.fits", fake.Word()),
		Size: int64(fake.Year(1000, 9999999)),
		Time: time.Now().UTC().Format(constants.SciCatTimeFormat),
		Type: "RawDatasets",
	}
}

// MakeRawDataset creates a mock raw dataset for testing.
func MakeRawDataset() *models.RawDataset {
	return &models.RawDataset{
		Ownable:               MakeOwnable(),
		ContactEmail:          fake.EmailAddress(),
		CreationLocation:      "ALS 11.0.1.2",
		CreationTime:          time.Now().UTC().Format(constants.SciCatTimeFormat),
		DatasetName:           fake.Word(),
		Type:                  constants.DatasetTypeRaw,
		InstrumentId:          "11.0.1.2",
		DataFormat:            "ALS BCS",
		PrincipalInvestigator: fake.FullName(),
		SourceFolder:          fmt.Sprintf("/data/%s", fake.Word()),
		Size:                  int64(fake.Year(1000, 9999999)),
		ScientificMetadata:    map[string]interface{}{fake.Word(): fake.Word()},
		IsPublished:           false,
		Description:           fake.Sentence(),
		Keywords:              []string{fake.Word(), fake.Word()},
	}
}

// MakeDerivedDataset creates a mock derived dataset for testing.
func MakeDerivedDataset() *models.DerivedDataset {
	return &models.DerivedDataset{
		Ownable:            MakeOwnable(),
		ContactEmail:       fake.EmailAddress(),
		CreationTime:       time.Now().UTC().Format(constants.SciCatTimeFormat),
		DatasetName:        fmt.Sprintf("%s_IGOR_ANALYSIS", fake.Word()),
		Type:               constants.DatasetTypeDerived,
		DataFormat:         "dat",
		Investigator:       fake.FullName(),
		InputDatasets:      []string{MakePid()},
		UsedSoftware:       []string{"Igor", "Irena", "Nika"},
		SourceFolder:       fmt.Sprintf("/data/%s", fake.Word()),
		Size:               int64(fake.Year(1000, 9999999)),
		ScientificMetadata: map[string]interface{}{fake.Word(): fake.Word()},
		IsPublished:        false,
		Description:        fake.Sentence(),
		Keywords:           []string{fake.Word(), fake.Word()},
	}
}

// MakeDatasetRecord creates a record like the ones ingesters
// return, holding a raw dataset with a couple of files.
func MakeDatasetRecord() *models.DatasetRecord {
	dataset := MakeRawDataset()
	files := []models.DataFile{MakeDataFile(), MakeDataFile()}
	totalSize := files[0].Size + files[1].Size
	return &models.DatasetRecord{
		Name:       dataset.DatasetName,
		SourcePath: dataset.SourceFolder,
		Raw:        dataset,
		Files:      files,
		TotalSize:  totalSize,
	}
}

// MakePid returns a random SciCat-style dataset pid.
func MakePid() string {
	return fmt.Sprintf("als/%s", uuid.NewV4().String())
}
