package ingesters

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/als-computing/scicat-beamline/constants"
	"github.com/als-computing/scicat-beamline/models"
	"github.com/als-computing/scicat-beamline/util"
	"github.com/als-computing/scicat-beamline/util/fileutil"
	"github.com/pkg/errors"
)

func init() {
	Register(&Igor11012Ingester{})
}

// Igor11012Ingester reads Igor/Irena/Nika reductions of 11.0.1.2
// scattering data. A candidate is a CCD sample folder holding a
// dat/ subdirectory of Igor-generated .dat files, plus jpeg graphs
// that become attachments. The result is a derived dataset whose
// input is the raw scattering dataset registered under the sample
// folder's name; the dispatcher resolves that name to a pid before
// submission.
type Igor11012Ingester struct {
}

func (ingester *Igor11012Ingester) Name() string {
	return constants.IngesterALS11012Igor
}

// Matches accepts directories with a dat/ subdirectory that holds
// at least one .dat file.
func (ingester *Igor11012Ingester) Matches(path string) bool {
	datFolder := filepath.Join(path, "dat")
	if !fileutil.IsDir(datFolder) {
		return false
	}
	datFiles, err := fileutil.NonHiddenFiles(datFolder, "*.dat")
	return err == nil && len(datFiles) > 0
}

func (ingester *Igor11012Ingester) Extract(path, owner string) (*models.DatasetRecord, error) {
	datFolder := filepath.Join(path, "dat")
	sciMd, err := buildIgorMetadata(datFolder)
	if err != nil {
		return nil, err
	}

	inputDatasetName := filepath.Base(path)
	datasetName := inputDatasetName + "_IGOR_ANALYSIS"
	description := util.CleanName(datasetName)
	ownable := models.NewOwnable(owner, OwnerGroup, AccessGroups)

	files, totalSize, err := collectDataFiles(datFolder, constants.FileTypeDerived)
	if err != nil {
		return nil, err
	}

	record := &models.DatasetRecord{
		Name:             datasetName,
		SourcePath:       path,
		InputDatasetName: inputDatasetName,
		Derived: &models.DerivedDataset{
			Ownable:            ownable,
			Investigator:       owner,
			InputDatasets:      []string{},
			UsedSoftware:       []string{"Igor", "Irena", "Nika"},
			ContactEmail:       ContactEmail,
			CreationTime:       fileutil.FileModTime(datFolder),
			DatasetName:        datasetName,
			Type:               constants.DatasetTypeDerived,
			InstrumentId:       "11.0.1.2",
			ProposalId:         "unknown",
			DataFormat:         "dat",
			SourceFolder:       datFolder,
			Size:               totalSize,
			ScientificMetadata: sciMd,
			SampleId:           datasetName,
			IsPublished:        false,
			Description:        description,
			Keywords: append([]string{"scattering", "rsoxs", "11.0.1.2", "als",
				"ccd", "igor", "analysis"}, strings.Fields(util.BuildSearchTerms(inputDatasetName))...),
		},
		Files:     files,
		TotalSize: totalSize,
	}

	jpegFiles, err := fileutil.NonHiddenFiles(path, "*.jpg")
	if err == nil && len(jpegFiles) > 0 {
		thumbnail, err := fileutil.EncodeThumbnail(jpegFiles[0])
		if err == nil {
			record.Attachments = append(record.Attachments, &models.Attachment{
				Ownable:   ownable,
				Thumbnail: thumbnail,
				Caption:   "scattering image",
			})
		}
	}
	return record, nil
}

// buildIgorMetadata keys the header block of each .dat file by its
// Nika_XrayEnergy value (with dots swapped for underscores, since
// SciCat treats dotted keys as paths). Two files reduced at the
// same energy get " (1)", " (2)" suffixes.
func buildIgorMetadata(datFolder string) (map[string]interface{}, error) {
	datFiles, err := fileutil.NonHiddenFiles(datFolder, "*.dat")
	if err != nil {
		return nil, err
	}
	sciMd := make(map[string]interface{})
	for _, datFile := range datFiles {
		headers, err := readIgorHeaders(datFile)
		if err != nil {
			return nil, errors.Wrapf(err, "error reading Igor headers from '%s'", datFile)
		}
		energy, _ := headers["Nika_XrayEnergy"].(string)
		if energy == "" {
			energy = strings.TrimSuffix(filepath.Base(datFile), ".dat")
		}
		energy = strings.Replace(energy, ".", "_", -1)
		key := energy
		for i := 1; ; i++ {
			if _, taken := sciMd[key]; !taken {
				break
			}
			key = fmt.Sprintf("%s (%d)", energy, i)
		}
		sciMd[key] = headers
	}
	return sciMd, nil
}

// readIgorHeaders parses the leading comment block of an Igor .dat
// file. Header lines start with # and hold "key = value" pairs; the
// block ends at the first data line.
func readIgorHeaders(pathToFile string) (map[string]interface{}, error) {
	file, err := os.Open(pathToFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	headers := make(map[string]interface{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			break
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "#"))
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key != "" && value != "" {
			headers[key] = value
		}
	}
	return headers, scanner.Err()
}
