package ingesters

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/als-computing/scicat-beamline/constants"
	"github.com/als-computing/scicat-beamline/models"
	"github.com/als-computing/scicat-beamline/util"
	"github.com/als-computing/scicat-beamline/util/fileutil"
	"github.com/pkg/errors"
)

func init() {
	Register(&NexafsIngester{})
}

// NexafsIngester reads NEXAFS absorption scans from beamline
// 11.0.1.2. Each scan is a single text file: a preamble of loosely
// formatted headers, then a tab-separated table whose first header
// line starts with "Time of". The preamble and the table columns
// both become scientific metadata.
type NexafsIngester struct {
}

func (ingester *NexafsIngester) Name() string {
	return constants.IngesterALS11012Nexafs
}

// Matches accepts regular .txt files whose first lines include the
// "Time of" table header that the NEXAFS scan software writes.
func (ingester *NexafsIngester) Matches(path string) bool {
	if !fileutil.IsFile(path) || !strings.HasSuffix(path, ".txt") {
		return false
	}
	return findTableHeader(path) != ""
}

func (ingester *NexafsIngester) Extract(path, owner string) (*models.DatasetRecord, error) {
	sciMd := make(map[string]interface{})
	err := AddMetadataFromBadHeaders(sciMd, path, func(line string) bool {
		return strings.HasPrefix(line, "Time of")
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error reading NEXAFS headers from '%s'", path)
	}
	if err := addTableColumns(sciMd, path); err != nil {
		return nil, errors.Wrapf(err, "error reading NEXAFS table from '%s'", path)
	}

	sampleName := filepath.Base(path)
	description := util.CleanName(strings.TrimSuffix(sampleName, ".txt"))
	ownable := models.NewOwnable(owner, OwnerGroup, AccessGroups)
	fileSize := fileutil.FileSize(path)
	modTime := fileutil.FileModTime(path)

	record := &models.DatasetRecord{
		Name:       sampleName,
		SourcePath: path,
		Raw: &models.RawDataset{
			Ownable:               ownable,
			ContactEmail:          ContactEmail,
			CreationLocation:      "ALS 11.0.1.2",
			CreationTime:          modTime,
			DatasetName:           sampleName,
			Type:                  constants.DatasetTypeRaw,
			InstrumentId:          "11.0.1.2",
			ProposalId:            "unknown",
			DataFormat:            "ALS BCS",
			PrincipalInvestigator: owner,
			SourceFolder:          filepath.Dir(path),
			ScientificMetadata:    sciMd,
			SampleId:              sampleName,
			IsPublished:           false,
			Description:           description,
			Keywords:              []string{"NEXAFS", "11.0.1.2", "ALS", "absorption", "11.0.1.2 NEXAFS"},
		},
		Files: []models.DataFile{
			{
				Path: filepath.Base(path),
				Size: fileSize,
				Time: modTime,
				Type: constants.FileTypeRaw,
			},
		},
		TotalSize: fileSize,
	}
	return record, nil
}

// findTableHeader returns the "Time of" header line of a NEXAFS
// scan file, or an empty string. Only the preamble is scanned, so a
// file that never turns into a table is rejected quickly.
func findTableHeader(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	linesScanned := 0
	for scanner.Scan() && linesScanned < 200 {
		line := scanner.Text()
		if strings.HasPrefix(line, "Time of") {
			return line
		}
		linesScanned++
	}
	return ""
}

// addTableColumns parses the tab-separated data table that follows
// the preamble and adds one metadata entry per column, holding that
// column's values in row order. Values that parse as numbers are
// stored as numbers; blank cells and NaN become nil, which
// serializes to JSON null.
func addTableColumns(sciMd map[string]interface{}, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var columns []string
	var values [][]interface{}
	inTable := false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !inTable {
			if strings.HasPrefix(line, "Time of") {
				columns = strings.Split(strings.TrimRight(line, "\r\n"), "\t")
				values = make([][]interface{}, len(columns))
				inTable = true
			}
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		for i := range columns {
			if i < len(cells) {
				values[i] = append(values[i], parseCell(cells[i]))
			} else {
				values[i] = append(values[i], nil)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	for i, column := range columns {
		name := strings.TrimSpace(column)
		if name == "" {
			continue
		}
		sciMd[name] = values[i]
	}
	return nil
}

func parseCell(cell string) interface{} {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") {
		return nil
	}
	if number, err := strconv.ParseFloat(cell, 64); err == nil {
		return number
	}
	return cell
}
