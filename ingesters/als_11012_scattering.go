package ingesters

import (
	"path/filepath"
	"strings"

	"github.com/als-computing/scicat-beamline/constants"
	"github.com/als-computing/scicat-beamline/models"
	"github.com/als-computing/scicat-beamline/util"
	"github.com/als-computing/scicat-beamline/util/fileutil"
	"github.com/als-computing/scicat-beamline/util/fitsutil"
	"github.com/pkg/errors"
)

func init() {
	Register(&Scattering11012Ingester{})
}

// Scattering11012Ingester reads 11.0.1.2 RSoXS scattering sample
// folders. A sample folder holds the labview (AI) text file, the
// CCD frames as FITS files, and some PNG previews. The FITS primary
// header of each frame is folded into the scientific metadata, one
// entry per header keyword mapping frame name to value; PNG files
// become thumbnail attachments.
type Scattering11012Ingester struct {
}

func (ingester *Scattering11012Ingester) Name() string {
	return constants.IngesterALS11012Scattering
}

// Matches accepts directories holding at least one FITS frame and
// the AI text file.
func (ingester *Scattering11012Ingester) Matches(path string) bool {
	if !fileutil.IsDir(path) {
		return false
	}
	fitsFiles, err := fileutil.NonHiddenFiles(path, "*.fits")
	if err != nil || len(fitsFiles) == 0 {
		return false
	}
	txtFiles, err := fileutil.NonHiddenFiles(path, "*.txt")
	return err == nil && len(txtFiles) > 0
}

func (ingester *Scattering11012Ingester) Extract(path, owner string) (*models.DatasetRecord, error) {
	txtFiles, err := fileutil.NonHiddenFiles(path, "*.txt")
	if err != nil || len(txtFiles) == 0 {
		return nil, errors.Errorf("no AI file in scattering folder '%s'", path)
	}
	aiFile := txtFiles[0]

	sciMd, err := ingester.buildScientificMetadata(path, aiFile)
	if err != nil {
		return nil, err
	}

	sampleName := util.CleanName(filepath.Base(path))
	description := sampleName + " " + util.CleanName(util.TrimAIFileSuffix(filepath.Base(aiFile)))
	ownable := models.NewOwnable(owner, OwnerGroup, AccessGroups)
	creationTime := fileutil.FileModTime(aiFile)

	files, totalSize, err := collectDataFiles(path, constants.FileTypeRaw)
	if err != nil {
		return nil, err
	}

	record := &models.DatasetRecord{
		Name:       filepath.Base(path),
		SourcePath: path,
		Raw: &models.RawDataset{
			Ownable:               ownable,
			ContactEmail:          ContactEmail,
			CreationLocation:      "ALS 11.0.1.2",
			CreationTime:          creationTime,
			DatasetName:           sampleName,
			Type:                  constants.DatasetTypeRaw,
			InstrumentId:          "11.0.1.2",
			ProposalId:            "unknown",
			DataFormat:            "ALS BCS",
			PrincipalInvestigator: owner,
			SourceFolder:          path,
			Size:                  totalSize,
			ScientificMetadata:    sciMd,
			SampleId:              sampleName,
			IsPublished:           false,
			Description:           description,
			Keywords:              []string{"scattering", "RSoXS", "ALS", "11.0.1.2", "11.0.1.2 RSoXS"},
		},
		Files:     files,
		TotalSize: totalSize,
	}

	pngFiles, err := fileutil.NonHiddenFiles(path, "*.png")
	if err == nil {
		for _, pngFile := range pngFiles {
			thumbnail, err := fileutil.EncodeThumbnail(pngFile)
			if err != nil {
				continue
			}
			record.Attachments = append(record.Attachments, &models.Attachment{
				Ownable:   ownable,
				Thumbnail: thumbnail,
				Caption:   "scattering image",
			})
		}
	}
	return record, nil
}

// buildScientificMetadata merges the AI file preamble with the FITS
// headers of every frame. Each FITS keyword becomes one metadata
// entry mapping frame name to that frame's value, so a scan over
// many energies reads as one table per keyword.
func (ingester *Scattering11012Ingester) buildScientificMetadata(folder, aiFile string) (map[string]interface{}, error) {
	sciMd := make(map[string]interface{})
	err := AddMetadataFromBadHeaders(sciMd, aiFile, func(line string) bool {
		return strings.HasPrefix(line, "Time")
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error reading AI file '%s'", aiFile)
	}

	fitsFiles, err := fileutil.NonHiddenFiles(folder, "*.fits")
	if err != nil {
		return nil, err
	}
	for _, fitsFile := range fitsFiles {
		header, err := fitsutil.ReadPrimaryHeader(fitsFile)
		if err != nil {
			return nil, errors.Wrapf(err, "error reading FITS header from '%s'", fitsFile)
		}
		frame := strings.TrimSuffix(filepath.Base(fitsFile), ".fits")
		for _, key := range header.Keys() {
			value, _ := header.Get(key)
			perFrame, present := sciMd[key].(map[string]interface{})
			if !present {
				perFrame = make(map[string]interface{})
				sciMd[key] = perFrame
			}
			perFrame[frame] = value
		}
	}
	return sciMd, nil
}

// collectDataFiles lists the non-hidden regular files directly
// inside folder as DataFiles, returning them with their total size.
func collectDataFiles(folder, fileType string) ([]models.DataFile, int64, error) {
	names, err := fileutil.NonHiddenFiles(folder, "*")
	if err != nil {
		return nil, 0, err
	}
	files := make([]models.DataFile, 0, len(names))
	var totalSize int64
	for _, name := range names {
		size := fileutil.FileSize(name)
		files = append(files, models.DataFile{
			Path: filepath.Base(name),
			Size: size,
			Time: fileutil.FileModTime(name),
			Type: fileType,
		})
		totalSize += size
	}
	return files, totalSize, nil
}
