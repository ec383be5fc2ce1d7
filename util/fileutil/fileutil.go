package fileutil

import (
	"encoding/base64"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/als-computing/scicat-beamline/constants"
)

// FileExists returns true if the file at path exists.
// This returns false if the file does not exist, or if
// you don't have permission to stat it.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir returns true if the item at path exists and is a directory.
func IsDir(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.IsDir()
}

// IsFile returns true if the item at path exists and is a regular file.
func IsFile(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.Mode().IsRegular()
}

// FileSize returns the size, in bytes, of the file at path,
// or zero if the file cannot be statted.
func FileSize(path string) int64 {
	stat, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return stat.Size()
}

// FileModTime returns the modification time of the file at path,
// formatted the way the SciCat API wants timestamps.
func FileModTime(path string) string {
	stat, err := os.Stat(path)
	if err != nil {
		return time.Time{}.UTC().Format(constants.SciCatTimeFormat)
	}
	return stat.ModTime().UTC().Format(constants.SciCatTimeFormat)
}

// ExpandTilde expands the tilde in a file path to the current
// user's home directory. E.g. ~/data becomes /home/josie/data.
func ExpandTilde(filePath string) (string, error) {
	if !strings.HasPrefix(filePath, "~") {
		return filePath, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	homeDir := usr.HomeDir + "/"
	expandedDir := strings.Replace(filePath, "~/", homeDir, 1)
	return expandedDir, nil
}

// NonHiddenFiles returns the sorted names of the non-hidden regular
// files in folder whose names match the glob pattern. Beamline
// folders often contain editor droppings and .DS_Store files that
// should never end up in a dataset.
func NonHiddenFiles(folder, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(folder, pattern))
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(matches))
	for _, match := range matches {
		if strings.HasPrefix(filepath.Base(match), ".") {
			continue
		}
		if !IsFile(match) {
			continue
		}
		files = append(files, match)
	}
	sort.Strings(files)
	return files, nil
}

// ListDirectory returns the names of the immediate entries of dir,
// in directory-listing order. Hidden entries are excluded.
func ListDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// EncodeThumbnail reads an image file and returns it as a base64
// data URI suitable for the thumbnail field of a SciCat attachment.
func EncodeThumbnail(pathToImage string) (string, error) {
	data, err := os.ReadFile(pathToImage)
	if err != nil {
		return "", err
	}
	imageType := strings.TrimPrefix(filepath.Ext(pathToImage), ".")
	if imageType == "" {
		return "", fmt.Errorf("cannot tell image type of '%s': file has no extension", pathToImage)
	}
	if imageType == "jpg" {
		imageType = "jpeg"
	}
	header := fmt.Sprintf("data:image/%s;base64,", imageType)
	return header + base64.StdEncoding.EncodeToString(data), nil
}
