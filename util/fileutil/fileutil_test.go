package fileutil_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/als-computing/scicat-beamline/util/fileutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFile(t *testing.T, dir, name, content string) string {
	pathToFile := filepath.Join(dir, name)
	require.Nil(t, os.WriteFile(pathToFile, []byte(content), 0644))
	return pathToFile
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	pathToFile := makeFile(t, dir, "exists.txt", "hello")
	assert.True(t, fileutil.FileExists(pathToFile))
	assert.True(t, fileutil.FileExists(dir))
	assert.False(t, fileutil.FileExists(filepath.Join(dir, "nope.txt")))
}

func TestIsDirIsFile(t *testing.T) {
	dir := t.TempDir()
	pathToFile := makeFile(t, dir, "file.txt", "hello")
	assert.True(t, fileutil.IsDir(dir))
	assert.False(t, fileutil.IsDir(pathToFile))
	assert.True(t, fileutil.IsFile(pathToFile))
	assert.False(t, fileutil.IsFile(dir))
	assert.False(t, fileutil.IsFile(filepath.Join(dir, "nope.txt")))
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	pathToFile := makeFile(t, dir, "file.txt", "12345")
	assert.EqualValues(t, 5, fileutil.FileSize(pathToFile))
	assert.EqualValues(t, 0, fileutil.FileSize(filepath.Join(dir, "nope.txt")))
}

func TestFileModTime(t *testing.T) {
	dir := t.TempDir()
	pathToFile := makeFile(t, dir, "file.txt", "hello")
	modTime := fileutil.FileModTime(pathToFile)
	assert.True(t, strings.HasSuffix(modTime, "Z"))
	assert.False(t, strings.HasPrefix(modTime, "0001"))
}

func TestExpandTilde(t *testing.T) {
	expanded, err := fileutil.ExpandTilde("~/tmp")
	require.Nil(t, err)
	assert.True(t, strings.HasSuffix(expanded, "tmp"))
	assert.True(t, len(expanded) > len("~/tmp"))

	expanded, err = fileutil.ExpandTilde("/absolute/path")
	require.Nil(t, err)
	assert.Equal(t, "/absolute/path", expanded)
}

func TestNonHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	makeFile(t, dir, "b.txt", "b")
	makeFile(t, dir, "a.txt", "a")
	makeFile(t, dir, ".hidden.txt", "nope")
	makeFile(t, dir, "c.dat", "c")
	require.Nil(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0755))

	files, err := fileutil.NonHiddenFiles(dir, "*.txt")
	require.Nil(t, err)
	require.Equal(t, 2, len(files))
	// Sorted, hidden files and directories skipped.
	assert.Equal(t, filepath.Join(dir, "a.txt"), files[0])
	assert.Equal(t, filepath.Join(dir, "b.txt"), files[1])
}

func TestListDirectory(t *testing.T) {
	dir := t.TempDir()
	makeFile(t, dir, "file.txt", "x")
	makeFile(t, dir, ".DS_Store", "junk")
	require.Nil(t, os.Mkdir(filepath.Join(dir, "subdir"), 0755))

	names, err := fileutil.ListDirectory(dir)
	require.Nil(t, err)
	assert.Equal(t, 2, len(names))
	assert.Contains(t, names, "file.txt")
	assert.Contains(t, names, "subdir")

	_, err = fileutil.ListDirectory(filepath.Join(dir, "nope"))
	assert.NotNil(t, err)
}

func TestEncodeThumbnail(t *testing.T) {
	dir := t.TempDir()
	imageBytes := "not really a png"
	pathToImage := makeFile(t, dir, "thumb.png", imageBytes)

	encoded, err := fileutil.EncodeThumbnail(pathToImage)
	require.Nil(t, err)
	assert.True(t, strings.HasPrefix(encoded, "data:image/png;base64,"))
	decoded, err := base64.StdEncoding.DecodeString(
		strings.TrimPrefix(encoded, "data:image/png;base64,"))
	require.Nil(t, err)
	assert.Equal(t, imageBytes, string(decoded))

	// jpg normalizes to the jpeg media type
	pathToJpg := makeFile(t, dir, "thumb.jpg", imageBytes)
	encoded, err = fileutil.EncodeThumbnail(pathToJpg)
	require.Nil(t, err)
	assert.True(t, strings.HasPrefix(encoded, "data:image/jpeg;base64,"))

	_, err = fileutil.EncodeThumbnail(filepath.Join(dir, "nope.png"))
	assert.NotNil(t, err)
}
