package fitsutil_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/als-computing/scicat-beamline/util/fitsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFitsFile builds a minimal FITS file whose primary header
// holds the given card images, padded out to a full 2880-byte block.
func writeFitsFile(t *testing.T, cards []string) string {
	var builder strings.Builder
	for _, card := range cards {
		builder.WriteString(fmt.Sprintf("%-80s", card))
	}
	builder.WriteString(fmt.Sprintf("%-80s", "END"))
	for builder.Len()%2880 != 0 {
		builder.WriteString(" ")
	}
	pathToFile := filepath.Join(t.TempDir(), "frame.fits")
	require.Nil(t, os.WriteFile(pathToFile, []byte(builder.String()), 0644))
	return pathToFile
}

func TestReadPrimaryHeader(t *testing.T) {
	pathToFile := writeFitsFile(t, []string{
		"SIMPLE  =                    T / file does conform to FITS standard",
		"BITPIX  =                   16 / number of bits per data pixel",
		"NAXIS   =                    2",
		"EXPOSURE=                 0.02 / exposure time in seconds",
		"BEAMLINE= 'bl11.0.1.2'         / beamline identifier",
		"SAMPLE  = 'Bob''s Kapton'",
		"COMMENT   this card carries no value",
		"HISTORY   neither does this one",
	})

	header, err := fitsutil.ReadPrimaryHeader(pathToFile)
	require.Nil(t, err)

	assert.Equal(t, []string{"SIMPLE", "BITPIX", "NAXIS", "EXPOSURE", "BEAMLINE", "SAMPLE"},
		header.Keys())

	value, ok := header.Get("SIMPLE")
	require.True(t, ok)
	assert.Equal(t, true, value)

	value, _ = header.Get("BITPIX")
	assert.EqualValues(t, int64(16), value)

	value, _ = header.Get("EXPOSURE")
	assert.Equal(t, 0.02, value)

	value, _ = header.Get("BEAMLINE")
	assert.Equal(t, "bl11.0.1.2", value)

	// Doubled quotes are escapes.
	value, _ = header.Get("SAMPLE")
	assert.Equal(t, "Bob's Kapton", value)

	_, ok = header.Get("COMMENT")
	assert.False(t, ok)
	_, ok = header.Get("NO_SUCH_KEY")
	assert.False(t, ok)
}

func TestReadPrimaryHeaderNotFits(t *testing.T) {
	pathToFile := filepath.Join(t.TempDir(), "notfits.fits")
	content := fmt.Sprintf("%-2880s", "this is not a FITS file")
	require.Nil(t, os.WriteFile(pathToFile, []byte(content), 0644))
	_, err := fitsutil.ReadPrimaryHeader(pathToFile)
	require.NotNil(t, err)
	assert.True(t, strings.Contains(err.Error(), "does not look like a FITS file"))
}

func TestReadPrimaryHeaderTruncated(t *testing.T) {
	pathToFile := filepath.Join(t.TempDir(), "short.fits")
	require.Nil(t, os.WriteFile(pathToFile, []byte("SIMPLE  =  T"), 0644))
	_, err := fitsutil.ReadPrimaryHeader(pathToFile)
	assert.NotNil(t, err)
}

func TestReadPrimaryHeaderMissingFile(t *testing.T) {
	_, err := fitsutil.ReadPrimaryHeader("/no/such/frame.fits")
	assert.NotNil(t, err)
}
