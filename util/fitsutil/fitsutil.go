// Package fitsutil reads the primary header of FITS files produced
// by the beamline CCD software. It understands just enough of the
// FITS standard to pull keyword/value cards out of the primary HDU;
// it does not touch image data.
package fitsutil

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// FITS files are organized in 2880-byte blocks of 80-character
// ASCII card images.
const (
	blockSize = 2880
	cardSize  = 80
)

// Headers larger than this many blocks almost certainly mean a
// corrupt file with no END card.
const maxHeaderBlocks = 100

// Header holds the keyword/value cards of a FITS primary header,
// preserving the order in which the cards appear in the file.
type Header struct {
	keys   []string
	values map[string]interface{}
}

// Keys returns the header keywords in file order. Commentary
// cards (COMMENT, HISTORY, blank keyword) are not included.
func (header *Header) Keys() []string {
	return header.keys
}

// Get returns the value recorded for the given keyword.
func (header *Header) Get(key string) (interface{}, bool) {
	value, ok := header.values[key]
	return value, ok
}

// ReadPrimaryHeader reads the primary header of the FITS file at
// pathToFile. It returns an error if the file does not start with
// a SIMPLE card or has no END card.
func ReadPrimaryHeader(pathToFile string) (*Header, error) {
	file, err := os.Open(pathToFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseHeader(file, pathToFile)
}

func parseHeader(reader io.Reader, pathToFile string) (*Header, error) {
	header := &Header{
		keys:   make([]string, 0),
		values: make(map[string]interface{}),
	}
	block := make([]byte, blockSize)
	for blockNum := 0; blockNum < maxHeaderBlocks; blockNum++ {
		_, err := io.ReadFull(reader, block)
		if err != nil {
			return nil, fmt.Errorf("error reading FITS header from '%s': %v", pathToFile, err)
		}
		for offset := 0; offset < blockSize; offset += cardSize {
			card := string(block[offset : offset+cardSize])
			keyword := strings.TrimRight(card[0:8], " ")
			if blockNum == 0 && offset == 0 && keyword != "SIMPLE" {
				return nil, fmt.Errorf("'%s' does not look like a FITS file: first card is '%s'", pathToFile, keyword)
			}
			if keyword == "END" {
				return header, nil
			}
			// COMMENT, HISTORY and blank cards carry no value
			if keyword == "" || keyword == "COMMENT" || keyword == "HISTORY" {
				continue
			}
			if len(card) < 10 || card[8:10] != "= " {
				continue
			}
			header.keys = append(header.keys, keyword)
			header.values[keyword] = parseValue(card[10:])
		}
	}
	return nil, fmt.Errorf("no END card in first %d blocks of '%s'", maxHeaderBlocks, pathToFile)
}

// parseValue converts the value field of a card to a string, bool,
// int64 or float64, following the FITS fixed-format conventions.
// Inline comments after a slash are discarded.
func parseValue(field string) interface{} {
	field = strings.TrimSpace(field)
	if strings.HasPrefix(field, "'") {
		// Quoted string. Doubled quotes are escapes, and the
		// closing quote may be followed by a comment.
		var builder strings.Builder
		for i := 1; i < len(field); i++ {
			if field[i] == '\'' {
				if i+1 < len(field) && field[i+1] == '\'' {
					builder.WriteByte('\'')
					i++
					continue
				}
				break
			}
			builder.WriteByte(field[i])
		}
		return strings.TrimRight(builder.String(), " ")
	}
	if slash := strings.Index(field, "/"); slash >= 0 {
		field = strings.TrimSpace(field[:slash])
	}
	switch field {
	case "T":
		return true
	case "F":
		return false
	}
	if intValue, err := strconv.ParseInt(field, 10, 64); err == nil {
		return intValue
	}
	if floatValue, err := strconv.ParseFloat(field, 64); err == nil {
		return floatValue
	}
	return field
}
