package ingesters

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// AddMetadataFromBadHeaders scans the lines of the file at
// pathToFile and adds key/value pairs to sciMd, using : or = as the
// delimiter. The beamline control software writes these preamble
// headers with no consistent format, hence "bad headers": if a line
// has no delimiter, more than one, or an empty key, the whole line
// is stored under a generated unknown_fieldN key. A key that
// repeats with a new value becomes a list of values. Scanning stops
// when stop returns true for a line; a nil stop scans the whole
// file.
func AddMetadataFromBadHeaders(sciMd map[string]interface{}, pathToFile string, stop func(string) bool) error {
	file, err := os.Open(pathToFile)
	if err != nil {
		return err
	}
	defer file.Close()

	unknownCount := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if stop != nil && stop(line) {
			return nil
		}
		parts := strings.Split(strings.Replace(line, "=", ":", -1), ":")
		if len(parts) == 2 && parts[0] != "" {
			key, value := parts[0], parts[1]
			existing, present := sciMd[key]
			if !present {
				sciMd[key] = value
			} else if existing != value {
				if list, isList := existing.([]string); isList {
					sciMd[key] = append(list, value)
				} else {
					sciMd[key] = []string{existing.(string), value}
				}
			}
			continue
		}
		sciMd[fmt.Sprintf("unknown_field%d", unknownCount)] = line
		unknownCount++
	}
	return scanner.Err()
}
