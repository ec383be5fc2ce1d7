package util

import (
	"regexp"
	"strings"
)

var reNonAlphaNum *regexp.Regexp = regexp.MustCompile("[^a-zA-Z0-9]+")

// CleanName turns a file or folder name into a human-readable
// identifier by replacing underscores and dashes with spaces.
// E.g. "Kapton_thin-film" becomes "Kapton thin film".
func CleanName(name string) string {
	clean := strings.Replace(name, "_", " ", -1)
	clean = strings.Replace(clean, "-", " ", -1)
	return clean
}

// BuildSearchTerms extracts lowercase search terms from a sample name
// to provide something pleasing to search on in the catalog. E.g.
// "B12_Kapton-2" yields "b12 kapton 2".
func BuildSearchTerms(sampleName string) string {
	terms := reNonAlphaNum.Split(sampleName, -1)
	keep := make([]string, 0, len(terms))
	for _, term := range terms {
		if term != "" {
			keep = append(keep, strings.ToLower(term))
		}
	}
	return strings.Join(keep, " ")
}

// TrimAIFileSuffix strips the trailing AI counter from a labview
// AI file name. The beamline software names these files like
// "sample_name2021 1.txt", and the last seven characters are the
// counter and extension.
func TrimAIFileSuffix(fileName string) string {
	if len(fileName) <= 7 {
		return fileName
	}
	return fileName[:len(fileName)-7]
}

// StringListContains returns true if the list contains the item.
func StringListContains(list []string, item string) bool {
	for i := range list {
		if list[i] == item {
			return true
		}
	}
	return false
}
