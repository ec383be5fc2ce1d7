package util_test

import (
	"testing"

	"github.com/als-computing/scicat-beamline/util"
	"github.com/stretchr/testify/assert"
)

func TestCleanName(t *testing.T) {
	assert.Equal(t, "Kapton thin film", util.CleanName("Kapton_thin-film"))
	assert.Equal(t, "plain", util.CleanName("plain"))
	assert.Equal(t, "", util.CleanName(""))
}

func TestBuildSearchTerms(t *testing.T) {
	assert.Equal(t, "b12 kapton 2", util.BuildSearchTerms("B12_Kapton-2"))
	assert.Equal(t, "ccd", util.BuildSearchTerms("CCD"))
	assert.Equal(t, "", util.BuildSearchTerms("___"))
}

func TestTrimAIFileSuffix(t *testing.T) {
	assert.Equal(t, "B12_Kapton2021", util.TrimAIFileSuffix("B12_Kapton2021 1.txt"))
	// Names too short to hold a counter come back unchanged.
	assert.Equal(t, "a.txt", util.TrimAIFileSuffix("a.txt"))
}

func TestStringListContains(t *testing.T) {
	list := []string{"apple", "orange", "banana"}
	assert.True(t, util.StringListContains(list, "orange"))
	assert.False(t, util.StringListContains(list, "wedgewood"))
	assert.False(t, util.StringListContains(nil, "apple"))
}
