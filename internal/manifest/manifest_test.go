package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitAppliesDefaultsWhenOptionsAreZeroValue(t *testing.T) {
	out := Emit(Options{})
	assert.Equal(t, "title=Dev Channel\nmajor_version=1\nminor_version=0\nbuild_version=0\nui_resolutions=fhd\n", out)
}

func TestEmitHonorsSuppliedFields(t *testing.T) {
	out := Emit(Options{
		Title:         "Browse Demo",
		MajorVersion:  "2",
		MinorVersion:  "3",
		BuildVersion:  "7",
		UIResolutions: "hd",
	})
	assert.Equal(t, "title=Browse Demo\nmajor_version=2\nminor_version=3\nbuild_version=7\nui_resolutions=hd\n", out)
}

func TestEmitKeyOrderIsFixed(t *testing.T) {
	out := Emit(Options{Title: "X"})
	titleIdx := indexOf(out, "title=")
	majorIdx := indexOf(out, "major_version=")
	minorIdx := indexOf(out, "minor_version=")
	buildIdx := indexOf(out, "build_version=")
	resIdx := indexOf(out, "ui_resolutions=")
	assert.True(t, titleIdx < majorIdx && majorIdx < minorIdx && minorIdx < buildIdx && buildIdx < resIdx)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
