package catalogs

import (
	"strconv"
	"strings"
	"time"

	"github.com/hdwx/mrms/pkg/constants"
)

// Frame is one rendered image inside a run. Frames compare with ==; two
// records describe the same frame only if every field matches.
type Frame struct {
	FHour    int     `json:"fhour" yaml:"fhour"`
	Filename string  `json:"filename" yaml:"filename"`
	GISInfo  GISInfo `json:"gisInfo" yaml:"gisInfo"`
	Valid    string  `json:"valid" yaml:"valid"`
}

// NewFrame builds the record for an image valid at valid.
func NewFrame(filename string, valid time.Time, gis GISInfo) Frame {
	return Frame{
		FHour:    0,
		Filename: filename,
		GISInfo:  gis,
		Valid:    FormatStamp(valid),
	}
}

// ValidTime parses the frame's valid timestamp.
func (f Frame) ValidTime() (time.Time, error) {
	return ParseStamp(f.Valid)
}

// FrameName returns the file name of the frame valid at t:
// minutes past the hour, zero padded, plus the extension.
func FrameName(t time.Time, ext string) string {
	return t.UTC().Format(constants.FrameNameLayout) + "." + ext
}

// ParseFrameName returns the minutes past the hour encoded in a frame file
// name such as "05.png". ok is false for anything else, including hidden
// files and other extensions.
func ParseFrameName(name, ext string) (minute int, ok bool) {
	stem, found := strings.CutSuffix(name, "."+ext)
	if !found || len(stem) != 2 || !isDigit(stem[0]) || !isDigit(stem[1]) {
		return 0, false
	}
	m, err := strconv.Atoi(stem)
	if err != nil || m > 59 {
		return 0, false
	}
	return m, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
