package catalogs

import (
	"time"

	"github.com/hdwx/mrms/pkg/constants"
	"github.com/hdwx/mrms/pkg/errors"
)

// FormatStamp renders t (in UTC) as a YYYYMMDDHHMM document timestamp.
func FormatStamp(t time.Time) string {
	return t.UTC().Format(constants.StampLayout)
}

// ParseStamp parses a YYYYMMDDHHMM document timestamp as UTC.
func ParseStamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.StampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, errors.NewParseError("timestamp", "", "invalid timestamp "+s, err)
	}
	return t, nil
}

// RunHour returns the run bucket a valid time belongs to: the time in UTC
// truncated to the hour.
func RunHour(valid time.Time) time.Time {
	return valid.UTC().Truncate(constants.RunDuration)
}
