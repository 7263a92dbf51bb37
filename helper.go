package loggit

/*
Small time helpers shared by line rendering and file naming. File names get
dash-separated clock strings because colons are not portable in paths.
*/

import "time"

const (
	timeLayout     = "15:04:05"
	dateLayout     = "2006-01-02"
	fileTimeLayout = "15-04-05"
	fileDateLayout = "2006-01-02"
)

func timeString(t time.Time) string     { return t.Format(timeLayout) }
func dateString(t time.Time) string     { return t.Format(dateLayout) }
func fileTimeString(t time.Time) string { return t.Format(fileTimeLayout) }
func fileDateString(t time.Time) string { return t.Format(fileDateLayout) }

// splitEpochSeconds breaks elapsed seconds since the unix epoch into UTC
// calendar components (0 -> 1970-01-01 00:00:00).
func splitEpochSeconds(secs int64) (year, month, day, hour, minute, second int) {
	t := time.Unix(secs, 0).UTC()
	return t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()
}
