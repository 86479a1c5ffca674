package report

import (
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/text/width"
)

// datePatterns are tried in order against the filename. They differ only in
// the separator glyph preceding the date (through/to/until variants); the
// last three groups are always year, month, day. Matching happens after
// width folding, which rewrites the full-width ～ to an ASCII ~, so the
// tilde pattern must accept both forms or it would never fire.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[～~](\d{4})年(\d{1,2})月(\d{1,2})日`),
	regexp.MustCompile(`-(\d{4})年(\d{1,2})月(\d{1,2})日`),
	regexp.MustCompile(`至(\d{4})年(\d{1,2})月(\d{1,2})日`),
	regexp.MustCompile(`到(\d{4})年(\d{1,2})月(\d{1,2})日`),
	regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`),
}

// WeekEndDate extracts the report's week-ending date from its filename.
// Full-width digits are folded to ASCII before matching. The second return
// is false when no pattern matches; callers skip the file rather than fail
// the run.
func WeekEndDate(path string) (time.Time, bool) {
	name := width.Narrow.String(filepath.Base(path))
	for _, pat := range datePatterns {
		m := pat.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[len(m)-3])
		month, _ := strconv.Atoi(m[len(m)-2])
		day, _ := strconv.Atoi(m[len(m)-1])
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
