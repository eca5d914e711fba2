// Package teamname derives display labels from raw platform team names.
package teamname

import (
	"regexp"
	"strings"
)

var (
	letterPrefix = regexp.MustCompile(`^[A-Z] - `)
	dateSuffix   = regexp.MustCompile(` - \d{4}[/-]\d{2}[/-]\d{2}.*$`)
)

// Normalize maps a raw team name to its display label. "S - " and "M - "
// prefixes carry fixed labels; any other single-uppercase-letter prefix is
// stripped, as is a trailing " - YYYY/MM/DD..." date marker.
func Normalize(raw string) string {
	if strings.HasPrefix(raw, "S - ") {
		return "Session"
	}
	if strings.HasPrefix(raw, "M - ") {
		return "Moderators"
	}
	name := letterPrefix.ReplaceAllString(raw, "")
	name = dateSuffix.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}
