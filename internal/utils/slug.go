package utils

import (
	"strings"
	"unicode"
)

// CleanupPageName turns a title into a URL-safe page name: lower case,
// letters, digits, "-" and "_" only, with runs of anything else collapsed
// into a single "_".  "Venue & Travel Info" becomes "venue_travel_info".
func CleanupPageName(title string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) && r < unicode.MaxASCII, unicode.IsDigit(r) && r < unicode.MaxASCII, r == '-':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// Slugify is CleanupPageName with "_" replaced by "-", the form used for
// event and page routes.
func Slugify(title string) string {
	return strings.ReplaceAll(CleanupPageName(title), "_", "-")
}

// Scrub converts a label into a field name: "T-Shirt Size" becomes
// "t_shirt_size".
func Scrub(label string) string {
	return strings.ReplaceAll(CleanupPageName(label), "-", "_")
}
