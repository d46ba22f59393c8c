package normalize

import "strings"

// isDigits reports whether s is non-empty and all ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// DateKey strips dashes from a YYYY-MM-DD date, yielding the YYYYMMDD key
// the facility page expects. Already-compact input passes through.
func DateKey(date string) string {
	return strings.ReplaceAll(date, "-", "")
}

// DateDashed converts a YYYYMMDD date to YYYY-MM-DD. Input in any other
// shape is returned unchanged.
func DateDashed(date string) string {
	if len(date) == 8 && isDigits(date) {
		return date[:4] + "-" + date[4:6] + "-" + date[6:8]
	}
	return date
}
