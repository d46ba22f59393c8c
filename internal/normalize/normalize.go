package normalize

import (
	"regexp"
	"strings"
)

// FeeUnavailable is the sentinel returned by Fee when the cell text marks the
// slot as not bookable rather than carrying an amount.
const FeeUnavailable = "UNAVAILABLE"

var (
	timeRe   = regexp.MustCompile(`(\d{1,2}):?(\d{2})?`)
	digitsRe = regexp.MustCompile(`\d+`)
)

// defaultUnavailableKeywords match the markers the facility page renders in
// the fee column when a slot cannot be reserved.
var defaultUnavailableKeywords = []string{"예약불가", "불가"}

// Time converts raw cell text into the canonical HH:MM form. The hour is
// zero-padded and missing minutes default to "00". Text without a time-like
// substring is returned unchanged; absence of a match is not an error.
func Time(raw string) string {
	m := timeRe.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	hour := m[1]
	if len(hour) == 1 {
		hour = "0" + hour
	}
	minute := m[2]
	if minute == "" {
		minute = "00"
	}
	return hour + ":" + minute
}

// CanonicalTime returns the canonical HH:MM form and whether a time pattern
// was found at all. Callers that must not fabricate a time use the second
// return value to keep the original text.
func CanonicalTime(raw string) (string, bool) {
	m := timeRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return Time(raw), true
}

// Fee normalizes raw fee text. An unavailable marker wins over any digits
// also present; otherwise all digit runs are concatenated ("10,000원" →
// "10000"). Text with neither is returned unchanged.
func Fee(raw string) string {
	return FeeWithKeywords(raw, defaultUnavailableKeywords)
}

// FeeWithKeywords is Fee with a caller-supplied unavailable-marker set.
func FeeWithKeywords(raw string, unavailableKeywords []string) string {
	for _, kw := range unavailableKeywords {
		if kw != "" && strings.Contains(raw, kw) {
			return FeeUnavailable
		}
	}
	runs := digitsRe.FindAllString(raw, -1)
	if len(runs) == 0 {
		return raw
	}
	return strings.Join(runs, "")
}
