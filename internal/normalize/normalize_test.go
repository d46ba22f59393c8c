package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTime(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "Already canonical",
			raw:      "19:00",
			expected: "19:00",
		},
		{
			name:     "Single digit hour",
			raw:      "9:30",
			expected: "09:30",
		},
		{
			name:     "Hour only with suffix",
			raw:      "9시",
			expected: "09:00",
		},
		{
			name:     "Compact digits",
			raw:      "1930",
			expected: "19:30",
		},
		{
			name:     "Time embedded in longer text",
			raw:      "오후 20:00 ~ 21:00",
			expected: "20:00",
		},
		{
			name:     "No time pattern returns input unchanged",
			raw:      "대관 안내",
			expected: "대관 안내",
		},
		{
			name:     "Empty input",
			raw:      "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Time(tc.raw))
		})
	}
}

// Time must be idempotent for any input that contains a time pattern,
// since the time-window filter re-derives the canonical form.
func TestTimeIdempotent(t *testing.T) {
	inputs := []string{"19:00", "9:30", "9시", "1930", "7", "오후 20:00"}
	for _, raw := range inputs {
		once := Time(raw)
		assert.Equal(t, once, Time(once), "Time(Time(%q))", raw)
	}
}

func TestCanonicalTime(t *testing.T) {
	got, ok := CanonicalTime("19시 00분")
	assert.True(t, ok)
	assert.Equal(t, "19:00", got)

	_, ok = CanonicalTime("미정")
	assert.False(t, ok)
}

func TestFee(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "Amount with separator and unit",
			raw:      "10,000원",
			expected: "10000",
		},
		{
			name:     "Plain digits",
			raw:      "5000",
			expected: "5000",
		},
		{
			name:     "Unavailable marker",
			raw:      "예약불가",
			expected: FeeUnavailable,
		},
		{
			name:     "Unavailable marker wins over digits",
			raw:      "10,000원 (예약불가)",
			expected: FeeUnavailable,
		},
		{
			name:     "Short marker",
			raw:      "이용 불가",
			expected: FeeUnavailable,
		},
		{
			name:     "No digits and no marker returns input unchanged",
			raw:      "무료",
			expected: "무료",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Fee(tc.raw))
		})
	}
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, "20251103", DateKey("2025-11-03"))
	assert.Equal(t, "20251103", DateKey("20251103"))
}

func TestDateDashed(t *testing.T) {
	assert.Equal(t, "2025-11-03", DateDashed("20251103"))
	assert.Equal(t, "2025-11-03", DateDashed("2025-11-03"))
	assert.Equal(t, "not-a-date", DateDashed("not-a-date"))
}
