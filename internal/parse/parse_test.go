package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdering(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected []OrderTerm
	}{
		{
			name:     "single ascending",
			raw:      "asset_tag",
			expected: []OrderTerm{{Field: "asset_tag"}},
		},
		{
			name:     "mixed directions",
			raw:      "status,-created_date",
			expected: []OrderTerm{{Field: "status"}, {Field: "created_date", Desc: true}},
		},
		{
			name:     "spaces and empty entries",
			raw:      " due_date , , -department ,",
			expected: []OrderTerm{{Field: "due_date"}, {Field: "department", Desc: true}},
		},
		{
			name:     "bare dash dropped",
			raw:      "-,status",
			expected: []OrderTerm{{Field: "status"}},
		},
		{
			name:     "empty",
			raw:      "",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Ordering(tc.raw))
		})
	}
}

func TestSearchTerms(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected []string
	}{
		{name: "one word", raw: "dell", expected: []string{"dell"}},
		{name: "whitespace", raw: "  dell   latitude ", expected: []string{"dell", "latitude"}},
		{name: "commas", raw: "dell,PAT-001", expected: []string{"dell", "PAT-001"}},
		{name: "blank", raw: "   ", expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SearchTerms(tc.raw))
		})
	}
}

func TestDate(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  time.Time
		expectErr bool
	}{
		{name: "valid", raw: "2024-03-15", expected: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{name: "surrounding spaces", raw: " 2024-12-01 ", expected: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)},
		{name: "datetime rejected", raw: "2024-03-15T10:00:00Z", expectErr: true},
		{name: "day out of range", raw: "2024-02-30", expectErr: true},
		{name: "brazilian format", raw: "15/03/2024", expectErr: true},
		{name: "empty", raw: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Date(tc.raw)
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrDateFormat)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(got))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestDay(t *testing.T) {
	sp, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// 01:30 UTC on the 16th is still the 15th in São Paulo.
	ts := time.Date(2024, 3, 16, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Day(ts, sp))
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), Day(ts, nil))
}
