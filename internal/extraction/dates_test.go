package extraction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"claimflow/internal/extraction"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-04-10", "2024-04-10"},
		{"2024-4-9", "2024-04-09"},
		{"04/10/2024", "2024-04-10"},
		{"4-10-2024", "2024-04-10"},
		{"25/12/2024", "2024-12-25"},
		{"2024/04/10", "2024-04-10"},
		{"April 10, 2024", "2024-04-10"},
		{"Apr 10, 2024", "2024-04-10"},
		{"10 April 2024", "2024-04-10"},
		{"2024-04-10T09:30:00Z", "2024-04-10"},
		{"04/10/24", "2024-04-10"},
		{"not-a-date", "not-a-date"},
		{"", ""},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, extraction.NormalizeDate(tc.in))
		})
	}
}

func TestNormalizeDate_AmbiguousIsMonthFirst(t *testing.T) {
	assert.Equal(t, "2024-03-04", extraction.NormalizeDate("03/04/2024"))
}
