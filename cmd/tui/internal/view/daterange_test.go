package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRangeDates(t *testing.T) {
	now := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

	type testCase struct {
		name     string
		r        Range
		from, to time.Time
	}

	tests := []testCase{
		{
			name: "ThisMonth",
			r:    RangeThisMonth,
			from: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "LastMonth",
			r:    RangeLastMonth,
			from: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := rangeDates(tt.r, now)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
		})
	}
}

func TestSplitPaths(t *testing.T) {
	assert.Equal(t, []string{"a.xlsx", "b.csv"}, splitPaths(" a.xlsx, ,b.csv "))
	assert.Nil(t, splitPaths(""))
}
