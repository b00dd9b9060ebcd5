package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Window
	}{
		{"-3M:2M", Window{Offset{-3, Months}, Offset{2, Months}}},
		{":3M", Window{Offset{0, Days}, Offset{3, Months}}},
		{"-1Y:", Window{Offset{-1, Years}, Offset{0, Days}}},
		{"10:-5", Window{Offset{-5, Days}, Offset{10, Days}}},
		{"2M:-3d", Window{Offset{-3, Days}, Offset{2, Months}}},
		{"-3M:10d", Window{Offset{-3, Months}, Offset{10, Days}}},
		{":", Window{Offset{0, Days}, Offset{0, Days}}},
		{" -2d : +4d ", Window{Offset{-2, Days}, Offset{4, Days}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSortsByRawNumberNotDuration(t *testing.T) {
	// 5d is numerically larger than 1M even though one month is longer.
	w, err := Parse("5d:1M")
	require.NoError(t, err)
	assert.Equal(t, Offset{1, Months}, w.Start)
	assert.Equal(t, Offset{5, Days}, w.End)
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"", "3M", "1:2:3", "abc:1", "1W:2", "1.5:2", "M:2"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.Error(t, err)
		})
	}
}

func TestContains(t *testing.T) {
	origin := day(2024, time.March, 15)

	w, err := Parse(":3M")
	require.NoError(t, err)
	assert.True(t, w.Contains(origin, day(2024, time.May, 15)), "2 months ahead")
	assert.False(t, w.Contains(origin, day(2024, time.July, 15)), "4 months ahead")
	assert.True(t, w.Contains(origin, origin), "origin is inclusive")
	assert.True(t, w.Contains(origin, day(2024, time.June, 15)), "end is inclusive")
	assert.False(t, w.Contains(origin, day(2024, time.March, 14)), "before origin")

	w, err = Parse("-18Y:-16Y")
	require.NoError(t, err)
	assert.True(t, w.Contains(origin, day(2007, time.January, 1)))
	assert.False(t, w.Contains(origin, day(2009, time.January, 1)))
}

func TestContainsIgnoresTimeOfDay(t *testing.T) {
	w, err := Parse("0:0")
	require.NoError(t, err)
	origin := time.Date(2024, time.March, 15, 23, 59, 0, 0, time.UTC)
	assert.True(t, w.Contains(origin, day(2024, time.March, 15)))
}

func TestAddMonthsClamps(t *testing.T) {
	assert.Equal(t, day(2024, time.February, 29), AddMonths(day(2024, time.January, 31), 1))
	assert.Equal(t, day(2023, time.February, 28), AddMonths(day(2024, time.February, 29), -12))
	assert.Equal(t, day(2023, time.November, 30), AddMonths(day(2024, time.March, 31), -4))
	assert.Equal(t, day(2025, time.January, 15), AddMonths(day(2024, time.October, 15), 3))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("20240229")
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.February, 29), got)

	for _, bad := range []string{"2024-02-29", "20230229", "2024022", "20241301", "abcdefgh"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}
