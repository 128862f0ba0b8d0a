package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, minutes)
	assert.Equal(t, "09:30", FormatClock(minutes))

	for _, bad := range []string{"9:30", "24:00", "12:60", "ab:cd", "", "12-00"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestSessionIntervalRejectsNonPositiveDuration(t *testing.T) {
	_, err := SessionInterval("09:00", 0)
	assert.Error(t, err)
	_, err = SessionInterval("09:00", -30)
	assert.Error(t, err)

	span, err := SessionInterval("09:00", 45)
	require.NoError(t, err)
	assert.Equal(t, Interval{Start: 540, End: 585}, span)
}

func TestIntervalOverlapIsHalfOpen(t *testing.T) {
	a := Interval{Start: 540, End: 600}
	assert.False(t, a.Overlaps(Interval{Start: 600, End: 660}))
	assert.True(t, a.Overlaps(Interval{Start: 570, End: 600}))
	assert.Equal(t, 0, a.GapTo(Interval{Start: 600, End: 660}))
	assert.Equal(t, 5, a.GapTo(Interval{Start: 605, End: 660}))
	assert.Equal(t, 20, a.GapTo(Interval{Start: 480, End: 520}))
	assert.Equal(t, -1, a.GapTo(Interval{Start: 590, End: 620}))
}

func TestGenerateSlots(t *testing.T) {
	slots, err := GenerateSlots("08:00", "10:00", 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "08:30", "09:00", "09:30"}, slots)

	_, err = GenerateSlots("10:00", "08:00", 30)
	assert.Error(t, err)
	_, err = GenerateSlots("08:00", "10:00", 0)
	assert.Error(t, err)
}
