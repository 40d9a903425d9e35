package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	valid := map[string]TimeOfDay{
		"00:00": 0,
		"09:05": 9*60 + 5,
		"23:59": 23*60 + 59,
		"24:00": MinutesPerDay,
	}
	for raw, want := range valid {
		got, err := ParseTimeOfDay(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"+9:00", "09:+5", "-1:00", "09:-5", " 9:00", "9:00", "09:5", "0a:00", "24:01", "12:60", "12-30", ""} {
		_, err := ParseTimeOfDay(raw)
		assert.Error(t, err, raw)
	}
}

func TestTimeOfDayUnmarshalTextRejectsSigns(t *testing.T) {
	var tod TimeOfDay
	assert.Error(t, tod.UnmarshalText([]byte("+9:00")))
	require.NoError(t, tod.UnmarshalText([]byte("10:30")))
	assert.Equal(t, "10:30", tod.String())
}
