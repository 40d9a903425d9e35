package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	// 01:30 UTC is still the previous day at UTC-3.
	c := Fixed(time.Date(2024, 6, 11, 1, 30, 0, 0, time.UTC))

	today := Today(c, loc)

	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, loc), today)
}
