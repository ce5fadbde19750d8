package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkDayOf_TimezoneBoundary(t *testing.T) {
	bangkok, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)

	t.Run("instant before local midnight belongs to previous day", func(t *testing.T) {
		// 2024-01-10T16:30:00Z is 2024-01-10 23:30 in Bangkok (UTC+7).
		instant := time.Date(2024, 1, 10, 16, 30, 0, 0, time.UTC)
		assert.Equal(t, "2024-01-10", WorkDayOf(instant, bangkok).String())
	})

	t.Run("instant after local midnight belongs to next day", func(t *testing.T) {
		// 2024-01-10T17:30:00Z is 2024-01-11 00:30 in Bangkok.
		instant := time.Date(2024, 1, 10, 17, 30, 0, 0, time.UTC)
		assert.Equal(t, "2024-01-11", WorkDayOf(instant, bangkok).String())
	})

	t.Run("same instant maps to different work days per zone", func(t *testing.T) {
		instant := time.Date(2024, 1, 10, 17, 30, 0, 0, time.UTC)
		assert.NotEqual(t, WorkDayOf(instant, time.UTC), WorkDayOf(instant, bangkok))
	})
}

func TestWorkDay_Ordering(t *testing.T) {
	earlier, err := ParseWorkDay("2024-01-09")
	require.NoError(t, err)
	later, err := ParseWorkDay("2024-01-10")
	require.NoError(t, err)

	assert.True(t, earlier.Before(later))
	assert.True(t, later.After(earlier))
	assert.False(t, earlier.Before(earlier))
	assert.False(t, earlier.After(earlier))
}

func TestWorkDay_AddDays(t *testing.T) {
	day, err := ParseWorkDay("2024-03-01")
	require.NoError(t, err)

	t.Run("crosses month boundary backwards", func(t *testing.T) {
		// 2024 is a leap year.
		assert.Equal(t, "2024-02-29", day.AddDays(-1).String())
	})

	t.Run("window start for a 14 day history", func(t *testing.T) {
		assert.Equal(t, "2024-02-17", day.AddDays(-13).String())
	})
}

func TestWorkDay_JSON(t *testing.T) {
	day, err := ParseWorkDay("2024-01-10")
	require.NoError(t, err)

	data, err := json.Marshal(day)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-10"`, string(data))

	var decoded WorkDay
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, day, decoded)

	assert.Error(t, json.Unmarshal([]byte(`"10/01/2024"`), &decoded))
}

func TestParseWorkDay_RejectsGarbage(t *testing.T) {
	_, err := ParseWorkDay("not-a-date")
	require.Error(t, err)
}
