package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlots(t *testing.T) {
	s := testSettings()

	t.Run("first slot is prep time rounded up to a boundary", func(t *testing.T) {
		// 18:05 + 30min prep = 18:35, rounded up to 18:45
		now := time.Date(2026, 3, 2, 18, 5, 0, 0, time.UTC)
		slots := GenerateSlots(now, s)

		assert.NotEmpty(t, slots)
		assert.Equal(t, time.Date(2026, 3, 2, 18, 45, 0, 0, time.UTC), slots[0].Start)
		assert.Equal(t, time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC), slots[0].End)
		assert.Equal(t, "18:45 - 19:00", slots[0].Label)
	})

	t.Run("prep landing exactly on a boundary is kept", func(t *testing.T) {
		// 18:00 + 30min = 18:30, already aligned
		now := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
		slots := GenerateSlots(now, s)
		assert.Equal(t, time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC), slots[0].Start)
	})

	t.Run("before opening starts at opening", func(t *testing.T) {
		now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
		slots := GenerateSlots(now, s)
		assert.Equal(t, time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC), slots[0].Start)
	})

	t.Run("last slot ends at closing", func(t *testing.T) {
		now := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
		slots := GenerateSlots(now, s)
		last := slots[len(slots)-1]
		assert.Equal(t, time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC), last.End)
	})

	t.Run("too close to closing yields nothing", func(t *testing.T) {
		now := time.Date(2026, 3, 2, 23, 20, 0, 0, time.UTC)
		slots := GenerateSlots(now, s)
		assert.Empty(t, slots)
	})

	t.Run("closing past midnight rolls to the next day", func(t *testing.T) {
		late := s
		late.ClosingTime = "01:00"

		now := time.Date(2026, 3, 2, 23, 40, 0, 0, time.UTC)
		slots := GenerateSlots(now, late)

		assert.NotEmpty(t, slots)
		assert.Equal(t, time.Date(2026, 3, 3, 0, 15, 0, 0, time.UTC), slots[0].Start)
		assert.Equal(t, time.Date(2026, 3, 3, 1, 0, 0, 0, time.UTC), slots[len(slots)-1].End)
	})

	t.Run("deterministic for a fixed clock", func(t *testing.T) {
		now := time.Date(2026, 3, 2, 18, 5, 0, 0, time.UTC)
		a := GenerateSlots(now, s)
		b := GenerateSlots(now, s)
		assert.Equal(t, a, b)
	})

	t.Run("no slot starts in the past", func(t *testing.T) {
		now := time.Date(2026, 3, 2, 20, 7, 0, 0, time.UTC)
		for _, slot := range GenerateSlots(now, s) {
			assert.True(t, slot.Start.After(now))
			assert.True(t, slot.Available)
		}
	})
}
