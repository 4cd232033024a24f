package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oakhurst-kitchen/ordering-backend/config"
)

// Slot is one bookable interval.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Label     string    `json:"label"`
	Available bool      `json:"available"`
}

// GenerateSlots produces the bookable intervals for "now": fixed-width
// steps starting at now plus the minimum preparation time, rounded up to
// the next slot boundary, until closing time. A closing time earlier than
// the opening time rolls into the next calendar day. Deterministic for a
// fixed now; slots in the past are never emitted.
func GenerateSlots(now time.Time, s config.Settings) []Slot {
	openH, openM := parseClock(s.OpeningTime)
	closeH, closeM := parseClock(s.ClosingTime)

	open := time.Date(now.Year(), now.Month(), now.Day(), openH, openM, 0, 0, now.Location())
	closing := time.Date(now.Year(), now.Month(), now.Day(), closeH, closeM, 0, 0, now.Location())
	if !closing.After(open) {
		closing = closing.Add(24 * time.Hour)
	}

	step := time.Duration(s.SlotMinutes) * time.Minute
	earliest := now.Add(time.Duration(s.MinPrepMinutes) * time.Minute)
	if earliest.Before(open) {
		earliest = open
	}

	start := roundUpTo(earliest, step)

	var slots []Slot
	for !start.Add(step).After(closing) {
		end := start.Add(step)
		slots = append(slots, Slot{
			Start:     start,
			End:       end,
			Label:     fmt.Sprintf("%s - %s", start.Format("15:04"), end.Format("15:04")),
			Available: true,
		})
		start = end
	}
	return slots
}

// roundUpTo rounds t up to the next multiple of step since midnight.
func roundUpTo(t time.Time, step time.Duration) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	elapsed := t.Sub(midnight)
	rounded := (elapsed + step - 1) / step * step
	return midnight.Add(rounded)
}

func parseClock(v string) (hour, minute int) {
	parts := strings.SplitN(v, ":", 2)
	hour, _ = strconv.Atoi(parts[0])
	if len(parts) == 2 {
		minute, _ = strconv.Atoi(parts[1])
	}
	return hour, minute
}
