package appointment

import (
	"time"

	"github.com/aanand-mishra/student-logging/internal/config"
	"github.com/aanand-mishra/student-logging/internal/types"
)

// Hours is the bookable part of a day, as offsets from midnight. End is
// inclusive: with the defaults the last slot starts at 17:00.
type Hours struct {
	Start time.Duration
	End   time.Duration
	Step  time.Duration
}

// DefaultHours is 09:00–17:00 in 30-minute steps: 17 slots.
var DefaultHours = Hours{Start: 9 * time.Hour, End: 17 * time.Hour, Step: 30 * time.Minute}

// HoursFromConfig converts the schedule section of the config.
func HoursFromConfig(s config.Schedule) Hours {
	return Hours{Start: s.DayStart, End: s.DayEnd, Step: s.SlotLength}
}

// GenerateSlots returns every slot of date's working day that is not in
// booked, in ascending order.
//
// Slots are wall-clock times in date's location. A slot counts as booked
// when a booked time shows the same yyyy-MM-dd HH:mm there.
func GenerateSlots(date time.Time, h Hours, booked []time.Time) []time.Time {
	if h.Step <= 0 || h.End < h.Start {
		return nil
	}

	y, m, d := date.Date()
	var slots []time.Time
	for off := h.Start; off <= h.End; off += h.Step {
		// time.Date normalises the minute overflow, and building from
		// wall-clock fields keeps 09:00 at 09:00 on DST change days.
		t := time.Date(y, m, d, 0, int(off/time.Minute), 0, 0, date.Location())
		if !IsSlotTaken(t, booked) {
			slots = append(slots, t)
		}
	}
	return slots
}

// IsSlotTaken is a linear scan of booked for an exact-minute match.
func IsSlotTaken(slot time.Time, booked []time.Time) bool {
	key := slot.Format(types.SlotLayout)
	for _, b := range booked {
		if b.In(slot.Location()).Format(types.SlotLayout) == key {
			return true
		}
	}
	return false
}

// OnGrid reports whether t is exactly one of the day's slots.
func (h Hours) OnGrid(t time.Time) bool {
	if h.Step <= 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return false
	}
	off := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	if off < h.Start || off > h.End {
		return false
	}
	return (off-h.Start)%h.Step == 0
}

// sameDay truncates t to midnight in loc.
func sameDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
