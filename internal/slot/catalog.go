// Package slot defines the fixed set of bookable time labels and the rule
// for deriving per-date availability from existing bookings.
package slot

import (
	"sort"
	"time"

	"github.com/barberhq/booking-api/internal/model"
)

// TimeLayout is the clock format of a slot label, e.g. "9:00 AM".
const TimeLayout = "3:04 PM"

// Catalog is an ordered list of bookable time labels for a single day.
// It is process-wide, not configurable per shop.
type Catalog []string

// Default is the daily schedule: seven hourly slots from 9 AM to 4 PM,
// skipping the 12 PM lunch hour.
func Default() Catalog {
	return Catalog{
		"9:00 AM",
		"10:00 AM",
		"11:00 AM",
		"1:00 PM",
		"2:00 PM",
		"3:00 PM",
		"4:00 PM",
	}
}

// Contains reports whether the label belongs to the catalog.
func (c Catalog) Contains(label string) bool {
	for _, s := range c {
		if s == label {
			return true
		}
	}
	return false
}

// Availability maps every catalog slot to its booked state given the
// appointments already on the books for one shop and date. Only active
// (pending/confirmed) appointments occupy a slot. The result is always
// chronological: labels are re-parsed as times of day and sorted
// ascending, so unsorted upstream data cannot leak insertion order.
func (c Catalog) Availability(appointments []*model.Appointment) []model.SlotState {
	occupied := make(map[string]bool, len(appointments))
	for _, apt := range appointments {
		if apt.Status.IsActive() {
			occupied[apt.TimeSlot] = true
		}
	}

	states := make([]model.SlotState, 0, len(c))
	for _, label := range c {
		states = append(states, model.SlotState{
			TimeSlot: label,
			IsBooked: occupied[label],
		})
	}

	sort.SliceStable(states, func(i, j int) bool {
		return slotMinute(states[i].TimeSlot) < slotMinute(states[j].TimeSlot)
	})
	return states
}

// Open returns only the labels still available for booking.
func (c Catalog) Open(appointments []*model.Appointment) []string {
	states := c.Availability(appointments)
	open := make([]string, 0, len(states))
	for _, s := range states {
		if !s.IsBooked {
			open = append(open, s.TimeSlot)
		}
	}
	return open
}

// AllOpen is the fail-open fallback: when the booked-appointment query
// fails, availability display shows the full catalog rather than
// blanking the screen. Booking itself stays fail-closed.
func (c Catalog) AllOpen() []model.SlotState {
	states := make([]model.SlotState, 0, len(c))
	for _, label := range c {
		states = append(states, model.SlotState{TimeSlot: label})
	}
	sort.SliceStable(states, func(i, j int) bool {
		return slotMinute(states[i].TimeSlot) < slotMinute(states[j].TimeSlot)
	})
	return states
}

// slotMinute parses a label as a time of day and returns minutes since
// midnight. Unparseable labels sort last, preserving their relative order.
func slotMinute(label string) int {
	t, err := time.Parse(TimeLayout, label)
	if err != nil {
		return 24 * 60
	}
	return t.Hour()*60 + t.Minute()
}
