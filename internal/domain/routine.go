package domain

import (
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SlotsPerDay is the fixed number of study slots shown for each day.
const SlotsPerDay = 4

// Days lists the schedule keys in display order.
var Days = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

var slotTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// RoutineSlot is one (time, course) entry. Both may be empty.
type RoutineSlot struct {
	Time     string  `bson:"time" json:"time"`
	CourseID *string `bson:"courseId" json:"courseId"` // nil for an empty slot
}

// Schedule maps a day name to its ordered slots.
type Schedule map[string][]RoutineSlot

// WeeklyRoutine is the single per-user routine document.
type WeeklyRoutine struct {
	UserID    primitive.ObjectID `bson:"_id" json:"userId"`
	Schedule  Schedule           `bson:"schedule" json:"schedule"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewEmptySchedule returns 7 days of SlotsPerDay empty slots.
func NewEmptySchedule() Schedule {
	s := make(Schedule, len(Days))
	for _, day := range Days {
		s[day] = make([]RoutineSlot, SlotsPerDay)
	}
	return s
}

// NormalizeSchedule pads or truncates every day to SlotsPerDay and fills in missing days.
// Unknown day keys are dropped.
func NormalizeSchedule(in Schedule) Schedule {
	out := NewEmptySchedule()
	for _, day := range Days {
		slots, ok := in[day]
		if !ok {
			continue
		}
		n := copy(out[day], slots)
		for i := 0; i < n; i++ {
			if c := out[day][i].CourseID; c != nil && *c == "" {
				out[day][i].CourseID = nil
			}
		}
	}
	return out
}

// ValidateSchedule rejects unknown days and malformed slot times.
func ValidateSchedule(s Schedule) error {
	for day, slots := range s {
		if !isDay(day) {
			return fmt.Errorf("unknown day %q", day)
		}
		for i, slot := range slots {
			if slot.Time != "" && !slotTimePattern.MatchString(slot.Time) {
				return fmt.Errorf("%s slot %d: time %q must be HH:MM", day, i+1, slot.Time)
			}
		}
	}
	return nil
}

func isDay(day string) bool {
	for _, d := range Days {
		if d == day {
			return true
		}
	}
	return false
}
