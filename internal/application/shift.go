package application

import (
	"fmt"
	"time"
)

// ShiftType is an enumerated shift category defining nominal working hours.
type ShiftType string

const (
	ShiftMorning   ShiftType = "MORNING"
	ShiftAfternoon ShiftType = "AFTERNOON"
	ShiftClosing   ShiftType = "CLOSING"
	ShiftOff       ShiftType = "OFF"
	ShiftVacation  ShiftType = "VACATION"
)

// ClockTime is a wall-clock time of day without a date.
type ClockTime struct {
	Hour   int
	Minute int
}

// String formats the time as HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

type shiftHours struct {
	start ClockTime
	end   ClockTime
}

// Off and vacation share the 00:00 sentinel, so any clock-in on such a shift
// is counted late.
var shiftHoursTable = map[ShiftType]shiftHours{
	ShiftMorning:   {start: ClockTime{Hour: 7}, end: ClockTime{Hour: 15}},
	ShiftAfternoon: {start: ClockTime{Hour: 13}, end: ClockTime{Hour: 21}},
	ShiftClosing:   {start: ClockTime{Hour: 15}, end: ClockTime{Hour: 23}},
	ShiftOff:       {},
	ShiftVacation:  {},
}

// Valid reports whether the value is a known shift type.
func (s ShiftType) Valid() bool {
	_, ok := shiftHoursTable[s]
	return ok
}

// IsWorking reports whether the shift carries working hours.
func (s ShiftType) IsWorking() bool {
	return s.Valid() && s != ShiftOff && s != ShiftVacation
}

// Hours returns the nominal start and end of the shift.
func (s ShiftType) Hours() (start, end ClockTime) {
	hours := shiftHoursTable[s]
	return hours.start, hours.end
}

// NominalStartOn applies the shift's configured start time to the calendar
// day of the reference instant, in the reference's location.
func (s ShiftType) NominalStartOn(reference time.Time) time.Time {
	start, _ := s.Hours()
	return time.Date(reference.Year(), reference.Month(), reference.Day(), start.Hour, start.Minute, 0, 0, reference.Location())
}

// ShiftTypes lists every known shift type in display order.
func ShiftTypes() []ShiftType {
	return []ShiftType{ShiftMorning, ShiftAfternoon, ShiftClosing, ShiftOff, ShiftVacation}
}
