// Package program defines the kids and youth programs and the age bands that
// route a child to one of them.
package program

import (
	"time"

	"sanctuary/internal/domain/failure"
)

// Program identifies one kids/youth program.
type Program string

// Program constants
const (
	Daycare Program = "daycare"
	Youth   Program = "youth"
	Teen    Program = "teen"
	// None marks an age outside every band.
	None Program = ""
)

// All lists programs in dashboard order.
var All = []Program{Daycare, Youth, Teen}

// Age band limits, in completed years unless noted.
const (
	MinAgeMonths = 3
	DaycareUnder = 10
	YouthUnder   = 16
	TeenMin      = 16
	TeenMax      = 21
)

// Domain errors
var (
	ErrUnknownProgram = failure.Validation("program must be daycare, youth, or teen")
)

// Parse returns the Program named by s.
// PRE: none
// POST: Returns ErrUnknownProgram for anything but daycare, youth, teen
func Parse(s string) (Program, error) {
	p := Program(s)
	if !p.Valid() {
		return None, ErrUnknownProgram
	}
	return p, nil
}

// Valid reports whether p is a known program.
func (p Program) Valid() bool {
	switch p {
	case Daycare, Youth, Teen:
		return true
	}
	return false
}

// String returns the program name.
func (p Program) String() string {
	return string(p)
}

// IssuesPickupCode reports whether children checked in to p receive a pickup
// code. Daycare always does; youth only when youthCodes is on; teens
// release themselves.
func (p Program) IssuesPickupCode(youthCodes bool) bool {
	switch p {
	case Daycare:
		return true
	case Youth:
		return youthCodes
	}
	return false
}

// AgeOn returns the number of completed years between dob and day.
// PRE: dob is not after day
// POST: Returns 0 when dob is after day
func AgeOn(dob, day time.Time) int {
	if dob.After(day) {
		return 0
	}
	years := day.Year() - dob.Year()
	if day.Month() < dob.Month() || (day.Month() == dob.Month() && day.Day() < dob.Day()) {
		years--
	}
	return years
}

// EligibleOn returns the program a person born on dob belongs to on day.
// Under 3 months: none; under 10: daycare; under 16: youth; up to 21: teen.
func EligibleOn(dob, day time.Time) Program {
	if dob.IsZero() || day.Before(dob.AddDate(0, MinAgeMonths, 0)) {
		return None
	}
	switch age := AgeOn(dob, day); {
	case age < DaycareUnder:
		return Daycare
	case age < YouthUnder:
		return Youth
	case age <= TeenMax:
		return Teen
	}
	return None
}
