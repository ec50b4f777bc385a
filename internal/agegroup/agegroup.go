// Package agegroup classifies a child's age into Toronto daycare licensing
// brackets and maps each bracket to its dataset capacity column.
package agegroup

import (
	"fmt"
	"time"
)

// Bracket is one of the five licensing age brackets.
type Bracket int

const (
	Infant Bracket = iota
	Toddler
	Preschool
	Kindergarten
	SchoolAge
)

// Month boundaries (inclusive lower, exclusive upper). SchoolAge is open-ended.
const (
	toddlerMinMonths      = 18
	preschoolMinMonths    = 30
	kindergartenMinMonths = 48
	schoolAgeMinMonths    = 72
)

// Label returns the human-readable bracket label.
func (b Bracket) Label() string {
	switch b {
	case Infant:
		return "Infant (0-18 months)"
	case Toddler:
		return "Toddler (18-30 months)"
	case Preschool:
		return "Preschool (30 months - 4 years)"
	case Kindergarten:
		return "Kindergarten (4-5 years)"
	case SchoolAge:
		return "School Age (6+ years)"
	default:
		return "Unknown"
	}
}

// Column returns the dataset capacity column for the bracket.
func (b Bracket) Column() string {
	switch b {
	case Infant:
		return "IGSPACE"
	case Toddler:
		return "TGSPACE"
	case Preschool:
		return "PGSPACE"
	case Kindergarten:
		return "KGSPACE"
	case SchoolAge:
		return "SGSPACE"
	default:
		return ""
	}
}

// MinMonths returns the inclusive lower month bound of the bracket.
func (b Bracket) MinMonths() int {
	switch b {
	case Toddler:
		return toddlerMinMonths
	case Preschool:
		return preschoolMinMonths
	case Kindergarten:
		return kindergartenMinMonths
	case SchoolAge:
		return schoolAgeMinMonths
	default:
		return 0
	}
}

// MonthsBetween returns the number of whole calendar months elapsed from
// birth to ref. Partial months are truncated: the count only advances once
// the day-of-month of birth has been reached.
func MonthsBetween(birth, ref time.Time) int {
	months := (ref.Year()-birth.Year())*12 + int(ref.Month()) - int(birth.Month())
	if ref.Day() < birth.Day() {
		months--
	}
	return months
}

// ForMonths returns the bracket whose half-open month range contains m.
// Rules:
//   - infant: [0, 18)
//   - toddler: [18, 30)
//   - preschool: [30, 48)
//   - kindergarten: [48, 72)
//   - school_age: [72, inf)
//
// Negative input falls back to Infant; callers validate that the birth date
// is not in the future before reaching this.
func ForMonths(m int) Bracket {
	switch {
	case m >= schoolAgeMinMonths:
		return SchoolAge
	case m >= kindergartenMinMonths:
		return Kindergarten
	case m >= preschoolMinMonths:
		return Preschool
	case m >= toddlerMinMonths:
		return Toddler
	default:
		return Infant
	}
}

// ForBirthDate classifies a birth date against a reference date.
func ForBirthDate(birth, ref time.Time) Bracket {
	return ForMonths(MonthsBetween(birth, ref))
}

// AgeDisplay formats an age in months for presentation.
func AgeDisplay(months int) string {
	if months >= 12 {
		return fmt.Sprintf("%d years, %d months", months/12, months%12)
	}
	return fmt.Sprintf("%d months", months)
}
