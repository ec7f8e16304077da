package models

import "fmt"

// Mode is a payment tier of a competition.
type Mode string

const (
	ModeFull    Mode = "full"
	ModePartial Mode = "partial"
)

// Modes lists every tier the contributions and payments tables accept.
var Modes = []Mode{ModeFull, ModePartial}

func (m Mode) Valid() bool {
	return m == ModeFull || m == ModePartial
}

// ParseMode converts raw input into a Mode, rejecting anything outside the closed set.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("invalid mode %q (expected full or partial)", s)
	}
	return m, nil
}

// QualifierStatus is the review outcome of a qualifying video.
type QualifierStatus string

const (
	QualifierStatusQualified   QualifierStatus = "qualified"
	QualifierStatusUnqualified QualifierStatus = "unqualified"
)

func (s QualifierStatus) Valid() bool {
	return s == QualifierStatusQualified || s == QualifierStatusUnqualified
}

func ParseQualifierStatus(s string) (QualifierStatus, error) {
	st := QualifierStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid qualifier_status %q (expected qualified or unqualified)", s)
	}
	return st, nil
}

// ViewResult is the measurement unit of a recorded result.
type ViewResult string

const (
	ViewKilograms   ViewResult = "kg"
	ViewMeters      ViewResult = "meters"
	ViewMinutes     ViewResult = "min"
	ViewRepetitions ViewResult = "reps"
	ViewCalories    ViewResult = "cl"
)

var Views = []ViewResult{ViewKilograms, ViewMeters, ViewMinutes, ViewRepetitions, ViewCalories}

func (v ViewResult) Valid() bool {
	for _, known := range Views {
		if v == known {
			return true
		}
	}
	return false
}

func ParseViewResult(s string) (ViewResult, error) {
	v := ViewResult(s)
	if !v.Valid() {
		return "", fmt.Errorf("invalid view %q (expected one of kg, meters, min, reps, cl)", s)
	}
	return v, nil
}
