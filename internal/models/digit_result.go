package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Shift is one of the three daily draw slots.
type Shift string

const (
	ShiftMorning Shift = "morning"
	ShiftDay     Shift = "day"
	ShiftEvening Shift = "evening"
)

// Shifts lists every shift in display order (MOR | DAY | EVN).
var Shifts = []Shift{ShiftMorning, ShiftDay, ShiftEvening}

// ParseShift accepts "morning", "day" or "evening" in any case.
func ParseShift(s string) (Shift, bool) {
	switch Shift(strings.ToLower(strings.TrimSpace(s))) {
	case ShiftMorning:
		return ShiftMorning, true
	case ShiftDay:
		return ShiftDay, true
	case ShiftEvening:
		return ShiftEvening, true
	}
	return "", false
}

// Column is the digit_results column holding this shift.
func (s Shift) Column() string {
	switch s {
	case ShiftMorning:
		return "morning_digit"
	case ShiftDay:
		return "day_digit"
	case ShiftEvening:
		return "evening_digit"
	}
	return ""
}

// Label is the upper-case name used in user-facing messages.
func (s Shift) Label() string {
	return strings.ToUpper(string(s))
}

// DigitResult corresponds to a row of the digit_results table: one calendar day
// with three independently recorded shift digits.
type DigitResult struct {
	ID           string    `json:"id"`
	ResultDate   string    `json:"resultDate"` // YYYY-MM-DD
	MorningDigit *int      `json:"morningDigit"`
	DayDigit     *int      `json:"dayDigit"`
	EveningDigit *int      `json:"eveningDigit"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Digit returns the stored digit for s, nil when not yet recorded.
func (r *DigitResult) Digit(s Shift) *int {
	switch s {
	case ShiftMorning:
		return r.MorningDigit
	case ShiftDay:
		return r.DayDigit
	case ShiftEvening:
		return r.EveningDigit
	}
	return nil
}

// SetDigit records d for shift s, leaving the other shifts alone.
func (r *DigitResult) SetDigit(s Shift, d int) {
	v := d
	switch s {
	case ShiftMorning:
		r.MorningDigit = &v
	case ShiftDay:
		r.DayDigit = &v
	case ShiftEvening:
		r.EveningDigit = &v
	}
}

// Complete reports whether all three shifts have a digit.
func (r *DigitResult) Complete() bool {
	return r.MorningDigit != nil && r.DayDigit != nil && r.EveningDigit != nil
}

// DigitResultRequest is the admin payload for saving a single shift.
// Digit stays textual so that parsing failures surface as validation errors.
type DigitResultRequest struct {
	Date  string     `json:"date"`
	Shift string     `json:"shift"`
	Digit FlexString `json:"digit"`
}

// DigitResultResponse is returned after a successful shift save.
type DigitResultResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Created bool         `json:"created"`
	Record  *DigitResult `json:"record,omitempty"`
}

// FlexString unmarshals from either a JSON string or a bare JSON number.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}
