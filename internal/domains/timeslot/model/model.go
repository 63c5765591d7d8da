package model

import (
	"courtside/shared/model"
	"fmt"
	"time"
)

const (
	TableName  = "time_slots"
	EntityName = "time_slot"

	FieldID         = "id"
	FieldFacilityID = "facility_id"
	FieldStartTime  = "start_time"
	FieldEndTime    = "end_time"
	FieldDiscount   = "discount"
)

var clockLayouts = []string{"15:04:05", "15:04"}

// TimeSlot is a facility-wide daily window. Discount is a percentage in [0, 100].
type TimeSlot struct {
	ID         int64   `db:"id"`
	FacilityID int64   `db:"facility_id"`
	StartTime  string  `db:"start_time"`
	EndTime    string  `db:"end_time"`
	Discount   float64 `db:"discount"`
	model.Metadata
}

// Window returns the slot bounds as offsets from midnight.
func (t TimeSlot) Window() (start, end time.Duration, err error) {
	start, err = ParseClock(t.StartTime)
	if err != nil {
		return 0, 0, err
	}

	end, err = ParseClock(t.EndTime)
	if err != nil {
		return 0, 0, err
	}

	if end <= start {
		return 0, 0, fmt.Errorf("time slot %d ends before it starts", t.ID)
	}

	return start, end, nil
}

// Hours is the slot length in fractional hours.
func (t TimeSlot) Hours() (float64, error) {
	start, end, err := t.Window()
	if err != nil {
		return 0, err
	}

	return (end - start).Hours(), nil
}

// Label renders the window as "HH:MM-HH:MM".
func (t TimeSlot) Label() string {
	start, end, err := t.Window()
	if err != nil {
		return t.StartTime + "-" + t.EndTime
	}

	return FormatClock(start) + "-" + FormatClock(end)
}

func ParseClock(value string) (time.Duration, error) {
	for _, layout := range clockLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return time.Duration(parsed.Hour())*time.Hour +
				time.Duration(parsed.Minute())*time.Minute +
				time.Duration(parsed.Second())*time.Second, nil
		}
	}

	return 0, fmt.Errorf("invalid clock value %q", value)
}

func FormatClock(offset time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(offset.Hours()), int(offset.Minutes())%60)
}
