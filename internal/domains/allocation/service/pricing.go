package service

import (
	"courtside/internal/domains/allocation/model"
	courtModel "courtside/internal/domains/court/model"
	slotModel "courtside/internal/domains/timeslot/model"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
)

// ErrMissingReference means an assignment names a court or slot that was not loaded.
var ErrMissingReference = errors.New("assignment references an unknown court or time slot")

// Price computes one line per assigned slot, ordered by slot id. Line amounts keep
// full precision and only the total is rounded half-up to precision decimals.
func Price(assignment model.Assignment, slots map[int64]slotModel.TimeSlot, courts map[int64]courtModel.Court, precision int) (model.Quote, error) {
	slotIDs := slices.Sorted(maps.Keys(assignment))
	quote := model.Quote{Lines: make([]model.Line, 0, len(slotIDs))}

	var total float64

	for _, slotID := range slotIDs {
		courtID := assignment[slotID]

		slot, ok := slots[slotID]
		if !ok {
			return model.Quote{}, fmt.Errorf("%w: time slot %d", ErrMissingReference, slotID)
		}

		court, ok := courts[courtID]
		if !ok {
			return model.Quote{}, fmt.Errorf("%w: court %d", ErrMissingReference, courtID)
		}

		start, end, err := slot.Window()
		if err != nil {
			return model.Quote{}, fmt.Errorf("failed to price time slot %d: %w", slotID, err)
		}

		hours := (end - start).Hours()
		amount := LineAmount(court.HourlyPrice, hours, slot.Discount)

		quote.Lines = append(quote.Lines, model.Line{
			SlotID:      slotID,
			CourtID:     courtID,
			CourtName:   court.Name,
			StartTime:   slotModel.FormatClock(start),
			EndTime:     slotModel.FormatClock(end),
			Hours:       hours,
			HourlyPrice: court.HourlyPrice,
			Discount:    slot.Discount,
			Amount:      amount,
		})

		total += amount
	}

	quote.Total = RoundHalfUp(total, precision)

	return quote, nil
}

// LineAmount is rate x hours x (1 - discount/100).
func LineAmount(hourlyRate, hours, discountPercent float64) float64 {
	return hourlyRate * hours * (1 - discountPercent/100)
}

// RoundHalfUp rounds a non-negative amount to precision decimals. The scaled value is
// first snapped to 1e-6 so binary noise such as 10.005 -> 10.00499.. does not round down.
func RoundHalfUp(value float64, precision int) float64 {
	scale := math.Pow10(precision)
	scaled := math.Round(value*scale*1e6) / 1e6

	return math.Floor(scaled+0.5) / scale
}
