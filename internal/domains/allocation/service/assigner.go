package service

import (
	"cmp"
	"courtside/internal/domains/allocation/model"
	"courtside/shared/failure"
	"fmt"
	"slices"
)

// Assign picks one court per slot. Slots are handled in ascending id order and each
// takes the first listed court that is free for it and not already used by an
// overlapping slot of the same request. The result is all or nothing.
func Assign(slots []model.Slot, courts []model.CourtAvailability) (model.Assignment, error) {
	return assign(slots, courts, func(slot model.Slot) error {
		return failure.Conflict(fmt.Sprintf("insufficient availability: no court is free for time slot %d", slot.ID)) //nolint:wrapcheck
	})
}

// AssignSingle pins every slot to court.
func AssignSingle(slots []model.Slot, court model.CourtAvailability) (model.Assignment, error) {
	return assign(slots, []model.CourtAvailability{court}, func(slot model.Slot) error {
		return failure.Conflict(fmt.Sprintf("court %d is not available for time slot %d", court.CourtID, slot.ID)) //nolint:wrapcheck
	})
}

func assign(slots []model.Slot, courts []model.CourtAvailability, unavailable func(model.Slot) error) (model.Assignment, error) {
	ordered := slices.Clone(slots)
	slices.SortFunc(ordered, func(a, b model.Slot) int {
		return cmp.Compare(a.ID, b.ID)
	})

	assignment := make(model.Assignment, len(ordered))
	used := make(map[int64][]model.Slot, len(courts))

	for _, slot := range ordered {
		if _, dup := assignment[slot.ID]; dup {
			return nil, failure.BadRequestFromString(fmt.Sprintf("time slot %d requested more than once", slot.ID)) //nolint:wrapcheck
		}

		courtID, ok := firstFreeCourt(slot, courts, used)
		if !ok {
			return nil, unavailable(slot)
		}

		assignment[slot.ID] = courtID
		used[courtID] = append(used[courtID], slot)
	}

	return assignment, nil
}

func firstFreeCourt(slot model.Slot, courts []model.CourtAvailability, used map[int64][]model.Slot) (int64, bool) {
	for _, court := range courts {
		if !court.IsFree(slot.ID) {
			continue
		}

		clash := slices.ContainsFunc(used[court.CourtID], slot.Overlaps)
		if clash {
			continue
		}

		return court.CourtID, true
	}

	return 0, false
}
