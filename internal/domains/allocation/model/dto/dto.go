package dto

import (
	"courtside/internal/domains/allocation/model"
	"courtside/shared/constant"
	"courtside/shared/failure"
	"courtside/shared/timezone"
	"time"
)

type AvailabilityRequest struct {
	FacilityID int64  `json:"facility_id" validate:"required,gt=0"`
	CategoryID int64  `json:"category_id" validate:"required,gt=0"`
	Date       string `json:"date"        validate:"required,date"`
}

func (r AvailabilityRequest) ParseDate() (time.Time, error) {
	date, err := timezone.Parse(constant.DateOnlyFormat, r.Date)
	if err != nil {
		return time.Time{}, failure.BadRequestFromString("date must be formatted as YYYY-MM-DD")
	}

	return date, nil
}

type AvailabilityResponse struct {
	FacilityID int64                    `json:"facility_id"`
	CategoryID int64                    `json:"category_id"`
	Date       string                   `json:"date"`
	Slots      []model.SlotAvailability `json:"slots"`
}

func (r *AvailabilityResponse) FromModel(req AvailabilityRequest, slots []model.SlotAvailability) {
	r.FacilityID = req.FacilityID
	r.CategoryID = req.CategoryID
	r.Date = req.Date
	r.Slots = slots

	if r.Slots == nil {
		r.Slots = []model.SlotAvailability{}
	}
}
