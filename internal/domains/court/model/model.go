package model

import "courtside/shared/model"

const (
	TableName  = "courts"
	EntityName = "court"

	FieldID          = "id"
	FieldFacilityID  = "facility_id"
	FieldCategoryID  = "category_id"
	FieldName        = "name"
	FieldHourlyPrice = "hourly_price"
	FieldStatus      = "status"
)

const (
	StatusActive = "active"
	StatusLocked = "locked"
)

type Court struct {
	ID          int64   `db:"id"`
	FacilityID  int64   `db:"facility_id"`
	CategoryID  int64   `db:"category_id"`
	Name        string  `db:"name"`
	HourlyPrice float64 `db:"hourly_price"`
	Status      string  `db:"status"`
	model.Metadata
}

func (c Court) IsActive() bool {
	return c.Status == StatusActive
}
