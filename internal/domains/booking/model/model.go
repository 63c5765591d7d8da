package model

import (
	"courtside/shared/model"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID             = "id"
	FieldUserID         = "user_id"
	FieldFacilityID     = "facility_id"
	FieldCategoryID     = "category_id"
	FieldCheckInDate    = "check_in_date"
	FieldTotalPrice     = "total_price"
	FieldStatus         = "status"
	FieldTransactionRef = "transaction_ref"
	FieldNote           = "note"
)

const (
	DetailTableName  = "booking_details"
	DetailEntityName = "booking_detail"

	DetailFieldID          = "id"
	DetailFieldBookingID   = "booking_id"
	DetailFieldCourtID     = "court_id"
	DetailFieldTimeSlotID  = "time_slot_id"
	DetailFieldCheckInDate = "check_in_date"
	DetailFieldPrice       = "price"
	DetailFieldStatus      = "status"
)

// Booking is the header of a reservation. Its status is mirrored on every detail line.
type Booking struct {
	ID             int64     `db:"id"`
	UserID         int64     `db:"user_id"`
	FacilityID     int64     `db:"facility_id"`
	CategoryID     int64     `db:"category_id"`
	CheckInDate    time.Time `db:"check_in_date"`
	TotalPrice     float64   `db:"total_price"`
	Status         Status    `db:"status"`
	TransactionRef *string   `db:"transaction_ref"`
	Note           string    `db:"note"`
	model.Metadata
}

// Detail holds one court for one slot on the booking's check-in date.
type Detail struct {
	ID          int64     `db:"id"`
	BookingID   int64     `db:"booking_id"`
	CourtID     int64     `db:"court_id"`
	TimeSlotID  int64     `db:"time_slot_id"`
	CheckInDate time.Time `db:"check_in_date"`
	Price       float64   `db:"price"`
	Status      Status    `db:"status"`
}
