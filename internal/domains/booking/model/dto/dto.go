package dto

import (
	allocModel "courtside/internal/domains/allocation/model"
	"courtside/internal/domains/booking/model"
	userModel "courtside/internal/domains/user/model"
	"courtside/shared"
	"courtside/shared/constant"
	gDto "courtside/shared/dto"
	gModel "courtside/shared/model"
	"courtside/shared/timezone"
	"strings"
	"time"
)

// CreateBookingRequest books one court per slot. A signed-up customer passes user_id,
// a guest passes email and phone and is registered on the fly.
type CreateBookingRequest struct {
	FacilityID  int64   `json:"facility_id"   validate:"required,gt=0"`
	CategoryID  int64   `json:"category_id"   validate:"required_without=CourtID,omitempty,gt=0"`
	CourtID     int64   `json:"court_id"      validate:"omitempty,gt=0"`
	TimeSlotIDs []int64 `json:"time_slot_ids" validate:"required,min=1,unique,dive,gt=0"`
	CheckInDate string  `json:"check_in_date" validate:"required,date"`
	UserID      int64   `json:"user_id"       validate:"omitempty,gt=0"`
	FullName    string  `json:"full_name"     validate:"omitempty,max=150"`
	Email       string  `json:"email"         validate:"required_without=UserID,omitempty,email,max=150"`
	Phone       string  `json:"phone"         validate:"required_without=UserID,omitempty,mobile"`
	Note        string  `json:"note"          validate:"omitempty,max=500"`
}

func (c *CreateBookingRequest) CheckIn() (time.Time, error) {
	return timezone.Parse(constant.DateOnlyFormat, c.CheckInDate) //nolint:wrapcheck
}

// Contact returns the guest email and phone normalised for lookup.
func (c *CreateBookingRequest) Contact() (email, phone string) {
	return strings.ToLower(strings.TrimSpace(c.Email)), strings.TrimSpace(c.Phone)
}

func (c *CreateBookingRequest) ToAllocationRequest(date time.Time) allocModel.Request {
	return allocModel.Request{
		FacilityID: c.FacilityID,
		CategoryID: c.CategoryID,
		CourtID:    c.CourtID,
		SlotIDs:    c.TimeSlotIDs,
		Date:       date,
	}
}

func (c *CreateBookingRequest) ToModel(userID int64, alloc allocModel.Allocation, user string) (model.Booking, []model.Detail) {
	now := timezone.Now()

	booking := model.Booking{
		UserID:      userID,
		FacilityID:  alloc.FacilityID,
		CategoryID:  alloc.CategoryID,
		CheckInDate: alloc.Date,
		TotalPrice:  alloc.Total,
		Status:      model.StatusCreated,
		Note:        c.Note,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}

	details := make([]model.Detail, 0, len(alloc.Lines))
	for _, line := range alloc.Lines {
		details = append(details, model.Detail{
			CourtID:     line.CourtID,
			TimeSlotID:  line.SlotID,
			CheckInDate: alloc.Date,
			Price:       line.Amount,
			Status:      model.StatusCreated,
		})
	}

	return booking, details
}

type PayBookingRequest struct {
	TransactionRef string `json:"transaction_ref" validate:"omitempty,max=100"`
}

type CustomerResponse struct {
	UserID     int64  `json:"user_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Registered bool   `json:"registered"`
}

func (r *CustomerResponse) FromModel(user userModel.User, registered bool) {
	r.UserID = user.ID
	r.FullName = user.FullName
	r.Email = user.Email
	r.Phone = user.Phone
	r.Registered = registered
}

type LineResponse struct {
	CourtID   int64   `json:"court_id"`
	CourtName string  `json:"court_name"`
	SlotID    int64   `json:"time_slot_id"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Amount    float64 `json:"amount"`
}

type CreateBookingResponse struct {
	BookingID   int64            `json:"booking_id"`
	FacilityID  int64            `json:"facility_id"`
	CheckInDate string           `json:"check_in_date"`
	Status      string           `json:"status"`
	StatusCode  int              `json:"status_code"`
	TotalPrice  float64          `json:"total_price"`
	Lines       []LineResponse   `json:"lines"`
	Customer    CustomerResponse `json:"customer"`
}

func (r *CreateBookingResponse) FromModel(booking model.Booking, alloc allocModel.Allocation) {
	r.BookingID = booking.ID
	r.FacilityID = booking.FacilityID
	r.CheckInDate = booking.CheckInDate.Format(constant.DateOnlyFormat)
	r.Status = booking.Status.String()
	r.StatusCode = int(booking.Status)
	r.TotalPrice = booking.TotalPrice

	r.Lines = make([]LineResponse, len(alloc.Lines))
	for i, line := range alloc.Lines {
		r.Lines[i] = LineResponse{
			CourtID:   line.CourtID,
			CourtName: line.CourtName,
			SlotID:    line.SlotID,
			StartTime: line.StartTime,
			EndTime:   line.EndTime,
			Amount:    line.Amount,
		}
	}
}

type DetailResponse struct {
	ID         int64   `json:"id"`
	CourtID    int64   `json:"court_id"`
	TimeSlotID int64   `json:"time_slot_id"`
	Price      float64 `json:"price"`
	Status     string  `json:"status"`
}

type BookingResponse struct {
	ID             int64            `json:"id"`
	UserID         int64            `json:"user_id"`
	FacilityID     int64            `json:"facility_id"`
	CategoryID     int64            `json:"category_id"`
	CheckInDate    string           `json:"check_in_date"`
	TotalPrice     float64          `json:"total_price"`
	Status         string           `json:"status"`
	StatusCode     int              `json:"status_code"`
	TransactionRef string           `json:"transaction_ref,omitempty"`
	Note           string           `json:"note,omitempty"`
	Details        []DetailResponse `json:"details"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(booking model.Booking, details []model.Detail) {
	r.ID = booking.ID
	r.UserID = booking.UserID
	r.FacilityID = booking.FacilityID
	r.CategoryID = booking.CategoryID
	r.CheckInDate = booking.CheckInDate.Format(constant.DateOnlyFormat)
	r.TotalPrice = booking.TotalPrice
	r.Status = booking.Status.String()
	r.StatusCode = int(booking.Status)
	r.Note = booking.Note

	if booking.TransactionRef != nil {
		r.TransactionRef = *booking.TransactionRef
	}

	r.Details = make([]DetailResponse, len(details))
	for i, detail := range details {
		r.Details[i] = DetailResponse{
			ID:         detail.ID,
			CourtID:    detail.CourtID,
			TimeSlotID: detail.TimeSlotID,
			Price:      detail.Price,
			Status:     detail.Status.String(),
		}
	}

	r.Metadata.FromModel(booking.Metadata)
}

type TransitionResponse struct {
	BookingID      int64  `json:"booking_id"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
	StatusCode     int    `json:"status_code"`
}

var sortableColumns = map[string]string{
	model.FieldCheckInDate:   model.TableName + "." + model.FieldCheckInDate,
	model.FieldTotalPrice:    model.TableName + "." + model.FieldTotalPrice,
	constant.FieldCreatedAt:  model.TableName + "." + constant.FieldCreatedAt,
	constant.FieldModifiedAt: model.TableName + "." + constant.FieldModifiedAt,
}

// ListBookingsRequest pages through the bookings of one facility.
type ListBookingsRequest struct {
	FacilityID       int64  `json:"facility_id"       validate:"required,gt=0"`
	Date             string `json:"date"              validate:"omitempty,date"`
	Status           int    `json:"status"            validate:"omitempty,oneof=1 2 7 9 10"`
	IncludeCancelled *bool  `json:"include_cancelled"`
	gDto.QueryParams
}

// ToQuery builds the paging and filter for the repository. Cancelled bookings are
// hidden unless asked for explicitly or filtered on.
func (l *ListBookingsRequest) ToQuery() (gDto.QueryParams, gDto.FilterGroup) {
	params := l.QueryParams

	column, ok := sortableColumns[params.SortBy]
	if !ok {
		column = sortableColumns[constant.DefaultValueSortBy]
	}

	params.SortBy = column

	if params.SortDir == "" {
		params.SortDir = constant.DefaultValueSortDir
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldFacilityID, Value: l.FacilityID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	if l.Date != "" {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldCheckInDate,
			Value:    l.Date,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	switch {
	case l.Status != 0:
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Value:    l.Status,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	case l.IncludeCancelled == nil || !*l.IncludeCancelled:
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Value:    int(model.StatusCancelled),
			Operator: gDto.FilterOperatorNotEq,
			Table:    model.TableName,
		})
	}

	return params, filter
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod, nil)
	}
}
