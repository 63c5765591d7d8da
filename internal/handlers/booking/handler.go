package booking

import (
	"context"
	"courtside/infras/otel"
	"courtside/internal/domains/booking/model"
	"courtside/internal/domains/booking/model/dto"
	"courtside/internal/domains/booking/service"
	"courtside/shared"
	"courtside/shared/constant"
	gDto "courtside/shared/dto"
	"courtside/shared/failure"
	"courtside/shared/validator"
	"courtside/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const paramIncludeCancelled = "include_cancelled"

type Handler struct {
	service service.Lifecycle
	otel    otel.Otel
}

func New(service service.Lifecycle, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Post("/bookings", handler.CreateBooking)
	router.Get("/bookings/{id}", handler.GetBooking)
	router.Patch("/bookings/{id}/confirm", handler.ConfirmBooking)
	router.Patch("/bookings/{id}/pay", handler.PayBooking)
	router.Patch("/bookings/{id}/complete", handler.CompleteBooking)
	router.Patch("/bookings/{id}/cancel", handler.CancelBooking)
	router.Get("/facilities/{id}/bookings", handler.GetFacilityBookings)
}

// CreateBooking handles the creation of a new booking.
// @Summary Create a booking
// @Description Book one court per requested slot. Guests send email and phone and are registered on the fly.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Envelope[dto.CreateBookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "insufficient availability"
// @Failure 500 {object} response.Error
// @Router /v1/bookings [post]
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Decode(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to decode request body")

		response.WithError(writer, err)

		return
	}

	// A signed-in customer always books as themselves, so contact fields become optional before validation.
	caller, signedIn := shared.CallerFromContext(ctx)

	switch {
	case signedIn && caller.IsCustomer():
		req.UserID = caller.UserID
	case !signedIn && req.UserID != 0:
		response.WithError(writer, failure.Unauthorized("sign in to book as a registered customer"))

		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Booking created successfully")

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetBooking returns one booking with its lines.
// @Summary Get a booking
// @Tags Booking
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Envelope[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBooking")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		response.WithError(writer, err)

		return
	}

	res, err := handler.ownedBooking(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("booking_id", id).Msg("failed to get booking")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// ownedBooking hides bookings of other customers behind a not found.
func (handler *Handler) ownedBooking(ctx context.Context, id int64) (dto.BookingResponse, error) {
	res, err := handler.service.Get(ctx, id)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if caller, ok := shared.CallerFromContext(ctx); ok && caller.IsCustomer() && caller.UserID != res.UserID {
		return dto.BookingResponse{}, failure.NotFound("booking not found") //nolint:wrapcheck
	}

	return res, nil
}

type transitionFunc func(ctx context.Context, id int64) (dto.TransitionResponse, error)

func (handler *Handler) transition(writer http.ResponseWriter, request *http.Request, name model.Transition, apply transitionFunc) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Booking."+string(name))
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		response.WithError(writer, err)

		return
	}

	res, err := apply(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("booking_id", id).Str("transition", string(name)).Msg("failed to change booking status")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Booking status changed")

	response.WithJSON(writer, http.StatusOK, res)
}

// ConfirmBooking marks a created booking as confirmed by the facility.
// @Summary Confirm a booking
// @Tags Booking
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Envelope[dto.TransitionResponse]
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/confirm [patch]
// @Security BearerAuth
func (handler *Handler) ConfirmBooking(writer http.ResponseWriter, request *http.Request) {
	handler.transition(writer, request, model.TransitionConfirm, handler.service.MarkConfirmed)
}

// PayBooking records payment for a booking.
// @Summary Mark a booking paid
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path int true "Booking ID"
// @Param request body dto.PayBookingRequest false "Payment reference"
// @Success 200 {object} response.Envelope[dto.TransitionResponse]
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/pay [patch]
// @Security BearerAuth
func (handler *Handler) PayBooking(writer http.ResponseWriter, request *http.Request) {
	req := dto.PayBookingRequest{}

	if request.ContentLength != 0 {
		if err := validator.Validate(request.Body, &req); err != nil {
			log.Error().Err(err).Msg("failed to validate request body")

			response.WithError(writer, err)

			return
		}
	}

	handler.transition(writer, request, model.TransitionPay, func(ctx context.Context, id int64) (dto.TransitionResponse, error) {
		return handler.service.MarkPaid(ctx, id, req)
	})
}

// CompleteBooking closes a booking once play has happened.
// @Summary Complete a booking
// @Tags Booking
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Envelope[dto.TransitionResponse]
// @Failure 400 {object} response.Error "check-in date still ahead"
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/complete [patch]
// @Security BearerAuth
func (handler *Handler) CompleteBooking(writer http.ResponseWriter, request *http.Request) {
	handler.transition(writer, request, model.TransitionComplete, handler.service.MarkCompleted)
}

// CancelBooking releases the booking's courts. Customers may only cancel their own bookings.
// @Summary Cancel a booking
// @Tags Booking
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Envelope[dto.TransitionResponse]
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/cancel [patch]
// @Security BearerAuth
func (handler *Handler) CancelBooking(writer http.ResponseWriter, request *http.Request) {
	handler.transition(writer, request, model.TransitionCancel, func(ctx context.Context, id int64) (dto.TransitionResponse, error) {
		if caller, ok := shared.CallerFromContext(ctx); ok && caller.IsCustomer() {
			if _, err := handler.ownedBooking(ctx, id); err != nil {
				return dto.TransitionResponse{}, err
			}
		}

		return handler.service.MarkCancelled(ctx, id)
	})
}

// GetFacilityBookings pages through a facility's bookings.
// @Summary List facility bookings
// @Description Cancelled bookings are hidden unless include_cancelled is true or status filters on them.
// @Tags Booking
// @Produce json
// @Param id path int true "Facility ID"
// @Param date query string false "Check-in date (YYYY-MM-DD)"
// @Param status query int false "Status code (1, 2, 7, 9, 10)"
// @Param include_cancelled query bool false "Include cancelled bookings"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort_by query string false "check_in_date, total_price, created_at or modified_at"
// @Param sort_dir query string false "ASC or DESC"
// @Success 200 {object} response.Envelope[dto.GetBookingsResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/facilities/{id}/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetFacilityBookings(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetFacilityBookings")
	defer scope.End()

	facilityID, err := shared.ParseID(chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		response.WithError(writer, err)

		return
	}

	query := request.URL.Query()

	req := dto.ListBookingsRequest{
		FacilityID:       facilityID,
		Date:             query.Get(constant.RequestParamDate),
		IncludeCancelled: shared.ConvertStringToBool(query.Get(paramIncludeCancelled)),
		QueryParams:      gDto.QueryParams{},
	}
	req.QueryParams.FromRequest(request, true)

	if status := query.Get(model.FieldStatus); status != "" {
		code, err := shared.ParseID(status)
		if err != nil {
			response.WithError(writer, failure.BadRequestFromString("status must be a status code"))

			return
		}

		req.Status = int(code)
	}

	if err = validator.ValidateStruct(&req); err != nil {
		response.WithError(writer, err)

		return
	}

	res, err := handler.service.List(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("facility_id", facilityID).Msg("failed to list bookings")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}
