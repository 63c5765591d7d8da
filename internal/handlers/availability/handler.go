package availability

import (
	"courtside/infras/otel"
	"courtside/internal/domains/allocation/model/dto"
	"courtside/internal/domains/allocation/service"
	"courtside/shared"
	"courtside/shared/constant"
	"courtside/shared/validator"
	"courtside/transport/http/response"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Allocator
	otel    otel.Otel
}

func New(service service.Allocator, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/facilities/{id}/availability", handler.GetAvailability)
}

// GetAvailability reports how many courts are still free in every slot of a day.
// @Summary Court availability per slot
// @Description Counts are cached per facility, category and date and refreshed whenever a booking is created or cancelled.
// @Tags Availability
// @Produce json
// @Param id path int true "Facility ID"
// @Param category_id query int true "Court category ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope[dto.AvailabilityResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/facilities/{id}/availability [get]
func (handler *Handler) GetAvailability(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailability")
	defer scope.End()

	facilityID, err := shared.ParseID(chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		response.WithError(writer, err)

		return
	}

	query := request.URL.Query()

	req := dto.AvailabilityRequest{
		FacilityID: facilityID,
		Date:       query.Get(constant.RequestParamDate),
	}

	if raw := query.Get(constant.RequestParamCategoryID); raw != "" {
		// An unparsable id stays zero and fails validation below.
		req.CategoryID, _ = strconv.ParseInt(raw, 10, 64)
	}

	if err = validator.ValidateStruct(&req); err != nil {
		response.WithError(writer, err)

		return
	}

	date, err := req.ParseDate()
	if err != nil {
		response.WithError(writer, err)

		return
	}

	slots, err := handler.service.AvailableCountPerSlot(ctx, req.FacilityID, req.CategoryID, date)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("facility_id", facilityID).Msg("failed to get availability")

		response.WithError(writer, err)

		return
	}

	var res dto.AvailabilityResponse
	res.FromModel(req, slots)

	response.WithJSON(writer, http.StatusOK, res)
}
