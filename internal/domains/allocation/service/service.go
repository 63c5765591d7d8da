package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"courtside/config"
	"courtside/infras/otel"
	"courtside/internal/domains/allocation/model"
	bookingRepo "courtside/internal/domains/booking/repository"
	courtModel "courtside/internal/domains/court/model"
	courtRepo "courtside/internal/domains/court/repository"
	slotModel "courtside/internal/domains/timeslot/model"
	slotRepo "courtside/internal/domains/timeslot/repository"
	"courtside/shared"
	"courtside/shared/cache"
	"courtside/shared/constant"
	"courtside/shared/failure"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
)

// CacheAvailability prefixes cached per-slot counts. Keys are availability:<facility>:<category>:<date>.
const CacheAvailability = "availability"

type Allocator interface {
	// Resolve reports, for every active court of the category, which of slotIDs it already holds on date.
	Resolve(ctx context.Context, facilityID, categoryID int64, date time.Time, slotIDs []int64) ([]model.CourtAvailability, error)
	AvailableCountPerSlot(ctx context.Context, facilityID, categoryID int64, date time.Time) ([]model.SlotAvailability, error)
	// Allocate resolves availability, assigns courts and prices the result.
	Allocate(ctx context.Context, req model.Request) (model.Allocation, error)
}

type serviceImpl struct {
	courtRepo   courtRepo.Court
	slotRepo    slotRepo.TimeSlot
	bookingRepo bookingRepo.Booking
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(courtRepo courtRepo.Court, slotRepo slotRepo.TimeSlot, bookingRepo bookingRepo.Booking, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Allocator {
	return &serviceImpl{
		courtRepo:   courtRepo,
		slotRepo:    slotRepo,
		bookingRepo: bookingRepo,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

func (s *serviceImpl) Resolve(ctx context.Context, facilityID, categoryID int64, date time.Time, slotIDs []int64) (res []model.CourtAvailability, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".allocation.Resolve")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	courts, err := s.courtRepo.GetActive(ctx, facilityID, categoryID)
	if err != nil {
		log.Error().Err(err).Int64("facility_id", facilityID).Msg("failed to get active courts")

		return nil, fmt.Errorf("failed to get active courts: %w", err)
	}

	return s.resolve(ctx, courts, date, slotIDs)
}

func (s *serviceImpl) resolve(ctx context.Context, courts []courtModel.Court, date time.Time, slotIDs []int64) ([]model.CourtAvailability, error) {
	courtIDs := make([]int64, 0, len(courts))
	for _, court := range courts {
		courtIDs = append(courtIDs, court.ID)
	}

	lines, err := s.bookingRepo.GetBookedLines(ctx, courtIDs, slotIDs, date)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booked lines")

		return nil, fmt.Errorf("failed to get booked lines: %w", err)
	}

	availability := make([]model.CourtAvailability, 0, len(courts))
	index := make(map[int64]int, len(courts))

	for _, court := range courts {
		index[court.ID] = len(availability)
		availability = append(availability, model.NewCourtAvailability(court.ID))
	}

	for _, line := range lines {
		if !line.Status.HoldsSlot() {
			continue
		}

		if i, ok := index[line.CourtID]; ok {
			availability[i].Held[line.TimeSlotID] = struct{}{}
		}
	}

	return availability, nil
}

func (s *serviceImpl) AvailableCountPerSlot(ctx context.Context, facilityID, categoryID int64, date time.Time) (res []model.SlotAvailability, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".allocation.AvailableCountPerSlot")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(CacheAvailability, facilityID, categoryID, date.Format(constant.DateOnlyFormat))

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for availability")

		return res, nil
	}

	slots, err := s.slotRepo.GetByFacility(ctx, facilityID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get facility time slots")

		return nil, fmt.Errorf("failed to get facility time slots: %w", err)
	}

	courts, err := s.courtRepo.GetActive(ctx, facilityID, categoryID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get active courts")

		return nil, fmt.Errorf("failed to get active courts: %w", err)
	}

	slotIDs := make([]int64, 0, len(slots))
	for _, slot := range slots {
		slotIDs = append(slotIDs, slot.ID)
	}

	availability, err := s.resolve(ctx, courts, date, slotIDs)
	if err != nil {
		return nil, err
	}

	res = make([]model.SlotAvailability, 0, len(slots))

	for _, slot := range slots {
		free := 0

		for _, court := range availability {
			if court.IsFree(slot.ID) {
				free++
			}
		}

		start, end, werr := slot.Window()
		if werr != nil {
			log.Warn().Err(werr).Int64("slot_id", slot.ID).Msg("skipping malformed time slot")

			continue
		}

		res = append(res, model.SlotAvailability{
			SlotID:      slot.ID,
			StartTime:   slotModel.FormatClock(start),
			EndTime:     slotModel.FormatClock(end),
			Discount:    slot.Discount,
			FreeCourts:  free,
			TotalCourts: len(availability),
		})
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Booking.AvailabilityTTL); err != nil {
			log.Error().Err(err).Msg("failed to save availability to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Allocate(ctx context.Context, req model.Request) (res model.Allocation, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".allocation.Allocate")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("facility_id", req.FacilityID)
	scope.SetAttribute("slot_ids", req.SlotIDs)

	if len(req.SlotIDs) == 0 {
		return res, failure.BadRequestFromString("at least one time slot is required") //nolint:wrapcheck
	}

	slotsByID, windows, err := s.loadSlots(ctx, req.FacilityID, req.SlotIDs)
	if err != nil {
		return res, err
	}

	var (
		courts     []courtModel.Court
		assignment model.Assignment
	)

	if req.CourtID != 0 {
		courts, assignment, err = s.assignPinned(ctx, req, windows)
	} else {
		courts, assignment, err = s.assignAny(ctx, req, windows)
	}

	if err != nil {
		return res, err
	}

	courtsByID := make(map[int64]courtModel.Court, len(courts))
	for _, court := range courts {
		courtsByID[court.ID] = court
	}

	quote, err := Price(assignment, slotsByID, courtsByID, s.cfg.Booking.CurrencyPrecision)
	if err != nil {
		log.Error().Err(err).Msg("failed to price allocation")

		return res, fmt.Errorf("failed to price allocation: %w", err)
	}

	res = model.Allocation{
		FacilityID: req.FacilityID,
		CategoryID: req.CategoryID,
		Date:       req.Date,
		Quote:      quote,
	}

	if req.CourtID != 0 && len(courts) > 0 {
		res.CategoryID = courts[0].CategoryID
	}

	return res, nil
}

func (s *serviceImpl) loadSlots(ctx context.Context, facilityID int64, slotIDs []int64) (map[int64]slotModel.TimeSlot, []model.Slot, error) {
	unique := slices.Compact(slices.Sorted(slices.Values(slotIDs)))
	if len(unique) != len(slotIDs) {
		return nil, nil, failure.BadRequestFromString("time slots must not repeat") //nolint:wrapcheck
	}

	slots, err := s.slotRepo.GetByIDs(ctx, facilityID, unique)
	if err != nil {
		log.Error().Err(err).Msg("failed to get time slots")

		return nil, nil, fmt.Errorf("failed to get time slots: %w", err)
	}

	slotsByID := make(map[int64]slotModel.TimeSlot, len(slots))
	windows := make([]model.Slot, 0, len(slots))

	for _, slot := range slots {
		start, end, err := slot.Window()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read time slot %d: %w", slot.ID, err)
		}

		slotsByID[slot.ID] = slot
		windows = append(windows, model.Slot{ID: slot.ID, Start: start, End: end})
	}

	for _, id := range unique {
		if _, ok := slotsByID[id]; !ok {
			return nil, nil, failure.NotFound(fmt.Sprintf("time slot %d not found for facility", id)) //nolint:wrapcheck
		}
	}

	return slotsByID, windows, nil
}

func (s *serviceImpl) assignAny(ctx context.Context, req model.Request, windows []model.Slot) ([]courtModel.Court, model.Assignment, error) {
	courts, err := s.courtRepo.GetActive(ctx, req.FacilityID, req.CategoryID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get active courts")

		return nil, nil, fmt.Errorf("failed to get active courts: %w", err)
	}

	if len(courts) == 0 {
		return nil, nil, failure.Conflict("insufficient availability: no active court in this category") //nolint:wrapcheck
	}

	availability, err := s.resolve(ctx, courts, req.Date, req.SlotIDs)
	if err != nil {
		return nil, nil, err
	}

	assignment, err := Assign(windows, availability)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	return courts, assignment, nil
}

func (s *serviceImpl) assignPinned(ctx context.Context, req model.Request, windows []model.Slot) ([]courtModel.Court, model.Assignment, error) {
	courts, err := s.courtRepo.GetByIDs(ctx, []int64{req.CourtID})
	if err != nil {
		log.Error().Err(err).Msg("failed to get court")

		return nil, nil, fmt.Errorf("failed to get court: %w", err)
	}

	if len(courts) == 0 || courts[0].FacilityID != req.FacilityID {
		return nil, nil, failure.NotFound("court not found") //nolint:wrapcheck
	}

	court := courts[0]
	if !court.IsActive() {
		return nil, nil, failure.Conflict(fmt.Sprintf("court %s is not available for booking", court.Name)) //nolint:wrapcheck
	}

	availability, err := s.resolve(ctx, courts, req.Date, req.SlotIDs)
	if err != nil {
		return nil, nil, err
	}

	assignment, err := AssignSingle(windows, availability[0])
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	return courts, assignment, nil
}
