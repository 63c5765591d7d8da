package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"courtside/config"
	"courtside/infras/metrics"
	"courtside/infras/otel"
	allocModel "courtside/internal/domains/allocation/model"
	allocService "courtside/internal/domains/allocation/service"
	"courtside/internal/domains/booking/model"
	"courtside/internal/domains/booking/model/dto"
	"courtside/internal/domains/booking/repository"
	courtRepo "courtside/internal/domains/court/repository"
	facilityModel "courtside/internal/domains/facility/model"
	facilityRepo "courtside/internal/domains/facility/repository"
	slotRepo "courtside/internal/domains/timeslot/repository"
	userModel "courtside/internal/domains/user/model"
	userRepo "courtside/internal/domains/user/repository"
	"courtside/shared"
	"courtside/shared/cache"
	"courtside/shared/constant"
	gDto "courtside/shared/dto"
	"courtside/shared/failure"
	"courtside/shared/mailbox"
	"courtside/shared/notifier"
	"courtside/shared/password"
	gRepo "courtside/shared/repository"
	"courtside/shared/timezone"
	"courtside/shared/validator"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking = "booking:get"
)

type Lifecycle interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.CreateBookingResponse, error)
	Get(ctx context.Context, id int64) (dto.BookingResponse, error)
	List(ctx context.Context, req dto.ListBookingsRequest) (dto.GetBookingsResponse, error)
	MarkConfirmed(ctx context.Context, id int64) (dto.TransitionResponse, error)
	MarkPaid(ctx context.Context, id int64, req dto.PayBookingRequest) (dto.TransitionResponse, error)
	MarkCompleted(ctx context.Context, id int64) (dto.TransitionResponse, error)
	MarkCancelled(ctx context.Context, id int64) (dto.TransitionResponse, error)
}

type serviceImpl struct {
	repo         repository.Booking
	userRepo     userRepo.User
	facilityRepo facilityRepo.Facility
	courtRepo    courtRepo.Court
	slotRepo     slotRepo.TimeSlot
	allocator    allocService.Allocator
	notifier     notifier.Notifier
	mailbox      mailbox.Verifier
	metrics      *metrics.Metrics
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(
	repo repository.Booking,
	userRepo userRepo.User,
	facilityRepo facilityRepo.Facility,
	courtRepo courtRepo.Court,
	slotRepo slotRepo.TimeSlot,
	allocator allocService.Allocator,
	notifier notifier.Notifier,
	mailbox mailbox.Verifier,
	metrics *metrics.Metrics,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Lifecycle {
	return &serviceImpl{
		repo:         repo,
		userRepo:     userRepo,
		facilityRepo: facilityRepo,
		courtRepo:    courtRepo,
		slotRepo:     slotRepo,
		allocator:    allocator,
		notifier:     notifier,
		mailbox:      mailbox,
		metrics:      metrics,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

func actor(ctx context.Context) string {
	if user, ok := ctx.Value(constant.ContextKeyUserID).(string); ok && user != "" {
		return user
	}

	return constant.ContextGuest
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.CreateBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	checkIn, err := req.CheckIn()
	if err != nil {
		return res, failure.BadRequestFromString("check_in_date must be a date formatted as YYYY-MM-DD") //nolint:wrapcheck
	}

	if req.CheckInDate < timezone.Today() {
		return res, failure.BadRequestFromString("check_in_date cannot be in the past") //nolint:wrapcheck
	}

	if req.CategoryID == 0 && req.CourtID == 0 {
		return res, failure.BadRequestFromString("category_id or court_id is required") //nolint:wrapcheck
	}

	if err = s.ensureFacility(ctx, req.FacilityID); err != nil {
		return res, err
	}

	customer, err := s.resolveCustomer(ctx, req)
	if err != nil {
		return res, err
	}

	allocation, err := s.allocator.Allocate(ctx, req.ToAllocationRequest(checkIn))
	if err != nil {
		if failure.GetCode(err) == http.StatusConflict {
			s.metrics.AllocationConflicts.Inc()
		}

		log.Error().Err(err).Int64("facility_id", req.FacilityID).Msg("failed to allocate courts")

		return res, err //nolint:wrapcheck
	}

	registered := customer.ID == 0
	if registered {
		if customer, registered, err = s.registerGuest(ctx, customer); err != nil {
			return res, err
		}
	}

	booking, details := req.ToModel(customer.ID, allocation, actor(ctx))

	booking.ID, err = s.repo.InsertWithDetails(ctx, booking, details)
	if errors.Is(err, repository.ErrSlotTaken) {
		s.metrics.AllocationConflicts.Inc()
		log.Warn().Err(err).Int64("facility_id", req.FacilityID).Msg("court taken while booking")

		return res, failure.Conflict("insufficient availability: a requested court was booked by someone else, please retry") //nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to create booking")

		return res, failure.Storage(err) //nolint:wrapcheck
	}

	s.metrics.BookingsCreated.Inc()

	res.FromModel(booking, allocation)
	res.Customer.FromModel(customer, registered)

	s.invalidateAvailability(ctx, booking.FacilityID)
	s.publish(ctx, notifier.Event{
		Type:         notifier.EventBookingCreated,
		FacilityID:   booking.FacilityID,
		BookingID:    booking.ID,
		Status:       booking.Status.String(),
		CourtName:    joinUnique(lineCourtNames(allocation.Lines)),
		CustomerName: customer.FullName,
		Date:         res.CheckInDate,
		TimeRange:    joinUnique(lineTimeRanges(allocation.Lines)),
		Amount:       booking.TotalPrice,
	})

	return res, nil
}

func (s *serviceImpl) ensureFacility(ctx context.Context, facilityID int64) error {
	exist, err := s.facilityRepo.Exist(ctx, shared.FilterByID(facilityID, facilityModel.FieldID, facilityModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if facility exists")

		return fmt.Errorf("failed to check if facility exists: %w", err)
	}

	if !exist {
		return failure.NotFound("facility not found") //nolint:wrapcheck
	}

	return nil
}

// resolveCustomer returns the booking owner. A guest with no matching account comes back with ID 0.
func (s *serviceImpl) resolveCustomer(ctx context.Context, req dto.CreateBookingRequest) (userModel.User, error) {
	if req.UserID != 0 {
		user, err := s.userRepo.Get(ctx, shared.FilterByID(req.UserID, userModel.FieldID, userModel.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to get user")

			return user, fmt.Errorf("failed to get user: %w", err)
		}

		if user.ID == 0 {
			return user, failure.NotFound("user not found") //nolint:wrapcheck
		}

		return user, nil
	}

	email, phone := req.Contact()
	if email == "" || phone == "" {
		return userModel.User{}, failure.BadRequestFromString("guest bookings require both email and phone") //nolint:wrapcheck
	}

	if err := validator.ValidateVar(phone, "mobile"); err != nil {
		return userModel.User{}, failure.BadRequestFromString("phone must be a valid mobile number") //nolint:wrapcheck
	}

	if err := validator.ValidateVar(email, "email"); err != nil {
		return userModel.User{}, failure.BadRequestFromString("email must be a valid email address") //nolint:wrapcheck
	}

	user, err := s.findByContact(ctx, email, phone)
	if err != nil || user.ID != 0 {
		return user, err
	}

	if err = s.mailbox.Verify(ctx, email); err != nil {
		return user, err //nolint:wrapcheck
	}

	name := strings.TrimSpace(req.FullName)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	return userModel.User{
		FullName: name,
		Email:    email,
		Phone:    phone,
		Level:    userModel.LevelGuest,
		Active:   true,
	}, nil
}

func (s *serviceImpl) findByContact(ctx context.Context, email, phone string) (userModel.User, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorOr,
		Filters: []any{
			gDto.Filter{Field: userModel.FieldEmail, Value: email, Operator: gDto.FilterOperatorEq, Table: userModel.TableName},
			gDto.Filter{Field: userModel.FieldPhone, Value: phone, Operator: gDto.FilterOperatorEq, Table: userModel.TableName},
		},
	}

	user, err := s.userRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to look up guest")

		return user, fmt.Errorf("failed to look up guest: %w", err)
	}

	return user, nil
}

// registerGuest inserts the guest account. When a concurrent request registered the same
// email or phone first, that account is returned instead and registered is false.
func (s *serviceImpl) registerGuest(ctx context.Context, guest userModel.User) (userModel.User, bool, error) {
	secret, err := password.Hash(uuid.NewString())
	if err != nil {
		log.Error().Err(err).Msg("failed to hash guest password")

		return guest, false, fmt.Errorf("failed to hash guest password: %w", err)
	}

	now := timezone.Now()
	guest.Password = secret
	guest.CreatedAt = now
	guest.ModifiedAt = now
	guest.CreatedBy = constant.ContextGuest
	guest.ModifiedBy = constant.ContextGuest

	guest.ID, err = s.userRepo.InsertReturningID(ctx, guest)
	if gRepo.IsUniqueViolation(err) {
		log.Warn().Err(err).Msg("guest registered concurrently, reusing account")

		existing, lookupErr := s.findByContact(ctx, guest.Email, guest.Phone)
		if lookupErr != nil {
			return guest, false, lookupErr
		}

		if existing.ID == 0 {
			return guest, false, failure.Conflict("an account with this email or phone already exists") //nolint:wrapcheck
		}

		return existing, false, nil
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to register guest")

		return guest, false, failure.Storage(err) //nolint:wrapcheck
	}

	log.Info().Int64("user_id", guest.ID).Msg("registered guest account")

	return guest, true, nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return res, err
	}

	details, err := s.repo.GetDetails(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking details")

		return res, fmt.Errorf("failed to get booking details: %w", err)
	}

	res.FromModel(booking, details)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

// List is read straight from the database. Booking lists change with every transition.
func (s *serviceImpl) List(ctx context.Context, req dto.ListBookingsRequest) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.List")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.ensureFacility(ctx, req.FacilityID); err != nil {
		return res, err
	}

	params, filter := req.ToQuery()

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	bookings, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(bookings, total, params.Limit)

	return res, nil
}

func (s *serviceImpl) getBooking(ctx context.Context, id int64) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == 0 {
		return booking, failure.NotFound("booking not found") //nolint:wrapcheck
	}

	return booking, nil
}

func (s *serviceImpl) MarkConfirmed(ctx context.Context, id int64) (res dto.TransitionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.MarkConfirmed")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.transition(ctx, id, model.TransitionConfirm, nil)
}

func (s *serviceImpl) MarkPaid(ctx context.Context, id int64, req dto.PayBookingRequest) (res dto.TransitionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.MarkPaid")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var fields map[string]any
	if ref := strings.TrimSpace(req.TransactionRef); ref != "" {
		fields = map[string]any{model.FieldTransactionRef: ref}
	}

	return s.transition(ctx, id, model.TransitionPay, fields)
}

func (s *serviceImpl) MarkCompleted(ctx context.Context, id int64) (res dto.TransitionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.MarkCompleted")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.transition(ctx, id, model.TransitionComplete, nil)
}

func (s *serviceImpl) MarkCancelled(ctx context.Context, id int64) (res dto.TransitionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.MarkCancelled")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.transition(ctx, id, model.TransitionCancel, nil)
}

// guard checks, in order, that booking is not completed, that a completion is not early,
// and that the transition table allows the move.
func guard(booking model.Booking, transition model.Transition) error {
	if booking.Status == model.StatusCompleted {
		return failure.Conflict("booking already completed") //nolint:wrapcheck
	}

	if transition == model.TransitionComplete && booking.CheckInDate.Format(constant.DateOnlyFormat) > timezone.Today() {
		return failure.BadRequestFromString("cannot complete a booking before its check-in date") //nolint:wrapcheck
	}

	if !transition.Allows(booking.Status) {
		return failure.Conflict(transition.RejectionMessage()) //nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) transition(
	ctx context.Context,
	id int64,
	transition model.Transition,
	fields map[string]any,
) (res dto.TransitionResponse, err error) {
	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return res, err
	}

	if err = guard(booking, transition); err != nil {
		log.Warn().Err(err).Int64("booking_id", id).Str("transition", string(transition)).Msg("booking transition rejected")

		return res, err
	}

	target := transition.Target()

	if fields == nil {
		fields = make(map[string]any)
	}

	fields[constant.FieldModifiedAt] = timezone.Now()
	fields[constant.FieldModifiedBy] = actor(ctx)

	err = s.repo.UpdateStatus(ctx, id, transition.From(), target, fields)
	if errors.Is(err, repository.ErrStatusChanged) {
		log.Warn().Err(err).Int64("booking_id", id).Str("transition", string(transition)).Msg("booking changed during transition")

		return res, s.rejectStale(ctx, id, transition)
	}

	if err != nil {
		log.Error().Err(err).Int64("booking_id", id).Msg("failed to update booking status")

		return res, failure.Storage(err) //nolint:wrapcheck
	}

	s.metrics.Transitions.WithLabelValues(target.String()).Inc()

	if err = s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
		log.Error().Err(err).Int64("booking_id", id).Msg("failed to delete booking cache")
	}

	if target == model.StatusCancelled {
		s.invalidateAvailability(ctx, booking.FacilityID)
	}

	event := s.summarize(ctx, booking)
	event.Type = eventTypes[target]
	event.Status = target.String()
	s.publish(ctx, event)

	res = dto.TransitionResponse{
		BookingID:      id,
		PreviousStatus: booking.Status.String(),
		Status:         target.String(),
		StatusCode:     int(target),
	}

	return res, nil
}

// rejectStale explains why a transition lost the race against a concurrent one, using the status that won.
func (s *serviceImpl) rejectStale(ctx context.Context, id int64, transition model.Transition) error {
	current, err := s.getBooking(ctx, id)
	if err != nil {
		return err
	}

	if err = guard(current, transition); err != nil {
		return err
	}

	return failure.Conflict("booking status changed, please retry") //nolint:wrapcheck
}

var eventTypes = map[model.Status]string{
	model.StatusConfirmed: notifier.EventBookingConfirmed,
	model.StatusPaid:      notifier.EventBookingPaid,
	model.StatusCompleted: notifier.EventBookingCompleted,
	model.StatusCancelled: notifier.EventBookingCancelled,
}

// summarize fills the toast fields of an event. Lookup failures leave fields blank.
func (s *serviceImpl) summarize(ctx context.Context, booking model.Booking) notifier.Event {
	event := notifier.Event{
		FacilityID: booking.FacilityID,
		BookingID:  booking.ID,
		Date:       booking.CheckInDate.Format(constant.DateOnlyFormat),
		Amount:     booking.TotalPrice,
	}

	user, err := s.userRepo.Get(ctx, shared.FilterByID(booking.UserID, userModel.FieldID, userModel.TableName), userModel.FieldID, userModel.FieldFullName)
	if err != nil {
		log.Error().Err(err).Int64("booking_id", booking.ID).Msg("failed to get booking customer")
	} else {
		event.CustomerName = user.FullName
	}

	details, err := s.repo.GetDetails(ctx, booking.ID)
	if err != nil || len(details) == 0 {
		if err != nil {
			log.Error().Err(err).Int64("booking_id", booking.ID).Msg("failed to get booking details")
		}

		return event
	}

	courtIDs := make([]int64, 0, len(details))
	slotIDs := make([]int64, 0, len(details))

	for _, detail := range details {
		courtIDs = append(courtIDs, detail.CourtID)
		slotIDs = append(slotIDs, detail.TimeSlotID)
	}

	courts, err := s.courtRepo.GetByIDs(ctx, slices.Compact(slices.Sorted(slices.Values(courtIDs))))
	if err != nil {
		log.Error().Err(err).Int64("booking_id", booking.ID).Msg("failed to get booked courts")
	}

	slots, err := s.slotRepo.GetByIDs(ctx, booking.FacilityID, slotIDs)
	if err != nil {
		log.Error().Err(err).Int64("booking_id", booking.ID).Msg("failed to get booked time slots")
	}

	names := make([]string, 0, len(courts))
	for _, court := range courts {
		names = append(names, court.Name)
	}

	labels := make([]string, 0, len(slots))
	for _, slot := range slots {
		labels = append(labels, slot.Label())
	}

	event.CourtName = joinUnique(names)
	event.TimeRange = joinUnique(labels)

	return event
}

func (s *serviceImpl) invalidateAvailability(ctx context.Context, facilityID int64) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, shared.BuildCacheKey(allocService.CacheAvailability, facilityID))
	}()
}

// publish sends event without blocking the caller. Delivery failures are logged and counted only.
func (s *serviceImpl) publish(ctx context.Context, event notifier.Event) {
	event.ID = uuid.NewString()
	event.OccurredAt = timezone.Now()

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.notifier.Publish(c, event); err != nil {
			s.metrics.NotificationFailures.WithLabelValues(event.Type).Inc()
			log.Error().Err(err).Str("event", event.Type).Int64("booking_id", event.BookingID).Msg("failed to notify facility")
		}
	}()
}

func lineCourtNames(lines []allocModel.Line) []string {
	names := make([]string, len(lines))
	for i, line := range lines {
		names[i] = line.CourtName
	}

	return names
}

func lineTimeRanges(lines []allocModel.Line) []string {
	ranges := make([]string, len(lines))
	for i, line := range lines {
		ranges[i] = line.StartTime + "-" + line.EndTime
	}

	return ranges
}

func joinUnique(values []string) string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))

	for _, value := range values {
		if _, dup := seen[value]; dup || value == "" {
			continue
		}

		seen[value] = struct{}{}
		out = append(out, value)
	}

	return strings.Join(out, ", ")
}
