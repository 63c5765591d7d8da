package service_test

import (
	"cmp"
	"context"
	"courtside/internal/domains/booking/model"
	"courtside/internal/domains/booking/repository"
	courtModel "courtside/internal/domains/court/model"
	facilityModel "courtside/internal/domains/facility/model"
	slotModel "courtside/internal/domains/timeslot/model"
	userModel "courtside/internal/domains/user/model"
	"courtside/shared/constant"
	gDto "courtside/shared/dto"
	"courtside/shared/notifier"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/lib/pq"
)

// recordingNotifier collects published events and can be told to fail.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notifier.Event
	err    error
	sent   chan notifier.Event
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(chan notifier.Event, 64)}
}

func (n *recordingNotifier) Publish(_ context.Context, event notifier.Event) error {
	n.mu.Lock()
	n.events = append(n.events, event)
	err := n.err
	n.mu.Unlock()

	n.sent <- event

	return err
}

func (n *recordingNotifier) next(timeout time.Duration) (notifier.Event, bool) {
	select {
	case event := <-n.sent:
		return event, true
	case <-time.After(timeout):
		return notifier.Event{}, false
	}
}

type slotKey struct {
	courtID int64
	slotID  int64
	date    string
}

// memoryBookings keeps bookings in maps and enforces one active line per court, slot and date.
type memoryBookings struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]model.Booking
	details  map[int64][]model.Detail
	active   map[slotKey]int64
	// beforeInsert and afterGet run outside the lock so tests can widen the read-then-write window.
	beforeInsert func()
	afterGet     func()
}

func newMemoryBookings() *memoryBookings {
	return &memoryBookings{
		bookings: map[int64]model.Booking{},
		details:  map[int64][]model.Detail{},
		active:   map[slotKey]int64{},
	}
}

func filterID(filter gDto.FilterGroup) int64 {
	for _, f := range filter.Filters {
		if eq, ok := f.(gDto.Filter); ok && eq.Field == "id" {
			if id, ok := eq.Value.(int64); ok {
				return id
			}
		}
	}

	return 0
}

func (m *memoryBookings) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Booking, error) {
	m.mu.Lock()
	booking := m.bookings[filterID(filter)]
	m.mu.Unlock()

	if m.afterGet != nil {
		m.afterGet()
	}

	return booking, nil
}

func (m *memoryBookings) GetAll(_ context.Context, _ gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Booking, 0, len(m.bookings))
	for _, booking := range m.bookings {
		out = append(out, booking)
	}

	slices.SortFunc(out, func(a, b model.Booking) int { return cmp.Compare(a.ID, b.ID) })

	return out, nil
}

func (m *memoryBookings) Count(_ context.Context, _ gDto.FilterGroup) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.bookings), nil
}

func (m *memoryBookings) GetDetails(_ context.Context, bookingID int64) ([]model.Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.details[bookingID]), nil
}

func (m *memoryBookings) GetBookedLines(_ context.Context, courtIDs, slotIDs []int64, date time.Time) ([]model.Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	day := date.Format(constant.DateOnlyFormat)

	var lines []model.Detail

	for _, details := range m.details {
		for _, detail := range details {
			if detail.CheckInDate.Format(constant.DateOnlyFormat) != day || !detail.Status.HoldsSlot() {
				continue
			}

			if slices.Contains(courtIDs, detail.CourtID) && slices.Contains(slotIDs, detail.TimeSlotID) {
				lines = append(lines, detail)
			}
		}
	}

	return lines, nil
}

func (m *memoryBookings) InsertWithDetails(_ context.Context, booking model.Booking, details []model.Detail) (int64, error) {
	if m.beforeInsert != nil {
		m.beforeInsert()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, detail := range details {
		key := slotKey{detail.CourtID, detail.TimeSlotID, detail.CheckInDate.Format(constant.DateOnlyFormat)}
		if _, taken := m.active[key]; taken {
			return 0, fmt.Errorf("%w: court %d slot %d", repository.ErrSlotTaken, detail.CourtID, detail.TimeSlotID)
		}
	}

	m.nextID++
	booking.ID = m.nextID
	m.bookings[booking.ID] = booking

	lines := make([]model.Detail, len(details))
	for i, detail := range details {
		detail.ID = int64(i + 1)
		detail.BookingID = booking.ID
		lines[i] = detail
		m.active[slotKey{detail.CourtID, detail.TimeSlotID, detail.CheckInDate.Format(constant.DateOnlyFormat)}] = booking.ID
	}

	m.details[booking.ID] = lines

	return booking.ID, nil
}

func (m *memoryBookings) UpdateStatus(_ context.Context, bookingID int64, from []model.Status, status model.Status, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	booking, ok := m.bookings[bookingID]
	if !ok || !slices.Contains(from, booking.Status) {
		return repository.ErrStatusChanged
	}

	booking.Status = status

	if ref, ok := fields[model.FieldTransactionRef].(string); ok {
		booking.TransactionRef = &ref
	}

	m.bookings[bookingID] = booking

	for i, detail := range m.details[bookingID] {
		detail.Status = status
		m.details[bookingID][i] = detail

		if !status.HoldsSlot() {
			delete(m.active, slotKey{detail.CourtID, detail.TimeSlotID, detail.CheckInDate.Format(constant.DateOnlyFormat)})
		}
	}

	return nil
}

type memoryCourts struct {
	courts []courtModel.Court
}

func (m *memoryCourts) GetActive(_ context.Context, facilityID, categoryID int64) ([]courtModel.Court, error) {
	var out []courtModel.Court

	for _, court := range m.courts {
		if court.FacilityID == facilityID && court.CategoryID == categoryID && court.IsActive() {
			out = append(out, court)
		}
	}

	slices.SortFunc(out, func(a, b courtModel.Court) int { return cmp.Compare(a.ID, b.ID) })

	return out, nil
}

func (m *memoryCourts) GetByIDs(_ context.Context, ids []int64) ([]courtModel.Court, error) {
	var out []courtModel.Court

	for _, court := range m.courts {
		if slices.Contains(ids, court.ID) {
			out = append(out, court)
		}
	}

	return out, nil
}

type memorySlots struct {
	slots []slotModel.TimeSlot
}

func (m *memorySlots) GetByFacility(_ context.Context, facilityID int64) ([]slotModel.TimeSlot, error) {
	var out []slotModel.TimeSlot

	for _, slot := range m.slots {
		if slot.FacilityID == facilityID {
			out = append(out, slot)
		}
	}

	return out, nil
}

func (m *memorySlots) GetByIDs(ctx context.Context, facilityID int64, ids []int64) ([]slotModel.TimeSlot, error) {
	all, _ := m.GetByFacility(ctx, facilityID)

	return slices.DeleteFunc(all, func(slot slotModel.TimeSlot) bool {
		return !slices.Contains(ids, slot.ID)
	}), nil
}

// memoryUsers matches on id, email or phone and enforces unique email and phone like the users table.
type memoryUsers struct {
	mu    sync.Mutex
	users []userModel.User
	// beforeInsert runs outside the lock so tests can register a competing account first.
	beforeInsert func()
}

func (m *memoryUsers) matches(user userModel.User, filter gDto.FilterGroup) bool {
	for _, f := range filter.Filters {
		eq, ok := f.(gDto.Filter)
		if !ok {
			continue
		}

		switch eq.Field {
		case userModel.FieldID:
			if id, ok := eq.Value.(int64); ok && id == user.ID {
				return true
			}
		case userModel.FieldEmail:
			if eq.Value == user.Email {
				return true
			}
		case userModel.FieldPhone:
			if eq.Value == user.Phone {
				return true
			}
		}
	}

	return false
}

func (m *memoryUsers) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (userModel.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if m.matches(user, filter) {
			return user, nil
		}
	}

	return userModel.User{}, nil
}

func (m *memoryUsers) GetAll(_ context.Context, _ gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]userModel.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.users), nil
}

func (m *memoryUsers) InsertReturningID(_ context.Context, user userModel.User) (int64, error) {
	if m.beforeInsert != nil {
		m.beforeInsert()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email || existing.Phone == user.Phone {
			return 0, fmt.Errorf("failed to insert data (user): %w", &pq.Error{Code: constant.PqErrorCodeUniqueViolation})
		}
	}

	user.ID = int64(len(m.users) + 1)
	m.users = append(m.users, user)

	return user.ID, nil
}

func (m *memoryUsers) Update(_ context.Context, _ map[string]any, _ gDto.FilterGroup) error {
	return nil
}

type memoryFacilities struct{}

func (memoryFacilities) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (facilityModel.Facility, error) {
	return facilityModel.Facility{ID: filterID(filter), Status: facilityModel.StatusActive}, nil
}

func (memoryFacilities) Exist(_ context.Context, _ gDto.FilterGroup) (bool, error) {
	return true, nil
}

type acceptingMailbox struct{}

func (acceptingMailbox) Verify(context.Context, string) error {
	return nil
}
