package service_test

import (
	"context"
	"courtside/config"
	"courtside/infras/metrics"
	"courtside/infras/otel/mocks"
	allocationMocks "courtside/internal/domains/allocation/mocks"
	allocModel "courtside/internal/domains/allocation/model"
	bookingMocks "courtside/internal/domains/booking/mocks"
	"courtside/internal/domains/booking/model"
	"courtside/internal/domains/booking/model/dto"
	"courtside/internal/domains/booking/repository"
	"courtside/internal/domains/booking/service"
	courtMocks "courtside/internal/domains/court/mocks"
	courtModel "courtside/internal/domains/court/model"
	facilityMocks "courtside/internal/domains/facility/mocks"
	slotMocks "courtside/internal/domains/timeslot/mocks"
	slotModel "courtside/internal/domains/timeslot/model"
	userMocks "courtside/internal/domains/user/mocks"
	userModel "courtside/internal/domains/user/model"
	"courtside/shared"
	"courtside/shared/cache"
	"courtside/shared/constant"
	gDto "courtside/shared/dto"
	"courtside/shared/failure"
	mailboxMocks "courtside/shared/mailbox/mocks"
	"courtside/shared/notifier"
	"courtside/shared/timezone"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const eventTimeout = 2 * time.Second

type lifecycleFixture struct {
	bookings   *bookingMocks.MockBooking
	users      *userMocks.MockUser
	facilities *facilityMocks.MockFacility
	courts     *courtMocks.MockCourt
	slots      *slotMocks.MockTimeSlot
	allocator  *allocationMocks.MockAllocator
	mailbox    *mailboxMocks.MockVerifier
	notifier   *recordingNotifier
	metrics    *metrics.Metrics
	cache      cache.RedisCache
	svc        service.Lifecycle
}

func newLifecycleFixture(t *testing.T) lifecycleFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	f := lifecycleFixture{
		bookings:   bookingMocks.NewMockBooking(ctrl),
		users:      userMocks.NewMockUser(ctrl),
		facilities: facilityMocks.NewMockFacility(ctrl),
		courts:     courtMocks.NewMockCourt(ctrl),
		slots:      slotMocks.NewMockTimeSlot(ctrl),
		allocator:  allocationMocks.NewMockAllocator(ctrl),
		mailbox:    mailboxMocks.NewMockVerifier(ctrl),
		notifier:   newRecordingNotifier(),
		metrics:    metrics.NewWithRegisterer("test", prometheus.NewRegistry()),
		cache:      cache.NewMemoryCache(),
	}

	f.svc = service.New(
		f.bookings, f.users, f.facilities, f.courts, f.slots,
		f.allocator, f.notifier, f.mailbox, f.metrics, cfg, f.cache, mocks.NewOtel(),
	)

	return f
}

func dayOffset(days int) time.Time {
	now := timezone.Now()

	return time.Date(now.Year(), now.Month(), now.Day()+days, 0, 0, 0, 0, now.Location())
}

func testAllocation(date time.Time) allocModel.Allocation {
	return allocModel.Allocation{
		FacilityID: 5,
		CategoryID: 2,
		Date:       date,
		Quote: allocModel.Quote{
			Lines: []allocModel.Line{
				{SlotID: 11, CourtID: 1, CourtName: "Court 1", StartTime: "08:00", EndTime: "09:00", Amount: 100000},
				{SlotID: 12, CourtID: 1, CourtName: "Court 1", StartTime: "09:00", EndTime: "10:00", Amount: 50000},
			},
			Total: 150000,
		},
	}
}

func guestRequest(date time.Time) dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		FacilityID:  5,
		CategoryID:  2,
		TimeSlotIDs: []int64{11, 12},
		CheckInDate: date.Format(constant.DateOnlyFormat),
		FullName:    "Lan Nguyen",
		Email:       "A@b.com",
		Phone:       "0901234567",
	}
}

func TestLifecycle_Create(t *testing.T) {
	tomorrow := dayOffset(1)

	t.Run("registered customer", func(t *testing.T) {
		f := newLifecycleFixture(t)

		req := guestRequest(tomorrow)
		req.UserID = 3
		req.Email, req.Phone = "", ""

		f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: 3, FullName: "Minh"}, nil)
		f.allocator.EXPECT().Allocate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, alloc allocModel.Request) (allocModel.Allocation, error) {
				assert.Equal(t, []int64{11, 12}, alloc.SlotIDs)
				assert.Equal(t, req.CheckInDate, alloc.Date.Format(constant.DateOnlyFormat))

				return testAllocation(alloc.Date), nil
			})
		f.bookings.EXPECT().InsertWithDetails(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, booking model.Booking, details []model.Detail) (int64, error) {
				assert.Equal(t, int64(3), booking.UserID)
				assert.Equal(t, model.StatusCreated, booking.Status)
				assert.InDelta(t, 150000, booking.TotalPrice, 1e-9)
				require.Len(t, details, 2)

				for _, detail := range details {
					assert.Equal(t, model.StatusCreated, detail.Status)
				}

				return 42, nil
			})

		res, err := f.svc.Create(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, int64(42), res.BookingID)
		assert.Equal(t, "created", res.Status)
		assert.Equal(t, 1, res.StatusCode)
		assert.InDelta(t, 150000, res.TotalPrice, 1e-9)
		assert.Len(t, res.Lines, 2)
		assert.Equal(t, int64(3), res.Customer.UserID)
		assert.False(t, res.Customer.Registered)
		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.BookingsCreated), 1e-9)

		event, ok := f.notifier.next(eventTimeout)
		require.True(t, ok)
		assert.Equal(t, notifier.EventBookingCreated, event.Type)
		assert.Equal(t, int64(42), event.BookingID)
		assert.Equal(t, "Court 1", event.CourtName)
		assert.Equal(t, "Minh", event.CustomerName)
		assert.Equal(t, "08:00-09:00, 09:00-10:00", event.TimeRange)
		assert.NotEmpty(t, event.ID)
	})

	t.Run("guest is registered once and owns the booking", func(t *testing.T) {
		f := newLifecycleFixture(t)

		f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.users.EXPECT().Get(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter gDto.FilterGroup, _ ...string) (userModel.User, error) {
				assert.Equal(t, gDto.FilterGroupOperatorOr, filter.Operator)
				assert.Len(t, filter.Filters, 2)

				return userModel.User{}, nil
			})
		f.mailbox.EXPECT().Verify(gomock.Any(), "a@b.com").Return(nil)
		f.allocator.EXPECT().Allocate(gomock.Any(), gomock.Any()).Return(testAllocation(tomorrow), nil)
		f.users.EXPECT().InsertReturningID(gomock.Any(), gomock.Any()).Times(1).
			DoAndReturn(func(_ context.Context, user userModel.User) (int64, error) {
				assert.Equal(t, "a@b.com", user.Email)
				assert.Equal(t, "0901234567", user.Phone)
				assert.Equal(t, "Lan Nguyen", user.FullName)
				assert.Equal(t, userModel.LevelGuest, user.Level)
				assert.NotEmpty(t, user.Password)

				return 77, nil
			})
		f.bookings.EXPECT().InsertWithDetails(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, booking model.Booking, _ []model.Detail) (int64, error) {
				assert.Equal(t, int64(77), booking.UserID)

				return 43, nil
			})

		res, err := f.svc.Create(context.Background(), guestRequest(tomorrow))
		require.NoError(t, err)

		assert.Equal(t, int64(43), res.BookingID)
		assert.Equal(t, int64(77), res.Customer.UserID)
		assert.Equal(t, "a@b.com", res.Customer.Email)
		assert.True(t, res.Customer.Registered)
	})

	t.Run("guest matching an account reuses it", func(t *testing.T) {
		f := newLifecycleFixture(t)

		f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: 8, Email: "a@b.com"}, nil)
		f.allocator.EXPECT().Allocate(gomock.Any(), gomock.Any()).Return(testAllocation(tomorrow), nil)
		f.bookings.EXPECT().InsertWithDetails(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(44), nil)

		res, err := f.svc.Create(context.Background(), guestRequest(tomorrow))
		require.NoError(t, err)

		assert.Equal(t, int64(8), res.Customer.UserID)
		assert.False(t, res.Customer.Registered)
	})

	t.Run("guest registered by a concurrent request reuses that account", func(t *testing.T) {
		f := newLifecycleFixture(t)

		f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.mailbox.EXPECT().Verify(gomock.Any(), "a@b.com").Return(nil)
		f.allocator.EXPECT().Allocate(gomock.Any(), gomock.Any()).Return(testAllocation(tomorrow), nil)
		gomock.InOrder(
			f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil),
			f.users.EXPECT().InsertReturningID(gomock.Any(), gomock.Any()).
				Return(int64(0), fmt.Errorf("failed to insert data (user): %w", &pq.Error{Code: constant.PqErrorCodeUniqueViolation})),
			f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: 9, Email: "a@b.com"}, nil),
		)
		f.bookings.EXPECT().InsertWithDetails(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, booking model.Booking, _ []model.Detail) (int64, error) {
				assert.Equal(t, int64(9), booking.UserID)

				return 45, nil
			})

		res, err := f.svc.Create(context.Background(), guestRequest(tomorrow))
		require.NoError(t, err)

		assert.Equal(t, int64(9), res.Customer.UserID)
		assert.False(t, res.Customer.Registered)
	})

	t.Run("guest insert failure is a storage error", func(t *testing.T) {
		f := newLifecycleFixture(t)

		f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.mailbox.EXPECT().Verify(gomock.Any(), "a@b.com").Return(nil)
		f.allocator.EXPECT().Allocate(gomock.Any(), gomock.Any()).Return(testAllocation(tomorrow), nil)
		f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
		f.users.EXPECT().InsertReturningID(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("connection reset"))

		_, err := f.svc.Create(context.Background(), guestRequest(tomorrow))
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})

	tests := []struct {
		name      string
		req       func() dto.CreateBookingRequest
		setupMock func(f lifecycleFixture)
		wantCode  int
		wantMsg   string
	}{
		{
			name: "date in the past",
			req: func() dto.CreateBookingRequest {
				return guestRequest(dayOffset(-1))
			},
			setupMock: func(lifecycleFixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "malformed date",
			req: func() dto.CreateBookingRequest {
				req := guestRequest(tomorrow)
				req.CheckInDate = "17/05/2030"

				return req
			},
			setupMock: func(lifecycleFixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "facility missing",
			req: func() dto.CreateBookingRequest {
				return guestRequest(tomorrow)
			},
			setupMock: func(f lifecycleFixture) {
				f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusNotFound,
			wantMsg:  "facility not found",
		},
		{
			name: "unknown user",
			req: func() dto.CreateBookingRequest {
				req := guestRequest(tomorrow)
				req.UserID = 404

				return req
			},
			setupMock: func(f lifecycleFixture) {
				f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantCode: http.StatusNotFound,
			wantMsg:  "user not found",
		},
		{
			name: "guest without phone",
			req: func() dto.CreateBookingRequest {
				req := guestRequest(tomorrow)
				req.Phone = ""

				return req
			},
			setupMock: func(f lifecycleFixture) {
				f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "guest with a landline",
			req: func() dto.CreateBookingRequest {
				req := guestRequest(tomorrow)
				req.Phone = "0241234567"

				return req
			},
			setupMock: func(f lifecycleFixture) {
				f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "undeliverable guest email",
			req: func() dto.CreateBookingRequest {
				return guestRequest(tomorrow)
			},
			setupMock: func(f lifecycleFixture) {
				f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
				f.mailbox.EXPECT().Verify(gomock.Any(), "a@b.com").Return(failure.BadRequestFromString("email domain cannot receive mail"))
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "insufficient availability registers nobody",
			req: func() dto.CreateBookingRequest {
				return guestRequest(tomorrow)
			},
			setupMock: func(f lifecycleFixture) {
				f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
				f.mailbox.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(nil)
				f.allocator.EXPECT().Allocate(gomock.Any(), gomock.Any()).
					Return(allocModel.Allocation{}, failure.Conflict("insufficient availability: no court is free for time slot 11"))
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "court taken between read and write",
			req: func() dto.CreateBookingRequest {
				req := guestRequest(tomorrow)
				req.UserID = 3

				return req
			},
			setupMock: func(f lifecycleFixture) {
				f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: 3}, nil)
				f.allocator.EXPECT().Allocate(gomock.Any(), gomock.Any()).Return(testAllocation(tomorrow), nil)
				f.bookings.EXPECT().InsertWithDetails(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(int64(0), fmt.Errorf("%w: duplicate key", repository.ErrSlotTaken))
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "storage failure",
			req: func() dto.CreateBookingRequest {
				req := guestRequest(tomorrow)
				req.UserID = 3

				return req
			},
			setupMock: func(f lifecycleFixture) {
				f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: 3}, nil)
				f.allocator.EXPECT().Allocate(gomock.Any(), gomock.Any()).Return(testAllocation(tomorrow), nil)
				f.bookings.EXPECT().InsertWithDetails(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(int64(0), errors.New("connection reset"))
			},
			wantCode: http.StatusInternalServerError,
			wantMsg:  "failed to save changes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLifecycleFixture(t)
			tt.setupMock(f)

			_, err := f.svc.Create(context.Background(), tt.req())

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))

			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}

			assert.Zero(t, testutil.ToFloat64(f.metrics.BookingsCreated))
		})
	}
}

func TestLifecycle_CreateConflictsAreCounted(t *testing.T) {
	f := newLifecycleFixture(t)

	req := guestRequest(dayOffset(1))
	req.UserID = 3

	f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil).Times(2)
	f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{ID: 3}, nil).Times(2)
	f.allocator.EXPECT().Allocate(gomock.Any(), gomock.Any()).
		Return(allocModel.Allocation{}, failure.Conflict("insufficient availability")).Times(2)

	for range 2 {
		_, err := f.svc.Create(context.Background(), req)
		require.Error(t, err)
	}

	assert.InDelta(t, 2, testutil.ToFloat64(f.metrics.AllocationConflicts), 1e-9)
}

func TestLifecycle_Get(t *testing.T) {
	f := newLifecycleFixture(t)

	ref := "TX-9"
	booking := model.Booking{
		ID:             1,
		UserID:         3,
		FacilityID:     5,
		CategoryID:     2,
		CheckInDate:    dayOffset(1),
		TotalPrice:     150000,
		Status:         model.StatusPaid,
		TransactionRef: &ref,
	}

	f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking, nil).Times(1)
	f.bookings.EXPECT().GetDetails(gomock.Any(), int64(1)).
		Return([]model.Detail{{ID: 1, BookingID: 1, CourtID: 1, TimeSlotID: 11, Price: 100000, Status: model.StatusPaid}}, nil).Times(1)

	res, err := f.svc.Get(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "paid", res.Status)
	assert.Equal(t, "TX-9", res.TransactionRef)
	require.Len(t, res.Details, 1)
	assert.Equal(t, int64(11), res.Details[0].TimeSlotID)

	key := shared.BuildCacheKey("booking:get", int64(1))
	assert.Eventually(t, func() bool {
		var cached dto.BookingResponse

		return f.cache.Get(context.Background(), key, &cached) == nil
	}, eventTimeout, 10*time.Millisecond)

	again, err := f.svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, res, again)
}

func TestLifecycle_GetNotFound(t *testing.T) {
	f := newLifecycleFixture(t)

	f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)

	_, err := f.svc.Get(context.Background(), 99)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestLifecycle_List(t *testing.T) {
	req := dto.ListBookingsRequest{
		FacilityID:  5,
		QueryParams: gDto.QueryParams{Page: 2, Limit: 2},
	}

	t.Run("pages and hides cancelled bookings", func(t *testing.T) {
		f := newLifecycleFixture(t)

		f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.bookings.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
				assert.Len(t, filter.Filters, 2)

				return 5, nil
			})
		f.bookings.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
				assert.Equal(t, 2, params.Page)
				assert.Equal(t, "bookings.created_at", params.SortBy)

				return []model.Booking{
					{ID: 3, FacilityID: 5, Status: model.StatusPaid},
					{ID: 4, FacilityID: 5, Status: model.StatusCreated},
				}, nil
			})

		res, err := f.svc.List(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 5, res.TotalData)
		assert.Equal(t, 3, res.TotalPage)
		require.Len(t, res.Bookings, 2)
		assert.Equal(t, "paid", res.Bookings[0].Status)
	})

	t.Run("unknown facility", func(t *testing.T) {
		f := newLifecycleFixture(t)

		f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := f.svc.List(context.Background(), req)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("count error", func(t *testing.T) {
		f := newLifecycleFixture(t)

		f.facilities.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.bookings.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errors.New("connection refused"))

		_, err := f.svc.List(context.Background(), req)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})
}

type transitionFunc func(svc service.Lifecycle, ctx context.Context, id int64) (dto.TransitionResponse, error)

var transitions = map[model.Transition]transitionFunc{
	model.TransitionConfirm: func(svc service.Lifecycle, ctx context.Context, id int64) (dto.TransitionResponse, error) {
		return svc.MarkConfirmed(ctx, id)
	},
	model.TransitionPay: func(svc service.Lifecycle, ctx context.Context, id int64) (dto.TransitionResponse, error) {
		return svc.MarkPaid(ctx, id, dto.PayBookingRequest{TransactionRef: "TX-1"})
	},
	model.TransitionComplete: func(svc service.Lifecycle, ctx context.Context, id int64) (dto.TransitionResponse, error) {
		return svc.MarkCompleted(ctx, id)
	},
	model.TransitionCancel: func(svc service.Lifecycle, ctx context.Context, id int64) (dto.TransitionResponse, error) {
		return svc.MarkCancelled(ctx, id)
	},
}

func expectSummary(f lifecycleFixture) {
	f.users.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(userModel.User{ID: 3, FullName: "Minh"}, nil)
	f.bookings.EXPECT().GetDetails(gomock.Any(), int64(1)).Return([]model.Detail{
		{CourtID: 1, TimeSlotID: 11},
		{CourtID: 1, TimeSlotID: 12},
	}, nil)
	f.courts.EXPECT().GetByIDs(gomock.Any(), []int64{1}).Return([]courtModel.Court{{ID: 1, Name: "Court 1"}}, nil)
	f.slots.EXPECT().GetByIDs(gomock.Any(), int64(5), []int64{11, 12}).Return([]slotModel.TimeSlot{
		{ID: 11, StartTime: "08:00:00", EndTime: "09:00:00"},
		{ID: 12, StartTime: "09:00:00", EndTime: "10:00:00"},
	}, nil)
}

func TestLifecycle_TransitionTable(t *testing.T) {
	statuses := []model.Status{
		model.StatusCreated,
		model.StatusConfirmed,
		model.StatusPaid,
		model.StatusCancelled,
		model.StatusCompleted,
	}

	for transition, run := range transitions {
		for _, from := range statuses {
			t.Run(fmt.Sprintf("%s from %s", transition, from), func(t *testing.T) {
				f := newLifecycleFixture(t)

				booking := model.Booking{ID: 1, UserID: 3, FacilityID: 5, CheckInDate: dayOffset(-1), TotalPrice: 150000, Status: from}
				f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking, nil)

				if transition.Allows(from) {
					f.bookings.EXPECT().UpdateStatus(gomock.Any(), int64(1), transition.From(), transition.Target(), gomock.Any()).Return(nil)
					expectSummary(f)
				}

				res, err := run(f.svc, context.Background(), 1)

				switch {
				case from == model.StatusCompleted:
					require.Error(t, err)
					assert.Equal(t, http.StatusConflict, failure.GetCode(err))
					assert.Equal(t, "booking already completed", err.Error())
				case !transition.Allows(from):
					require.Error(t, err)
					assert.Equal(t, http.StatusConflict, failure.GetCode(err))
					assert.Equal(t, transition.RejectionMessage(), err.Error())
				default:
					require.NoError(t, err)
					assert.Equal(t, from.String(), res.PreviousStatus)
					assert.Equal(t, transition.Target().String(), res.Status)
					assert.Equal(t, int(transition.Target()), res.StatusCode)
					assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Transitions.WithLabelValues(transition.Target().String())), 1e-9)
				}
			})
		}
	}
}

func TestLifecycle_MarkPaid(t *testing.T) {
	f := newLifecycleFixture(t)

	key := shared.BuildCacheKey("booking:get", int64(1))
	require.NoError(t, f.cache.Save(context.Background(), key, dto.BookingResponse{ID: 1, Status: "created"}, 60))

	f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).
		Return(model.Booking{ID: 1, UserID: 3, FacilityID: 5, CheckInDate: dayOffset(2), TotalPrice: 150000, Status: model.StatusCreated}, nil)
	f.bookings.EXPECT().UpdateStatus(gomock.Any(), int64(1), gomock.Any(), model.StatusPaid, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, from []model.Status, _ model.Status, fields map[string]any) error {
			assert.Equal(t, []model.Status{model.StatusCreated, model.StatusConfirmed}, from)
			assert.Equal(t, "TX-1", fields[model.FieldTransactionRef])
			assert.Equal(t, "cashier-7", fields[constant.FieldModifiedBy])

			return nil
		})
	expectSummary(f)

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "cashier-7")
	res, err := f.svc.MarkPaid(ctx, 1, dto.PayBookingRequest{TransactionRef: " TX-1 "})
	require.NoError(t, err)
	assert.Equal(t, "paid", res.Status)

	var cached dto.BookingResponse
	assert.Error(t, f.cache.Get(context.Background(), key, &cached), "stale booking must be evicted")

	event, ok := f.notifier.next(eventTimeout)
	require.True(t, ok)
	assert.Equal(t, notifier.EventBookingPaid, event.Type)
	assert.Equal(t, "paid", event.Status)
	assert.Equal(t, "Court 1", event.CourtName)
	assert.Equal(t, "Minh", event.CustomerName)
	assert.Equal(t, "08:00-09:00, 09:00-10:00", event.TimeRange)
	assert.InDelta(t, 150000, event.Amount, 1e-9)
	assert.Equal(t, dayOffset(2).Format(constant.DateOnlyFormat), event.Date)
}

func TestLifecycle_MarkPaidTwice(t *testing.T) {
	f := newLifecycleFixture(t)

	f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).
		Return(model.Booking{ID: 1, FacilityID: 5, CheckInDate: dayOffset(1), Status: model.StatusPaid}, nil)

	_, err := f.svc.MarkPaid(context.Background(), 1, dto.PayBookingRequest{})

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	assert.Equal(t, "booking status does not allow payment", err.Error())
}

func TestLifecycle_MarkCompleted(t *testing.T) {
	t.Run("before check-in date", func(t *testing.T) {
		f := newLifecycleFixture(t)

		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).
			Return(model.Booking{ID: 1, FacilityID: 5, CheckInDate: dayOffset(1), Status: model.StatusPaid}, nil)

		_, err := f.svc.MarkCompleted(context.Background(), 1)

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		assert.Equal(t, "cannot complete a booking before its check-in date", err.Error())
	})

	t.Run("on check-in date", func(t *testing.T) {
		f := newLifecycleFixture(t)

		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).
			Return(model.Booking{ID: 1, UserID: 3, FacilityID: 5, CheckInDate: dayOffset(0), Status: model.StatusPaid}, nil)
		f.bookings.EXPECT().UpdateStatus(gomock.Any(), int64(1), gomock.Any(), model.StatusCompleted, gomock.Any()).Return(nil)
		expectSummary(f)

		res, err := f.svc.MarkCompleted(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "completed", res.Status)
	})

	t.Run("booking not found", func(t *testing.T) {
		f := newLifecycleFixture(t)

		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)

		_, err := f.svc.MarkCompleted(context.Background(), 1)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newLifecycleFixture(t)

		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).
			Return(model.Booking{ID: 1, FacilityID: 5, CheckInDate: dayOffset(-3), Status: model.StatusPaid}, nil)
		f.bookings.EXPECT().UpdateStatus(gomock.Any(), int64(1), gomock.Any(), model.StatusCompleted, gomock.Any()).Return(errors.New("deadlock detected"))

		_, err := f.svc.MarkCompleted(context.Background(), 1)

		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
		assert.Equal(t, "failed to save changes", err.Error())
	})

	t.Run("cancelled concurrently", func(t *testing.T) {
		f := newLifecycleFixture(t)

		gomock.InOrder(
			f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).
				Return(model.Booking{ID: 1, FacilityID: 5, CheckInDate: dayOffset(-1), Status: model.StatusPaid}, nil),
			f.bookings.EXPECT().UpdateStatus(gomock.Any(), int64(1), model.TransitionComplete.From(), model.StatusCompleted, gomock.Any()).
				Return(repository.ErrStatusChanged),
			f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).
				Return(model.Booking{ID: 1, FacilityID: 5, CheckInDate: dayOffset(-1), Status: model.StatusCancelled}, nil),
		)

		_, err := f.svc.MarkCompleted(context.Background(), 1)

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
		assert.Equal(t, model.TransitionComplete.RejectionMessage(), err.Error())
		assert.Zero(t, testutil.ToFloat64(f.metrics.Transitions.WithLabelValues(model.StatusCompleted.String())))
	})
}

func TestLifecycle_MarkCancelled(t *testing.T) {
	f := newLifecycleFixture(t)

	date := dayOffset(1)
	key := shared.BuildCacheKey("availability", int64(5), int64(2), date.Format(constant.DateOnlyFormat))
	require.NoError(t, f.cache.Save(context.Background(), key, []allocModel.SlotAvailability{{SlotID: 11}}, 60))

	f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).
		Return(model.Booking{ID: 1, UserID: 3, FacilityID: 5, CheckInDate: date, Status: model.StatusConfirmed}, nil)
	f.bookings.EXPECT().UpdateStatus(gomock.Any(), int64(1), gomock.Any(), model.StatusCancelled, gomock.Any()).Return(nil)
	expectSummary(f)

	res, err := f.svc.MarkCancelled(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", res.PreviousStatus)
	assert.Equal(t, "cancelled", res.Status)

	event, ok := f.notifier.next(eventTimeout)
	require.True(t, ok)
	assert.Equal(t, notifier.EventBookingCancelled, event.Type)

	assert.Eventually(t, func() bool {
		var cached []allocModel.SlotAvailability

		return f.cache.Get(context.Background(), key, &cached) != nil
	}, eventTimeout, 10*time.Millisecond)
}

func TestLifecycle_NotificationFailureKeepsTransition(t *testing.T) {
	f := newLifecycleFixture(t)
	f.notifier.err = errors.New("broker unavailable")

	f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).
		Return(model.Booking{ID: 1, UserID: 3, FacilityID: 5, CheckInDate: dayOffset(1), Status: model.StatusCreated}, nil)
	f.bookings.EXPECT().UpdateStatus(gomock.Any(), int64(1), gomock.Any(), model.StatusConfirmed, gomock.Any()).Return(nil)
	expectSummary(f)

	res, err := f.svc.MarkConfirmed(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", res.Status)

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(f.metrics.NotificationFailures.WithLabelValues(notifier.EventBookingConfirmed)) == 1
	}, eventTimeout, 10*time.Millisecond)
}
