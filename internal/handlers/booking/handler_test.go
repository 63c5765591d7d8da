package booking_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"courtside/infras/otel/mocks"
	bookingMocks "courtside/internal/domains/booking/mocks"
	"courtside/internal/domains/booking/model/dto"
	"courtside/internal/handlers/booking"
	"courtside/shared/constant"
	"courtside/shared/failure"
	"courtside/transport/http/response"
)

type caller struct {
	id   string
	role string
}

func newRouter(t *testing.T, who *caller) (*bookingMocks.MockLifecycle, http.Handler) {
	t.Helper()

	svc := bookingMocks.NewMockLifecycle(gomock.NewController(t))
	handler := booking.New(svc, mocks.NewOtel())

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if who != nil {
				ctx := context.WithValue(r.Context(), constant.ContextKeyUserID, who.id)
				ctx = context.WithValue(ctx, constant.ContextKeyUserRole, who.role)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	})
	router.Route("/v1", handler.Router)

	return svc, router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func envelope[T any](t *testing.T, rec *httptest.ResponseRecorder) response.Envelope[T] {
	t.Helper()

	var body response.Envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

const guestBody = `{
	"facility_id": 5,
	"category_id": 2,
	"time_slot_ids": [11, 12],
	"check_in_date": "2030-01-02",
	"email": "lan@example.com",
	"phone": "0901234567"
}`

func TestHandler_CreateBooking(t *testing.T) {
	t.Run("guest booking", func(t *testing.T) {
		svc, router := newRouter(t, nil)

		svc.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req dto.CreateBookingRequest) (dto.CreateBookingResponse, error) {
				assert.Zero(t, req.UserID)
				assert.Equal(t, []int64{11, 12}, req.TimeSlotIDs)

				return dto.CreateBookingResponse{BookingID: 40, Status: "created", StatusCode: 1}, nil
			})

		rec := serve(router, http.MethodPost, "/v1/bookings", guestBody)

		assert.Equal(t, http.StatusCreated, rec.Code)

		body := envelope[dto.CreateBookingResponse](t, rec)
		assert.True(t, body.Success)
		require.NotNil(t, body.Data)
		assert.Equal(t, int64(40), body.Data.BookingID)
	})

	t.Run("signed in customer books as themselves", func(t *testing.T) {
		svc, router := newRouter(t, &caller{id: "8", role: constant.RoleUser})

		svc.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req dto.CreateBookingRequest) (dto.CreateBookingResponse, error) {
				assert.Equal(t, int64(8), req.UserID)

				return dto.CreateBookingResponse{BookingID: 41}, nil
			})

		rec := serve(router, http.MethodPost, "/v1/bookings", `{"facility_id":5,"category_id":2,"time_slot_ids":[11],"check_in_date":"2030-01-02"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("signed in customer cannot book for another user", func(t *testing.T) {
		svc, router := newRouter(t, &caller{id: "8", role: constant.RoleUser})

		svc.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req dto.CreateBookingRequest) (dto.CreateBookingResponse, error) {
				assert.Equal(t, int64(8), req.UserID)

				return dto.CreateBookingResponse{BookingID: 42}, nil
			})

		rec := serve(router, http.MethodPost, "/v1/bookings", `{"facility_id":5,"category_id":2,"time_slot_ids":[11],"check_in_date":"2030-01-02","user_id":99}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("staff booking without contact fields is rejected", func(t *testing.T) {
		_, router := newRouter(t, &caller{id: "3", role: constant.RoleOwner})

		rec := serve(router, http.MethodPost, "/v1/bookings", `{"facility_id":5,"category_id":2,"time_slot_ids":[11],"check_in_date":"2030-01-02"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("anonymous caller cannot name a user", func(t *testing.T) {
		_, router := newRouter(t, nil)

		rec := serve(router, http.MethodPost, "/v1/bookings", `{"facility_id":5,"category_id":2,"time_slot_ids":[11],"check_in_date":"2030-01-02","user_id":99}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		_, router := newRouter(t, nil)

		rec := serve(router, http.MethodPost, "/v1/bookings", `{"facility_id":5,"time_slot_ids":[],"check_in_date":"tomorrow"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, envelope[any](t, rec).Success)
	})

	t.Run("insufficient availability", func(t *testing.T) {
		svc, router := newRouter(t, nil)

		svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dto.CreateBookingResponse{}, failure.Conflict("insufficient availability"))

		rec := serve(router, http.MethodPost, "/v1/bookings", guestBody)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "insufficient availability", envelope[any](t, rec).Message)
	})
}

func TestHandler_GetBooking(t *testing.T) {
	t.Run("owner of the booking", func(t *testing.T) {
		svc, router := newRouter(t, &caller{id: "8", role: constant.RoleUser})

		svc.EXPECT().Get(gomock.Any(), int64(3)).Return(dto.BookingResponse{ID: 3, UserID: 8}, nil)

		rec := serve(router, http.MethodGet, "/v1/bookings/3", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("someone else's booking", func(t *testing.T) {
		svc, router := newRouter(t, &caller{id: "9", role: constant.RoleUser})

		svc.EXPECT().Get(gomock.Any(), int64(3)).Return(dto.BookingResponse{ID: 3, UserID: 8}, nil)

		rec := serve(router, http.MethodGet, "/v1/bookings/3", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("facility staff see every booking", func(t *testing.T) {
		svc, router := newRouter(t, &caller{id: "2", role: constant.RoleOwner})

		svc.EXPECT().Get(gomock.Any(), int64(3)).Return(dto.BookingResponse{ID: 3, UserID: 8}, nil)

		rec := serve(router, http.MethodGet, "/v1/bookings/3", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		_, router := newRouter(t, nil)

		rec := serve(router, http.MethodGet, "/v1/bookings/abc", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Transitions(t *testing.T) {
	owner := &caller{id: "2", role: constant.RoleOwner}

	t.Run("confirm", func(t *testing.T) {
		svc, router := newRouter(t, owner)

		svc.EXPECT().MarkConfirmed(gomock.Any(), int64(3)).Return(dto.TransitionResponse{BookingID: 3, PreviousStatus: "created", Status: "confirmed", StatusCode: 2}, nil)

		rec := serve(router, http.MethodPatch, "/v1/bookings/3/confirm", "")

		assert.Equal(t, http.StatusOK, rec.Code)

		body := envelope[dto.TransitionResponse](t, rec)
		require.NotNil(t, body.Data)
		assert.Equal(t, "confirmed", body.Data.Status)
	})

	t.Run("pay with reference", func(t *testing.T) {
		svc, router := newRouter(t, owner)

		svc.EXPECT().MarkPaid(gomock.Any(), int64(3), dto.PayBookingRequest{TransactionRef: "TX-9"}).Return(dto.TransitionResponse{Status: "paid"}, nil)

		rec := serve(router, http.MethodPatch, "/v1/bookings/3/pay", `{"transaction_ref":"TX-9"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("pay without body", func(t *testing.T) {
		svc, router := newRouter(t, owner)

		svc.EXPECT().MarkPaid(gomock.Any(), int64(3), dto.PayBookingRequest{}).Return(dto.TransitionResponse{Status: "paid"}, nil)

		rec := serve(router, http.MethodPatch, "/v1/bookings/3/pay", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("complete rejected", func(t *testing.T) {
		svc, router := newRouter(t, owner)

		svc.EXPECT().MarkCompleted(gomock.Any(), int64(3)).Return(dto.TransitionResponse{}, failure.Conflict("booking already completed"))

		rec := serve(router, http.MethodPatch, "/v1/bookings/3/complete", "")

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "booking already completed", envelope[any](t, rec).Message)
	})

	t.Run("customer cancels own booking", func(t *testing.T) {
		svc, router := newRouter(t, &caller{id: "8", role: constant.RoleUser})

		svc.EXPECT().Get(gomock.Any(), int64(3)).Return(dto.BookingResponse{ID: 3, UserID: 8}, nil)
		svc.EXPECT().MarkCancelled(gomock.Any(), int64(3)).Return(dto.TransitionResponse{Status: "cancelled"}, nil)

		rec := serve(router, http.MethodPatch, "/v1/bookings/3/cancel", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("customer cannot cancel another booking", func(t *testing.T) {
		svc, router := newRouter(t, &caller{id: "9", role: constant.RoleUser})

		svc.EXPECT().Get(gomock.Any(), int64(3)).Return(dto.BookingResponse{ID: 3, UserID: 8}, nil)

		rec := serve(router, http.MethodPatch, "/v1/bookings/3/cancel", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_GetFacilityBookings(t *testing.T) {
	owner := &caller{id: "2", role: constant.RoleOwner}

	t.Run("filters reach the service", func(t *testing.T) {
		svc, router := newRouter(t, owner)

		svc.EXPECT().
			List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req dto.ListBookingsRequest) (dto.GetBookingsResponse, error) {
				assert.Equal(t, int64(5), req.FacilityID)
				assert.Equal(t, "2030-01-02", req.Date)
				assert.Equal(t, 7, req.Status)
				require.NotNil(t, req.IncludeCancelled)
				assert.True(t, *req.IncludeCancelled)
				assert.Equal(t, 2, req.Page)
				assert.Equal(t, constant.DefaultValueLimit, req.Limit)

				return dto.GetBookingsResponse{TotalData: 1, TotalPage: 1}, nil
			})

		rec := serve(router, http.MethodGet, "/v1/facilities/5/bookings?date=2030-01-02&status=7&include_cancelled=true&page=2", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, router := newRouter(t, owner)

		rec := serve(router, http.MethodGet, "/v1/facilities/5/bookings?status=4", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
