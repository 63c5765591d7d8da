package notifier

//go:generate go run go.uber.org/mock/mockgen -source=./notifier.go -destination=./mocks/notifier_mock.go -package=mocks

import (
	"context"
	"courtside/config"
	"courtside/infras/otel"
	"courtside/infras/rabbitmq"
	"courtside/shared/constant"
	"fmt"
	"time"

	goRedis "github.com/redis/go-redis/v9"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingPaid      = "booking.paid"
	EventBookingCompleted = "booking.completed"
	EventBookingCancelled = "booking.cancelled"
)

// Event is what facility staff receive when a booking changes.
type Event struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	FacilityID   int64     `json:"facility_id"`
	BookingID    int64     `json:"booking_id"`
	Status       string    `json:"status"`
	CourtName    string    `json:"court_name"`
	CustomerName string    `json:"customer_name"`
	Date         string    `json:"date"`
	TimeRange    string    `json:"time_range"`
	Amount       float64   `json:"amount"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Notifier delivers events to the facility channel. Delivery is best effort.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
}

func New(cfg *config.Config, client *goRedis.Client, otel otel.Otel) Notifier {
	prefix := cfg.Booking.Notification.ChannelPrefix

	switch cfg.Booking.Notification.Driver {
	case constant.NotificationDriverRabbitMQ:
		return NewRabbitMQ(rabbitmq.New(cfg), prefix, otel)
	default:
		return NewRedis(client, prefix, otel)
	}
}

// Channel names the per-facility destination, e.g. courtside.facility.12.
func Channel(prefix string, facilityID int64) string {
	return fmt.Sprintf("%s.%d", prefix, facilityID)
}
