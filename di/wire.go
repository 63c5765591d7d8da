//go:build wireinject
// +build wireinject

package di

import (
	"courtside/config"
	"courtside/infras/jwt"
	"courtside/infras/metrics"
	"courtside/infras/otel"
	"courtside/infras/postgres"
	"courtside/infras/redis"
	"courtside/permissions"
	"courtside/shared/cache"
	"courtside/shared/mailbox"
	"courtside/shared/notifier"
	"courtside/transport/http"
	"courtside/transport/http/middleware"
	"courtside/transport/http/router"

	"github.com/google/wire"

	allocService "courtside/internal/domains/allocation/service"
	authService "courtside/internal/domains/auth/service"
	bookingRepository "courtside/internal/domains/booking/repository"
	bookingService "courtside/internal/domains/booking/service"
	courtRepository "courtside/internal/domains/court/repository"
	facilityRepository "courtside/internal/domains/facility/repository"
	slotRepository "courtside/internal/domains/timeslot/repository"
	userRepository "courtside/internal/domains/user/repository"
	authHandler "courtside/internal/handlers/auth"
	availabilityHandler "courtside/internal/handlers/availability"
	bookingHandler "courtside/internal/handlers/booking"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	metrics.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	notifier.New,
	mailbox.New,
)

var repositories = wire.NewSet(
	userRepository.New,
	facilityRepository.New,
	courtRepository.New,
	slotRepository.New,
	bookingRepository.New,
)

var domains = wire.NewSet(
	repositories,
	allocService.New,
	bookingService.New,
	authService.New,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	availabilityHandler.New,
	bookingHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
