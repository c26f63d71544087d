//go:build wireinject
// +build wireinject

package di

import (
	"roombooking/config"
	"roombooking/infras/jwt"
	"roombooking/infras/kafka"
	"roombooking/infras/otel"
	"roombooking/infras/postgres"
	"roombooking/infras/redis"
	"roombooking/infras/s3"
	"roombooking/permissions"
	"roombooking/shared/cache"
	"roombooking/transport/http"
	"roombooking/transport/http/middleware"
	"roombooking/transport/http/router"

	"github.com/google/wire"

	authService "roombooking/internal/domains/auth/service"
	bookingEvent "roombooking/internal/domains/booking/event"
	bookingRepository "roombooking/internal/domains/booking/repository"
	bookingService "roombooking/internal/domains/booking/service"
	facilityRepository "roombooking/internal/domains/facility/repository"
	facilityService "roombooking/internal/domains/facility/service"
	photoRepository "roombooking/internal/domains/photo/repository"
	photoService "roombooking/internal/domains/photo/service"
	roomRepository "roombooking/internal/domains/room/repository"
	roomService "roombooking/internal/domains/room/service"
	userRepository "roombooking/internal/domains/user/repository"
	userService "roombooking/internal/domains/user/service"
	authHandler "roombooking/internal/handlers/auth"
	bookingHandler "roombooking/internal/handlers/booking"
	facilityHandler "roombooking/internal/handlers/facility"
	photoHandler "roombooking/internal/handlers/photo"
	roomHandler "roombooking/internal/handlers/room"
	userHandler "roombooking/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	jwt.New,
	kafka.Provide,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
	wire.Bind(new(middleware.RevocationChecker), new(authService.Auth)),
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomRepository.NewRoomFacility,
	roomService.New,
)

var facilityDomain = wire.NewSet(
	facilityRepository.New,
	facilityService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingEvent.New,
	bookingService.New,
)

var photoDomain = wire.NewSet(
	photoRepository.New,
	photoService.New,
)

var domains = wire.NewSet(
	userDomain,
	authDomain,
	roomDomain,
	facilityDomain,
	bookingDomain,
	photoDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	roomHandler.New,
	facilityHandler.New,
	bookingHandler.New,
	photoHandler.New,
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
