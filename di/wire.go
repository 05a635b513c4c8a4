//go:build wireinject
// +build wireinject

package di

import (
	"confbook/config"
	"confbook/infras/jwt"
	"confbook/infras/kafka"
	"confbook/infras/mailer"
	"confbook/infras/otel"
	"confbook/infras/postgres"
	"confbook/infras/redis"
	"confbook/infras/s3"
	"confbook/internal/notification"
	"confbook/permissions"
	"confbook/shared/cache"
	"confbook/transport/http"
	"confbook/transport/http/middleware"
	"confbook/transport/http/router"

	"github.com/google/wire"

	authService "confbook/internal/domains/auth/service"
	bookingRepository "confbook/internal/domains/booking/repository"
	bookingService "confbook/internal/domains/booking/service"
	categoryRepository "confbook/internal/domains/category/repository"
	categoryService "confbook/internal/domains/category/service"
	conferenceRepository "confbook/internal/domains/conference/repository"
	conferenceService "confbook/internal/domains/conference/service"
	locationRepository "confbook/internal/domains/location/repository"
	locationService "confbook/internal/domains/location/service"
	reportRepository "confbook/internal/domains/report/repository"
	reportService "confbook/internal/domains/report/service"
	userRepository "confbook/internal/domains/user/repository"
	userService "confbook/internal/domains/user/service"

	authHandler "confbook/internal/handlers/auth"
	bookingHandler "confbook/internal/handlers/booking"
	categoryHandler "confbook/internal/handlers/category"
	conferenceHandler "confbook/internal/handlers/conference"
	locationHandler "confbook/internal/handlers/location"
	reportHandler "confbook/internal/handlers/report"
	userHandler "confbook/internal/handlers/user"
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
	s3.New,
	kafka.New,
	mailer.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	notification.New,
)

var authDomain = wire.NewSet(
	userRepository.New,
	authService.New,
)

var userDomain = wire.NewSet(
	userService.New,
)

var locationDomain = wire.NewSet(
	locationRepository.New,
	locationService.New,
)

var categoryDomain = wire.NewSet(
	categoryRepository.New,
	categoryService.New,
)

var conferenceDomain = wire.NewSet(
	conferenceRepository.New,
	conferenceService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var reportDomain = wire.NewSet(
	reportRepository.New,
	reportService.New,
)

var domains = wire.NewSet(
	authDomain,
	userDomain,
	locationDomain,
	categoryDomain,
	conferenceDomain,
	bookingDomain,
	reportDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	locationHandler.New,
	categoryHandler.New,
	conferenceHandler.New,
	bookingHandler.New,
	reportHandler.New,
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
