package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/flight-cargo-summary/internal/config"
	"github.com/iliyamo/flight-cargo-summary/internal/handler"
	"github.com/iliyamo/flight-cargo-summary/internal/middleware"
	"github.com/iliyamo/flight-cargo-summary/internal/repository"
)

// Deps carries what the routes need.  Redis may be nil, in which case the
// cache and rate limiter pass requests through.  JWTSecret may be empty to
// leave the API unauthenticated.
type Deps struct {
	Flights   *repository.FlightRepo
	Flight    *handler.FlightHandler
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	JWTSecret string
	APIRoles  []string
}

// RegisterRoutes registers the health check and the /api/flights group.
//
// Middleware order on /api: rate limit first so that rejected clients do
// not reach Redis cache lookups, then auth, then the response cache so a
// cached body is only served to an authorised caller.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.Flights))

	var mws []echo.MiddlewareFunc
	if d.Redis != nil {
		mws = append(mws, middleware.NewTokenBucket(d.RateLimit, d.Redis))
	}
	if d.JWTSecret != "" {
		mws = append(mws, middleware.JWTAuth(d.JWTSecret), middleware.RequireRole(d.APIRoles...))
	}
	if d.Redis != nil {
		mws = append(mws, middleware.NewRedisCache(d.Cache, d.Redis))
	}

	g := e.Group("/api/flights", mws...)
	// static segment wins over the :flightNumber param in echo's router
	g.GET("/airport/:iataCode", d.Flight.GetAirportDetails)
	g.GET("/:flightNumber", d.Flight.GetFlightDetails)
}
