package main

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/safetynet/alerts/internal/config"
	"github.com/safetynet/alerts/internal/domain/address"
	"github.com/safetynet/alerts/internal/domain/alerts"
	"github.com/safetynet/alerts/internal/domain/firestation"
	"github.com/safetynet/alerts/internal/domain/medicalrecord"
	"github.com/safetynet/alerts/internal/domain/person"
	"github.com/safetynet/alerts/internal/platform/apierror"
	"github.com/safetynet/alerts/internal/platform/auth"
	"github.com/safetynet/alerts/internal/platform/cache"
	"github.com/safetynet/alerts/internal/platform/db"
	"github.com/safetynet/alerts/internal/platform/metrics"
	"github.com/safetynet/alerts/internal/platform/middleware"
)

const version = "0.1.0"

// stores bundles the repositories and the transactor they share.
type stores struct {
	addresses address.Repository
	persons   person.Repository
	records   medicalrecord.Repository
	tx        db.Transactor
}

func newStores(pool *pgxpool.Pool) *stores {
	return &stores{
		addresses: address.NewAddressRepoPG(pool),
		persons:   person.NewPersonRepoPG(pool),
		records:   medicalrecord.NewMedicalRecordRepoPG(pool),
		tx:        db.NewTransactor(pool),
	}
}

// newServer assembles the echo instance with every route except /health/db,
// which needs the pool. store may be nil.
func newServer(cfg *config.Config, logger zerolog.Logger, s *stores, store cache.Store, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apierror.HTTPErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger, middleware.LoggerConfig{IncludePayload: cfg.HTTPLogPayload}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(echomw.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Metrics(m))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	apiDocs().RegisterRoutes(e)
	e.GET("/actuator/info", db.InfoHandler(map[string]db.Counter{
		"personsCount":        s.persons,
		"medicalRecordsCount": s.records,
		"addressesCount":      s.addresses,
	}))

	api := e.Group("")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	if store != nil {
		api.Use(middleware.InvalidateOnWrite(store, logger))
	}

	write := auth.WriteGuard(auth.JWTConfig{
		Issuer:     cfg.AuthIssuer,
		SigningKey: []byte(cfg.AuthSigningKey),
	})

	personSvc := person.NewService(s.persons, s.addresses, s.records, s.tx)
	person.NewHandler(personSvc, m).RegisterRoutes(api, write...)

	recordSvc := medicalrecord.NewService(s.records, s.persons, s.tx)
	medicalrecord.NewHandler(recordSvc, m).RegisterRoutes(api, write...)

	stationSvc := firestation.NewService(s.addresses, s.tx)
	firestation.NewHandler(stationSvc, m).RegisterRoutes(api, write...)

	alertSvc := alerts.NewService(s.addresses, s.persons, s.records, s.tx)
	alerts.NewHandler(alertSvc, store, m).RegisterRoutes(api)

	return e
}
