package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/ahmadrazza2001/backend-trynbuy/config"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/controller"
	circuitbreaker "github.com/ahmadrazza2001/backend-trynbuy/internal/infrastructure/circuit-breaker"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/infrastructure/message-queue/kafka"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/infrastructure/tracing"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/middleware"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/repository"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/service"
	"github.com/ahmadrazza2001/backend-trynbuy/pkg/response"
	"github.com/ahmadrazza2001/backend-trynbuy/pkg/validator"
	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
)

type App struct {
	DB     *mongo.Database
	Config *config.Config
	Server *echo.Echo

	// mu guards Server, metrics and cancel, which StopServer reads from the
	// signal goroutine.
	mu      sync.Mutex
	metrics *echo.Echo
	cancel  context.CancelFunc
}

// NewServer builds the HTTP API on top of svc.
func NewServer(conf *config.Config, svc service.ProductService) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	g := e.Group("/api/v1", middleware.Logger)

	controller.CreateProductController(g, svc, middleware.IsLoggedIn(conf.JWTSecret))

	g.GET("/ping", func(c echo.Context) error {
		return response.WriteSuccessResponse(c, "pong", nil)
	})

	return e
}

func (app *App) Start() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = logger

	ctx, cancel := context.WithCancel(context.Background())
	app.mu.Lock()
	app.cancel = cancel
	app.mu.Unlock()
	defer cancel()

	traceProvider, err := tracing.InitTracing(ctx, app.Config.TracingConfig.CollectorHost)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize tracing")
	} else {
		defer func() {
			if err := traceProvider.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown tracing")
			}
		}()
	}

	kafkaProducer, err := kafka.CreateKafkaProducer(ctx, app.Config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to kafka")
	}
	defer kafkaProducer.Close()

	kafkaReader := kafka.CreateKafkaReader(app.Config)
	defer kafkaReader.Close()

	publisher := kafka.CreatePublisher(kafkaProducer, circuitbreaker.CreateCircuitBreaker("product-events"))

	repo := repository.CreateNewMongoDBRepository(app.DB)
	svc := service.CreateProductService(repo, publisher)
	userSync := service.CreateUserSyncService(repo, kafkaReader)

	go userSync.ConsumeEvent(ctx)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create scheduler")
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(
			app.Config.ReconcileInterval,
		),
		gocron.NewTask(
			func() {
				if _, err := svc.ReconcileVisibility(ctx); err != nil {
					logger.Error().Err(err).Str("component", "ReconcileVisibility").Msg("")
				}
			},
		),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to schedule reconciler")
	}

	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown scheduler")
		}
	}()

	e := NewServer(app.Config, svc)

	tracer := otel.Tracer(tracing.ServiceName)
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// span creation and naming
			ctx, span := tracer.Start(c.Request().Context(), fmt.Sprintf("[%s] %s", c.Request().Method, c.Path()))
			defer span.End()

			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	})

	// Used empty string so that metrics are not prefixed with the service name making it easier to aggregate across services
	e.Use(echoprometheus.NewMiddleware(""))
	e.Use(echomiddleware.Recover())

	metricsServer := echo.New()
	metricsServer.HideBanner = true
	metricsServer.GET("/metrics", echoprometheus.NewHandler())

	app.serve(ctx, e, metricsServer)
}

// serve publishes both servers to StopServer and blocks until the API server
// stops. It returns at once when ctx was cancelled first.
func (app *App) serve(ctx context.Context, e, metricsServer *echo.Echo) {
	app.mu.Lock()
	if ctx.Err() != nil {
		app.mu.Unlock()
		return
	}
	app.metrics = metricsServer
	app.Server = e
	app.mu.Unlock()

	go func() {
		if err := metricsServer.Start(fmt.Sprintf(":%s", app.Config.MetricsPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start metrics server")
		}
	}()

	if err := e.Start(fmt.Sprintf(":%s", app.Config.ServicePort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}

func (app *App) StopServer() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app.mu.Lock()
	if app.cancel != nil {
		app.cancel()
	}
	server, metricsServer := app.Server, app.metrics
	app.mu.Unlock()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown metrics server")
		}
	}

	if server == nil {
		return nil
	}

	return server.Shutdown(ctx)
}
