package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/clock"
	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/logger"
	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/payment"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/router"
	"github.com/iliyamo/event-ticketing/internal/service"
	"github.com/iliyamo/event-ticketing/internal/telemetry"
)

func main() {
	if err := config.LoadEnvFile(); err != nil {
		panic(err)
	}
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:       cfg.Telemetry.Enabled,
		ServiceName:   cfg.Telemetry.ServiceName,
		Environment:   cfg.Env,
		CollectorAddr: cfg.Telemetry.CollectorAddr,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	db, err := database.Open(ctx, database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	// Redis is optional: without it rate limiting and caching pass through.
	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		log.Warn("redis unavailable, rate limit and cache disabled", zap.Error(err))
	} else {
		defer rdb.Close()
	}

	gateway, err := newGateway(cfg.Payment)
	if err != nil {
		return err
	}

	// ---- repositories ----
	tx := repository.NewTxManager(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	ticketTypes := repository.NewTicketTypeRepo(db)
	addOns := repository.NewAddOnRepo(db)
	coupons := repository.NewCouponRepo(db)
	bookings := repository.NewBookingRepo(db)
	tickets := repository.NewTicketRepo(db)
	payments := repository.NewPaymentRepo(db)
	checkIns := repository.NewCheckInRepo(db)
	cancellations := repository.NewCancellationRepo(db)
	speakers := repository.NewSpeakerRepo(db)
	schedule := repository.NewScheduleRepo(db)
	customFields := repository.NewCustomFieldRepo(db)
	reports := repository.NewReportRepo(db)

	// ---- services ----
	clk := clock.NewSystem()
	couponSvc := service.NewCouponService(events, coupons, ticketTypes, addOns, log.Named("coupon"))
	bookingSvc := service.NewBookingService(service.BookingDeps{
		Tx:            tx,
		Events:        events,
		TicketTypes:   ticketTypes,
		AddOns:        addOns,
		Coupons:       coupons,
		Bookings:      bookings,
		Tickets:       tickets,
		Payments:      payments,
		CustomFields:  customFields,
		Users:         users,
		CouponChecker: couponSvc,
		Gateway:       gateway,
		Publisher:     queue.NewPublisher(cfg.AMQPURL, log.Named("publisher")),
		Clock:         clk,
		Log:           log.Named("booking"),
		PublicBaseURL: cfg.Payment.PublicBaseURL,
	})
	eventSvc := service.NewEventService(service.EventDeps{
		Tx:           tx,
		Events:       events,
		TicketTypes:  ticketTypes,
		AddOns:       addOns,
		Coupons:      coupons,
		Schedule:     schedule,
		CustomFields: customFields,
		Log:          log.Named("event"),
	})
	profileSvc := service.NewProfileService(tx, users, speakers, log.Named("profile"))
	checkinSvc := service.NewCheckinService(tickets, checkIns, events, clk, log.Named("checkin"))
	cancellationSvc := service.NewCancellationService(tx, cancellations, bookings, tickets, events, log.Named("cancellation"))
	reportSvc := service.NewReportService(events, reports)

	// booking.confirmed consumer runs beside the API until shutdown
	consumer := queue.NewConsumer(cfg.AMQPURL, cfg.BookingLogPath, log.Named("consumer"))
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("booking consumer stopped", zap.Error(err))
		}
	}()

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(telemetry.Middleware())
	e.Use(middleware.RequestLogger(log.Named("http")))

	router.Register(e, router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, users, tokens, profileSvc),
		Events:        handler.NewEventHandler(eventSvc),
		Bookings:      handler.NewBookingHandler(couponSvc, bookingSvc),
		Payments:      handler.NewPaymentHandler(gateway, bookingSvc, log.Named("payment")),
		Checkins:      handler.NewCheckinHandler(checkinSvc),
		Cancellations: handler.NewCancellationHandler(cancellationSvc),
		Reports:       handler.NewReportHandler(reportSvc),
		Speakers:      handler.NewSpeakerHandler(profileSvc),
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log.Named("ratelimit")),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log.Named("cache")),
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env),
			zap.String("payment_provider", gateway.Name()))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(sctx)
}

func newGateway(cfg config.PaymentConfig) (payment.Gateway, error) {
	if cfg.Provider == "stripe" {
		return payment.NewStripeGateway(cfg.SecretKey, cfg.WebhookSecret)
	}
	return payment.NewManualGateway(cfg.PublicBaseURL, cfg.WebhookSecret), nil
}
