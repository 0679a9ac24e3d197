package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/playzone/reservation-service/config"
	"github.com/playzone/reservation-service/internal/handler"
	"github.com/playzone/reservation-service/internal/middleware"
	"github.com/playzone/reservation-service/internal/notify"
	"github.com/playzone/reservation-service/internal/reaper"
	"github.com/playzone/reservation-service/internal/repository"
	"github.com/playzone/reservation-service/internal/service"
	"github.com/playzone/reservation-service/pkg/database"
	"github.com/playzone/reservation-service/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ publisher: reservation events for downstream consumers
	var sink notify.Sink = notify.NopSink{}
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Printf("rabbitmq unavailable, events disabled: %v", err)
	} else {
		defer publisher.Close()
		sink = notify.NewBrokerSink(publisher, "reservation")
	}

	// Repositories
	zoneRepo := repository.NewZoneRepository(db)
	resRepo := repository.NewReservationRepository(db)

	// Services
	zoneSvc := service.NewZoneService(zoneRepo)
	resSvc := service.NewReservationService(resRepo, zoneRepo, sink, service.Config{
		RequirePayment:          cfg.RequirePayment,
		PaymentWindow:           cfg.PaymentWindow(),
		CancellationWindowHours: cfg.CancellationWindowHours,
		VendorPendingStatus:     cfg.VendorPendingStatus,
		Location:                cfg.Location(),
	})

	// Expiry reaper
	reaperHandle := reaper.Start(resSvc, cfg.ReaperInterval())

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"service": "reservation-service",
			"reaper":  reaperHandle.Stats(),
		})
	})

	handler.NewZoneHandler(zoneSvc).RegisterRoutes(e)
	handler.NewReservationHandler(resSvc).RegisterRoutes(e)

	go func() {
		log.Printf("Reservation Service starting on :%s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	reaperHandle.Stop()
	_ = e.Close()
}
