package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travel/cfg"
	"travel/internal/availability"
	"travel/internal/booking"
	"travel/internal/health"
	"travel/internal/middleware"
	"travel/internal/schedule"
	"travel/pkg/cache"
	"travel/pkg/db"
	"travel/pkg/events"
	"travel/pkg/idgen"
	"travel/pkg/logger"
	"travel/pkg/metrics"
	"travel/pkg/telemetry"
	"travel/pkg/trainclient"

	_ "travel/cmd/travel/docs" // swagger docs

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const version = "2.0.0"

// @title           Travel Availability API
// @version         2.0.0
// @description     Resolves train, bus and flight availability and manages bookings against stored schedules.
// @BasePath        /
// @schemes         http
func main() {
	// ============
	// config
	// ============
	config, errCfg := cfg.Load()
	if errCfg != nil {
		log.Fatal(errCfg)
	}

	// ============
	// logger
	// ============
	zlogger := logger.NewZeroLog(config.AppEnv)

	// ============
	// Otel
	// ============
	obs := config.Observability
	shutdownOtel, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName:  obs.ServiceName,
		Environment:  obs.Environment,
		OTLPEndpoint: obs.OTLPEndpoint,
	}, zlogger)
	if err != nil {
		log.Fatalf("failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOtel(ctx); err != nil {
			log.Printf("failed to shutdown OpenTelemetry: %v", err)
		}
	}()

	// ============
	// Init DB client
	// ============
	pg := config.Postgres
	sqlClient, err := db.NewSQLClient("postgres", db.PostgresDSN(pg.User, pg.Password, pg.Host, pg.Port, pg.DBName, pg.SSLMode))
	if err != nil {
		log.Fatal(err)
	}
	defer sqlClient.Close()

	// ============
	// Cache
	// ============
	redisAddr := config.Redis.Host + ":" + config.Redis.Port
	redis := cache.NewRedisCache(redisAddr, config.Redis.Password)

	// ============
	// ID generator
	// ============
	ids, err := idgen.NewSnowflakeGenerator(config.NodeID)
	if err != nil {
		log.Fatal(err)
	}

	// ============
	// Metrics & events
	// ============
	registry := metrics.NewRegistry()

	var publisher events.Publisher = events.Nop{}
	if config.Kafka.Brokers != "" {
		kafkaPublisher := events.NewKafkaPublisher(config.Kafka.Brokers, config.Kafka.BookingTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		zlogger.Info("kafka brokers not configured, booking events disabled")
	}

	// ============
	// External Service
	// ============
	httpClient := &http.Client{
		Timeout: time.Duration(config.Extractor.TimeoutSeconds) * time.Second,
	}
	trainClient := trainclient.NewClient(httpClient, config.Extractor.BaseURL, zlogger)

	// ============
	// Internal Service
	// ============
	scheduleStore := schedule.NewPostgresStore(sqlClient, ids)
	resolver := schedule.NewResolver(scheduleStore, redis, time.Duration(config.CacheTTLMinutes)*time.Minute, zlogger)

	availabilitySvc := availability.NewService(resolver, scheduleStore, trainClient, registry, zlogger)
	availabilityHandler := availability.NewHandler(availabilitySvc, int64(config.Extractor.MaxConcurrent), zlogger)

	bookingMgr := booking.NewManager(booking.NewPostgresStore(sqlClient), scheduleStore, booking.NewPolicy(), publisher, registry, zlogger)
	bookingHandler := booking.NewHandler(bookingMgr)

	healthHandler := health.NewHandler(obs.ServiceName, version, map[string]health.Check{
		"database": sqlClient.PingContext,
		"redis":    redis.Ping,
	})

	// ============
	// HTTP
	// ============
	if config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  config.CORSAllowOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))
	r.Use(otelgin.Middleware(obs.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.TraceLogger(zlogger, registry))

	availabilityHandler.RegisterRoutes(r)
	bookingHandler.RegisterRoutes(r)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(registry.Handler()))
	initSwagger(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.AppPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlogger.Info("http server listening", logger.Field{Key: "addr", Value: srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// ============
	// Shutdown
	// ============
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zlogger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlogger.Error("http server shutdown", logger.Field{Key: "error", Value: err})
	}
}

func initSwagger(r *gin.Engine) {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		html := `<!DOCTYPE html>
<html>
<head>
    <title>Travel API Documentation</title>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
    <script id="api-reference" data-url="/swagger/doc.json"></script>
    <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
		c.String(http.StatusOK, html)
	})
}
