package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/joho/godotenv"

	"publicpulse/analytics"
	"publicpulse/config"
	"publicpulse/handlers"
	"publicpulse/metrics"
	"publicpulse/middleware"
	"publicpulse/rabbitmq"
	"publicpulse/repository"
	"publicpulse/stats"
	"publicpulse/store"
	"publicpulse/utils"
	"publicpulse/version"
	ws "publicpulse/websocket"
)

const (
	EndPointHealth            = "/health"
	EndPointGetComplaints     = "/get_complaints"
	EndPointGetDashboardStats = "/get_dashboard_stats"
	EndPointGetAnalytics      = "/get_analytics"
	EndPointRefresh           = "/refresh"
	EndPointSubmitReport      = "/submit_report"
	EndPointListenAnalytics   = "/ws/analytics"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, using system environment variables")
	}

	cfg := config.Load()
	metrics.Register()

	log.Info("Starting the publicpulse portal service...")

	ctx := context.Background()
	src, err := openSource(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open reports store: %v", err)
	}
	defer src.Close(ctx)

	repo := repository.New(src)
	agencies := stats.LoadServiceAgencies(cfg.AgencyFile)
	analyticsStore := analytics.NewStore(repo, agencies)

	// Websocket hub pushes every analytics transition to connected clients.
	hub := ws.NewHub()
	go hub.Run()
	analyticsStore.Subscribe(hub.BroadcastAnalytics)

	var publisher *rabbitmq.Publisher
	if cfg.RabbitMQURL != "" {
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.Fatalf("Failed to create RabbitMQ publisher: %v", err)
		}
		defer publisher.Close()

		subscriber, err := rabbitmq.NewSubscriber(cfg.RabbitMQURL, cfg.RabbitMQExchange, "publicpulse-portal")
		if err != nil {
			log.Fatalf("Failed to create RabbitMQ subscriber: %v", err)
		}
		defer subscriber.Close()

		// A report event from any instance drops the caches and re-fetches
		// the shared analytics. Every cached view can include the affected
		// record, so the whole cache goes.
		subscriber.Start(func(event rabbitmq.ReportEvent) error {
			log.Infof("Report event %s for region %q", event.Status, event.Region)
			repo.InvalidateAll()
			return analyticsStore.Refresh(context.Background())
		})
	}

	portalHandler := handlers.NewPortalHandler(repo, analyticsStore, agencies, publisher)
	wsHandler := handlers.NewWebSocketHandler(hub)

	router := setupRouter(cfg, portalHandler, wsHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Portal service starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

// openSource picks the reports backend from configuration.
func openSource(ctx context.Context, cfg *config.Config) (store.Source, error) {
	switch cfg.StoreBackend {
	case "mysql":
		db, err := utils.DBConnect(cfg)
		if err != nil {
			return nil, err
		}
		return store.NewMySQL(ctx, db)
	case "memory":
		// Local development without a store.
		return store.NewMemory(), nil
	default:
		return store.NewMongo(ctx, cfg.MongoURI)
	}
}

func setupRouter(cfg *config.Config, h *handlers.PortalHandler, wsh *handlers.WebSocketHandler) *gin.Engine {
	router := gin.Default()

	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, version.Get("publicpulse"))
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET(EndPointHealth, h.HealthCheck)
	router.GET(EndPointListenAnalytics, wsh.ListenAnalytics)
	router.GET("/ws/health", wsh.Health)

	apiV3 := router.Group("/api/v3")
	{
		apiV3.GET(EndPointGetComplaints, h.GetComplaints)
		apiV3.GET(EndPointGetDashboardStats, h.GetDashboardStats)
		apiV3.GET(EndPointGetAnalytics, h.GetAnalytics)
		apiV3.POST(EndPointRefresh, middleware.AuthMiddleware(cfg), h.Refresh)
		apiV3.POST(EndPointSubmitReport, h.SubmitReport)
	}

	return router
}
