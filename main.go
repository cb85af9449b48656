package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/config"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/database"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/handler"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/middleware"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/pkg/logger"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/service"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := "config.yaml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully", "path", configPath)

	db, err := database.Open(&cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	store, closeStore, err := openBlobStore(context.Background(), &cfg.Storage)
	if err != nil {
		slog.Error("failed to initialize storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore.Close()

	// Repositories
	reports := service.NewReportRepository(db)
	photos := service.NewPhotoRepository(db)
	notifications := service.NewNotificationRepository(db)

	// Export pipeline
	fetcher := service.NewFetcher(time.Duration(cfg.Render.TimeoutSeconds) * time.Second)
	delivery := service.NewDelivery(fetcher, store)
	cache := service.NewQueryCache(time.Duration(cfg.Cache.TTLSeconds) * time.Second)
	collector := service.NewCollector(service.NewPhotoJoiner(photos, store))

	exporter := service.NewExporter(service.ExportDeps{
		Collector:     collector,
		Renderer:      service.NewRenderService(&cfg.Render),
		Persister:     service.NewPersistenceRelay(fetcher, store),
		Records:       reports,
		Delivery:      delivery,
		Notifications: notifications,
		Cache:         cache,
		Tracker:       service.NewExportTracker(cfg.Export.MaxTrackedJobs),
	})

	// Handlers
	authHandler := handler.NewAuthHandler(cfg)
	certificateHandler := handler.NewCertificateHandler(handler.CertificateDeps{
		Reports:   reports,
		Collector: collector,
		Exporter:  exporter,
		Delivery:  delivery,
		Mailer:    service.NewEmailService(&cfg.Email),
		Photos:    photos,
		Blobs:     store,
		Cache:     cache,
	})
	reportsHandler := handler.NewReportsHandler(reports, cache)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())
	router.Use(middleware.NoStore())
	router.Use(middleware.RateLimit(100, time.Minute))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.GET("/reports", reportsHandler.List)
		protected.GET("/reports/recent", reportsHandler.Recent)
		protected.GET("/reports/customer", reportsHandler.Customer)

		certs := protected.Group("/certificates/:reportId")
		certs.GET("/draft", certificateHandler.GetDraft)
		certs.PUT("/draft", certificateHandler.SaveDraft)
		certs.GET("/payload", certificateHandler.GetPayload)
		certs.GET("/readiness", certificateHandler.GetReadiness)
		certs.POST("/export", middleware.RateLimitBy(10, time.Minute, middleware.UserKey), certificateHandler.Export)
		certs.GET("/export/status", certificateHandler.GetExportStatus)
		certs.GET("/download", certificateHandler.Download)
		certs.POST("/email", certificateHandler.Email)
		certs.POST("/quote", certificateHandler.CreateQuote)
		certs.POST("/invoice", certificateHandler.CreateInvoice)
		certs.GET("/schedule.xlsx", certificateHandler.DownloadSchedule)
		certs.POST("/photos", certificateHandler.UploadPhoto)
	}

	// Rendering can take most of a minute, so the write timeout covers the
	// render client timeout plus delivery.
	writeTimeout := time.Duration(cfg.Render.TimeoutSeconds)*time.Second + 30*time.Second
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openBlobStore connects the configured durable store.
func openBlobStore(ctx context.Context, cfg *config.StorageConfig) (service.BlobStore, io.Closer, error) {
	switch cfg.Backend {
	case "gcs":
		svc, err := service.NewGCSService(ctx, &cfg.GCS)
		if err != nil {
			return nil, nil, err
		}
		return svc, svc, nil
	case "minio":
		svc, err := service.NewMinioService(&cfg.Minio)
		if err != nil {
			return nil, nil, err
		}
		if err := svc.EnsureBucket(ctx); err != nil {
			return nil, nil, err
		}
		return svc, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
