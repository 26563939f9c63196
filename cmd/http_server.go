package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/drawing-management/internal"
	"github.com/frahmantamala/drawing-management/internal/activity"
	activityRepo "github.com/frahmantamala/drawing-management/internal/activity/postgres"
	"github.com/frahmantamala/drawing-management/internal/auth"
	authRepo "github.com/frahmantamala/drawing-management/internal/auth/postgres"
	"github.com/frahmantamala/drawing-management/internal/blob"
	"github.com/frahmantamala/drawing-management/internal/core/events"
	"github.com/frahmantamala/drawing-management/internal/file"
	fileRepo "github.com/frahmantamala/drawing-management/internal/file/postgres"
	"github.com/frahmantamala/drawing-management/internal/project"
	projectRepo "github.com/frahmantamala/drawing-management/internal/project/postgres"
	"github.com/frahmantamala/drawing-management/internal/settings"
	settingsRepo "github.com/frahmantamala/drawing-management/internal/settings/postgres"
	"github.com/frahmantamala/drawing-management/internal/transport/rest"
	"github.com/frahmantamala/drawing-management/internal/user"
	userRepo "github.com/frahmantamala/drawing-management/internal/user/postgres"
	"github.com/frahmantamala/drawing-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	gormSqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *gorm.DB
	SQLDB  *sql.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.SQLDB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Level, config.Logging.Format)
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}

	gormDB, sqlDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	blobStore, err := initBlobStore(config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob storage: %w", err)
	}

	eventBus := events.NewEventBus(lg)
	subscribeEventLoggers(eventBus, lg)

	activityService := activity.NewService(activityRepo.NewActivityRepository(gormDB), lg)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo.NewRepository(gormDB), tokenGen, activityService)

	settingsService := settings.NewService(settingsRepo.NewSettingsRepository(gormDB), activityService, lg)

	userService := user.NewService(userRepo.NewUserRepository(gormDB), authService, settingsService, activityService, lg)

	projectService := project.NewService(projectRepo.NewProjectRepository(gormDB), activityService, lg)

	fileService := file.NewService(fileRepo.NewFileRepository(gormDB), blobStore, projectService, activityService, eventBus, lg)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, sqlDB, rest.Handlers{
		Auth:     auth.NewHandler(authService),
		User:     user.NewHandler(userService),
		Project:  project.NewHandler(projectService),
		File:     file.NewHandler(fileService),
		Activity: activity.NewHandler(activityService),
		Settings: settings.NewHandler(settingsService),
	}, lg)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     gormDB,
		SQLDB:  sqlDB,
		Router: router,
	}, nil
}

// initDB opens the database by driver. Postgres goes through sqlx over the
// pgx stdlib driver so the pool settings and health checks share one *sql.DB
// with GORM; sqlite is for local single-binary setups.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, *sql.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		gormDB, err := gorm.Open(gormSqlite.Open(cfg.Source), &gorm.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, err
		}
		return gormDB, sqlDB, nil

	default:
		dbConn, err := sqlx.Connect("pgx", cfg.Source)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
		}

		dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
		dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
		if cfg.ConnMaxLifetime > 0 {
			dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}

		gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: dbConn.DB}), &gorm.Config{})
		if err != nil {
			_ = dbConn.Close()
			return nil, nil, fmt.Errorf("failed to open gorm over pgx: %w", err)
		}
		return gormDB, dbConn.DB, nil
	}
}

func initBlobStore(cfg internal.StorageConfig) (blob.Store, error) {
	if cfg.Backend == "s3" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return blob.NewMinioStore(ctx, blob.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.UseSSL,
		})
	}
	return blob.NewDiskStore(cfg.UploadDir)
}

// subscribeEventLoggers attaches audit-style log handlers to the domain
// events so operators can tail upload and review traffic.
func subscribeEventLoggers(bus *events.EventBus, lg *slog.Logger) {
	bus.Subscribe(events.FileUploadedEventType, func(ctx context.Context, event events.Event) error {
		lg.Info("file uploaded", "event_id", event.EventID(), "payload", event.Payload())
		return nil
	})
	bus.Subscribe(events.FileReviewedEventType, func(ctx context.Context, event events.Event) error {
		lg.Info("file reviewed", "event_id", event.EventID(), "payload", event.Payload())
		return nil
	})
}
