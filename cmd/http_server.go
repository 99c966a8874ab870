package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adiwijaya/course-management/internal"
	"github.com/adiwijaya/course-management/internal/auth"
	authpg "github.com/adiwijaya/course-management/internal/auth/postgres"
	"github.com/adiwijaya/course-management/internal/content"
	"github.com/adiwijaya/course-management/internal/course"
	coursepg "github.com/adiwijaya/course-management/internal/course/postgres"
	"github.com/adiwijaya/course-management/internal/department"
	departmentpg "github.com/adiwijaya/course-management/internal/department/postgres"
	"github.com/adiwijaya/course-management/internal/transport/rest"
	"github.com/adiwijaya/course-management/internal/user"
	userpg "github.com/adiwijaya/course-management/internal/user/postgres"
	"github.com/adiwijaya/course-management/pkg/logger"
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
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
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

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	lg := deps.Logger

	authRepo := authpg.NewRepository(deps.Gorm)
	userRepo := userpg.NewRepository(deps.Gorm)
	courseRepo := coursepg.NewRepository(deps.Gorm)
	departmentRepo := departmentpg.NewRepository(deps.Gorm)

	tokenGen := auth.NewJWTTokenGenerator(cfg.Security.TokenSecret, cfg.Security.TokenDuration)
	sessions := auth.NewSessionManager(cfg.Session)
	google := auth.NewGoogleVerifier(cfg.Google)

	authService := auth.NewService(authRepo, authRepo, tokenGen, cfg.Security, lg)
	userService := user.NewService(userRepo, cfg.Security.BCryptCost, lg)
	departmentService := department.NewService(departmentRepo, lg)

	store := content.NewDiskStore(cfg.Storage.Root)
	courseService := course.NewService(courseRepo, departmentService, store, cfg.Storage.PublicBaseURL, lg)

	handlers := rest.Handlers{
		Auth:          auth.NewHandler(authService, sessions, google),
		Authorization: auth.NewAuthorization(lg),
		Users:         user.NewHandler(userService, lg),
		Courses:       course.NewHandler(courseService, lg),
		Departments:   department.NewHandler(departmentService, lg),
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB, handlers, cfg.Server.AllowedOrigins, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Format, config.Logging.Level)
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return &Dependencies{
		Config: config,
		DB:     db,
		Gorm:   gormDB,
		Router: chi.NewRouter(),
		Logger: lg,
	}, nil
}

// sqlDriverName maps the config driver to the database/sql registration name.
// mattn/go-sqlite3, pulled in by the gorm sqlite dialector, registers itself
// under "sqlite3", not "sqlite".
func sqlDriverName(configDriver string) string {
	if configDriver == "sqlite" {
		return "sqlite3"
	}
	return "pgx"
}

// initDB opens the plain database/sql connection used for health checks.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	dbConn, err := sqlx.Connect(sqlDriverName(cfg.Driver), cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm opens the ORM connection the repositories run on. The driver switch
// lets tests and local development run against sqlite with the same schema.
func initGorm(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.Driver == "sqlite" {
		dialector = sqlite.Open(cfg.Source)
	} else {
		dialector = postgres.Open(cfg.Source)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open orm connection: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return gormDB, nil
}
