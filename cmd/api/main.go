package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/migrations"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/attendance-backend-go/internal/service/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/file"
	timeSlotService "github.com/cmlabs-hris/attendance-backend-go/internal/service/timeslot"
	"golang.org/x/sync/errgroup"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", "attendance-backend"), slog.String("env", cfg.App.Env)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(ctx, db.SQLDB()); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		slog.Info("migrations applied")
	}

	userRepo := postgresql.NewUserRepository(db)
	JWTRepository := postgresql.NewJWTRepository(db)
	groupRepo := postgresql.NewGroupRepository(db)
	timeSlotRepo := postgresql.NewTimeSlotRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	fileRepo := postgresql.NewFileRepository(db)

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			return fmt.Errorf("initialize local storage: %w", err)
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	if err != nil {
		return fmt.Errorf("initialize jwt service: %w", err)
	}

	appleCfg := oauth.AppleConfig{
		ClientID:    cfg.Apple.ClientID,
		TeamID:      cfg.Apple.TeamID,
		KeyID:       cfg.Apple.KeyID,
		RedirectURL: cfg.Apple.RedirectURL,
	}
	if cfg.Apple.PrivateKeyPath != "" {
		appleCfg.PrivateKeyPEM, err = os.ReadFile(cfg.Apple.PrivateKeyPath)
		if err != nil {
			return fmt.Errorf("read apple private key: %w", err)
		}
	}
	AppleService, err := oauth.NewAppleService(ctx, appleCfg)
	if err != nil {
		return fmt.Errorf("initialize apple sign in: %w", err)
	}

	authService := serviceAuth.NewAuthService(db, userRepo, JWTService, JWTRepository, AppleService)
	fileService := file.NewFileService(fileRepo, fileStorage)
	timeSlotSvc := timeSlotService.NewTimeSlotService(timeSlotRepo, groupRepo)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, timeSlotRepo, fileRepo, attendanceService.Config{
		SigningGrace: cfg.Attendance.SigningGrace,
	})

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AllowedOrigins: cfg.App.AllowedOrigins,
		Env:            cfg.App.Env,
		Version:        version,
		LogLevel:       cfg.SlogLevel(),
	}, JWTService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(JWTService, authService),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		File:       appHTTP.NewFileHandler(fileService, fileStorage),
		TimeSlot:   appHTTP.NewTimeSlotHandler(timeSlotSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
