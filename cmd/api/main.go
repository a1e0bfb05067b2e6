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

	"github.com/cmlabs-hris/timeclock-go/internal/config"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/holiday"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/vacation"
	appHTTP "github.com/cmlabs-hris/timeclock-go/internal/handler/http"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/cache"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/cron"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/database"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/realtime"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/sse"
	"github.com/cmlabs-hris/timeclock-go/internal/repository/postgresql"
	employeeService "github.com/cmlabs-hris/timeclock-go/internal/service/employee"
	holidayService "github.com/cmlabs-hris/timeclock-go/internal/service/holiday"
	reportService "github.com/cmlabs-hris/timeclock-go/internal/service/report"
	timeEntryService "github.com/cmlabs-hris/timeclock-go/internal/service/timeentry"
	vacationService "github.com/cmlabs-hris/timeclock-go/internal/service/vacation"
	"github.com/cmlabs-hris/timeclock-go/migrations"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setupLogger(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.App.AutoMigrate {
		if err := migrations.Apply(ctx, db); err != nil {
			return err
		}
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	timeEntryRepo := postgresql.NewTimeEntryRepository(db)
	vacationRepo := postgresql.NewVacationRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	transactor := postgresql.NewTransactor(db)

	// Collection names are the table names the change triggers report.
	employees := cache.New[employee.Employee]("employees", employeeRepo.List)
	entries := cache.New[timeentry.TimeEntry]("time_entries", timeEntryRepo.List)
	vacationDays := cache.New[vacation.VacationDay]("vacation_days", vacationRepo.List)
	holidays := cache.New[holiday.Holiday]("holidays", holidayRepo.List)

	registry := cache.NewRegistry()
	registry.Register(employees, entries, vacationDays, holidays)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.SSEExpiration)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, employees)
	timeEntrySvc := timeEntryService.NewTimeEntryService(timeEntryRepo, employeeRepo, entries)
	vacationSvc := vacationService.NewVacationService(vacationRepo, employeeRepo, vacationDays)
	holidaySvc := holidayService.NewHolidayService(transactor, holidayRepo, holidays)
	location := cfg.App.Location
	reportSvc := reportService.NewReportService(reportService.Sources{
		Employees:    employees,
		Entries:      entries,
		VacationDays: vacationDays,
		Holidays:     holidays,
	}, timeEntrySvc, func() time.Time { return time.Now().In(location) })

	hub := sse.NewHub()
	listener := realtime.NewListener(db.Pool, realtime.NewDispatcher(registry, hub), cfg.Cache.ListenerReconnect)
	go listener.Run(ctx)

	scheduler := cron.NewScheduler(ctx)
	if cfg.Cache.RefreshInterval > 0 {
		scheduler.AddJob("cache-refresh", cfg.Cache.RefreshInterval, func(ctx context.Context) error {
			registry.InvalidateAll()
			return nil
		})
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(cfg, JWTService, appHTTP.Handlers{
		Employee:  appHTTP.NewEmployeeHandler(employeeSvc),
		TimeEntry: appHTTP.NewTimeEntryHandler(timeEntrySvc),
		Vacation:  appHTTP.NewVacationHandler(vacationSvc),
		Holiday:   appHTTP.NewHolidayHandler(holidaySvc),
		Report:    appHTTP.NewReportHandler(reportSvc),
		Realtime:  appHTTP.NewRealtimeHandler(hub, JWTService, registry.Tables()),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// SSE streams are long-lived, so no WriteTimeout.
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", srv.Addr, "env", cfg.App.Env, "timezone", location.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})).With(
		slog.String("app", "timeclock"),
	))
}
