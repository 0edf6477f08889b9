package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/clockwise-hq/attendance-backend-go/internal/config"
	appHTTP "github.com/clockwise-hq/attendance-backend-go/internal/handler/http"
	"github.com/clockwise-hq/attendance-backend-go/internal/pkg/cache"
	"github.com/clockwise-hq/attendance-backend-go/internal/pkg/cron"
	"github.com/clockwise-hq/attendance-backend-go/internal/pkg/database"
	"github.com/clockwise-hq/attendance-backend-go/internal/pkg/jwt"
	"github.com/clockwise-hq/attendance-backend-go/internal/pkg/storage"
	"github.com/clockwise-hq/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/clockwise-hq/attendance-backend-go/internal/service/attendance"
	authService "github.com/clockwise-hq/attendance-backend-go/internal/service/auth"
	evidenceService "github.com/clockwise-hq/attendance-backend-go/internal/service/evidence"
	reportService "github.com/clockwise-hq/attendance-backend-go/internal/service/report"
	scheduleService "github.com/clockwise-hq/attendance-backend-go/internal/service/schedule"
	statsService "github.com/clockwise-hq/attendance-backend-go/internal/service/stats"
	"github.com/go-chi/httplog/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.App.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-backend"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	var statsCache cache.Cache
	if cfg.Redis.Addr != "" {
		statsCache, err = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to redis:", err)
		}
	} else {
		statsCache = cache.Noop()
	}

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(
			cfg.Storage.BasePath,
			cfg.Storage.BaseURL,
		)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
	default:
		log.Fatal("Unsupported storage type: ", cfg.Storage.Type)
	}

	userRepo := postgresql.NewUserRepository(db)
	directoryRepo := postgresql.NewDirectoryRepository(db)
	scheduleRepo := postgresql.NewScheduleRepository(db)
	eventRepo := postgresql.NewAttendanceEventRepository(db)
	txRunner := postgresql.NewTxRunner(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	evidenceSvc := evidenceService.NewService(fileStorage)
	resolver := scheduleService.NewResolver(scheduleRepo)
	registrar := attendanceService.NewRegistrar(eventRepo, resolver, evidenceSvc, txRunner, logger)
	ledger := attendanceService.NewLedger(eventRepo, resolver, directoryRepo)
	aggregator := statsService.NewAggregator(directoryRepo, eventRepo, resolver, statsCache, logger)
	reportSvc := reportService.NewService(aggregator, directoryRepo)
	authSvc := authService.NewAuthService(userRepo, jwtService)

	scheduler := cron.NewScheduler()
	cron.NewEvidenceJobs(evidenceSvc, eventRepo).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	authHandler := appHTTP.NewAuthHandler(authSvc, jwtService)
	attendanceHandler := appHTTP.NewAttendanceHandler(registrar, ledger)
	scheduleHandler := appHTTP.NewScheduleHandler(scheduleRepo, resolver)
	statsHandler := appHTTP.NewStatsHandler(aggregator)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	router := appHTTP.NewRouter(
		logger,
		jwtService,
		authHandler,
		attendanceHandler,
		scheduleHandler,
		statsHandler,
		reportHandler,
		cfg.Storage.BasePath,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
