package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"cheflow-backend/internal/auth"
	"cheflow-backend/internal/cache"
	"cheflow-backend/internal/config"
	"cheflow-backend/internal/database"
	"cheflow-backend/internal/db"
	"cheflow-backend/internal/handlers"
	"cheflow-backend/internal/health"
	h "cheflow-backend/internal/http"
	"cheflow-backend/internal/middleware"
	"cheflow-backend/internal/monitoring"
	"cheflow-backend/internal/repositories"
	"cheflow-backend/internal/services"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Logger = logger

	cfg := config.Load()

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional; day boards fall back to Postgres when it is down
	if err := cache.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, caching disabled")
	} else {
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	migrator := database.NewMigrator(pool)
	if err := migrator.RunMigrations(ctx); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}

	healthChecker := health.NewHealthChecker(pool)

	if cfg.Monitoring.Enabled {
		go monitoring.NewMonitoringServer(pool, cfg.Monitoring.Port).Start()
	}

	jwtManager := auth.NewJWTManager(cfg)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	catalogRepo := repositories.NewCatalogRepository(pool)
	checklistRepo := repositories.NewChecklistRepository(pool)
	itemRepo := repositories.NewChecklistItemRepository(pool)
	historyRepo := repositories.NewItemHistoryRepository(pool)
	deliveryRepo := repositories.NewDeliveryRepository(pool)
	modeRepo := repositories.NewDeliveryModeRepository(pool)
	routeRepo := repositories.NewRouteRepository(pool)
	assignmentRepo := repositories.NewRouteAssignmentRepository(pool)
	vehicleRepo := repositories.NewVehicleRepository(pool)
	contractRepo := repositories.NewContractRepository(pool)
	contractHistoryRepo := repositories.NewContractHistoryRepository(pool)
	quoteRepo := repositories.NewQuoteRepository(pool)

	// Services; the linker sits between the three entity services so a
	// creation in any of them immediately links the other two
	linkerService := services.NewLinkerService(contractRepo, deliveryRepo, checklistRepo, logger)
	checklistService := services.NewChecklistService(checklistRepo, itemRepo, historyRepo, catalogRepo, linkerService, logger)
	deliveryService := services.NewDeliveryService(deliveryRepo, modeRepo, linkerService, logger)
	mergeService := services.NewMergeService(deliveryRepo, logger)
	routeService := services.NewRouteService(routeRepo, assignmentRepo, deliveryRepo, vehicleRepo, logger)
	contractService := services.NewContractService(contractRepo, contractHistoryRepo, linkerService, logger)
	quoteService := services.NewQuoteService(quoteRepo, logger)
	reportService := services.NewReportService(pool, checklistRepo, itemRepo, routeRepo, assignmentRepo, deliveryRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, jwtManager)
	checklistHandler := handlers.NewChecklistHandler(checklistService, reportService)
	deliveryHandler := handlers.NewDeliveryHandler(deliveryService, mergeService, routeService)
	routeHandler := handlers.NewRouteHandler(routeService, reportService)
	contractHandler := handlers.NewContractHandler(contractService, linkerService)
	quoteHandler := handlers.NewQuoteHandler(quoteService)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo)
	vehicleHandler := handlers.NewVehicleHandler(vehicleRepo)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)

	router := h.NewRouter(
		authHandler,
		checklistHandler,
		deliveryHandler,
		routeHandler,
		contractHandler,
		quoteHandler,
		catalogHandler,
		vehicleHandler,
		healthHandler,
		authMiddleware,
	)

	var handler http.Handler = router
	handler = middleware.MetricsMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.NewCORS(cfg)(handler)
	handler = middleware.PanicRecovery(handler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("server listening")
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
