package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/branchdesk/branchdesk-api/internal/application/analytics"
	"github.com/branchdesk/branchdesk-api/internal/application/audit"
	"github.com/branchdesk/branchdesk-api/internal/application/auth"
	"github.com/branchdesk/branchdesk-api/internal/application/complaints"
	"github.com/branchdesk/branchdesk-api/internal/application/orders"
	"github.com/branchdesk/branchdesk-api/internal/application/reports"
	"github.com/branchdesk/branchdesk-api/internal/application/usecase"
	"github.com/branchdesk/branchdesk-api/internal/infrastructure/csvexport"
	"github.com/branchdesk/branchdesk-api/internal/infrastructure/database"
	infrapdf "github.com/branchdesk/branchdesk-api/internal/infrastructure/pdf"
	"github.com/branchdesk/branchdesk-api/internal/infrastructure/xlsx"
	httpRouter "github.com/branchdesk/branchdesk-api/internal/interfaces/http"
	"github.com/branchdesk/branchdesk-api/pkg/clock"
	"github.com/branchdesk/branchdesk-api/pkg/config"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("starting")
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET is empty; tokens are signed with an empty key")
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection")
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("database migration")
	}

	clk := clock.New(nil, cfg.App.Location())
	repos := database.NewRepos(db.Gorm)
	txRunner := database.NewTxRunner(db.Gorm)
	statsRepo := database.NewStatsRepository(db.Gorm)

	authUC := auth.NewAuthUseCase(repos.Users, repos.Branches, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	branchUC := usecase.NewBranchUseCase(repos, txRunner, clk, log)
	userUC := usecase.NewUserUseCase(repos, txRunner, clk, log)
	orderUC := orders.NewOrderUseCase(repos, txRunner, clk, log)
	complaintUC := complaints.NewComplaintUseCase(repos, txRunner, clk, complaints.Options{
		AllowArchivedEdit: cfg.Complaints.AllowArchivedEdit,
	}, log)
	statsUC := analytics.NewStatsUseCase(repos.Branches, statsRepo, clk, log)
	auditUC := audit.NewAuditUseCase(repos, cfg.Audit.StreamCap)

	// Printed receipt, CSV and Excel exports
	receipts, err := infrapdf.NewReceiptGenerator(infrapdf.FontFiles{
		Regular: cfg.PDF.FontRegular,
		Bold:    cfg.PDF.FontBold,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("load receipt fonts")
	}
	reportUC := reports.NewReportUseCase(complaintUC, repos, reports.Renderers{
		Receipt:  receipts,
		CSV:      csvexport.NewComplaintWriter(),
		Workbook: xlsx.NewWorkbookGenerator(),
	}, clk, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestID())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI at /docs once docs/swagger.json has been generated
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Branchdesk API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		BranchUC:    branchUC,
		UserUC:      userUC,
		OrderUC:     orderUC,
		ComplaintUC: complaintUC,
		StatsUC:     statsUC,
		AuditUC:     auditUC,
		ReportUC:    reportUC,
		DB:          db,
		ServiceName: cfg.App.Name,
		Log:         log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, closing server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("stopped")
}
