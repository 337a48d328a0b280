package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/branchdesk/branchdesk-api/internal/application/analytics"
	"github.com/branchdesk/branchdesk-api/internal/application/audit"
	"github.com/branchdesk/branchdesk-api/internal/application/auth"
	"github.com/branchdesk/branchdesk-api/internal/application/complaints"
	"github.com/branchdesk/branchdesk-api/internal/application/orders"
	"github.com/branchdesk/branchdesk-api/internal/application/reports"
	"github.com/branchdesk/branchdesk-api/internal/application/usecase"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps dependencies of the router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	Resolver    PrincipalResolver // defaults to AuthUC
	BranchUC    *usecase.BranchUseCase
	UserUC      *usecase.UserUseCase
	OrderUC     *orders.OrderUseCase
	ComplaintUC *complaints.ComplaintUseCase
	StatsUC     *analytics.StatsUseCase
	AuditUC     *audit.AuditUseCase
	ReportUC    *reports.ReportUseCase
	DB          Pinger
	ServiceName string
	Log         *logger.Logger
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	resolver := deps.Resolver
	if resolver == nil {
		resolver = deps.AuthUC
	}

	app.Get("/health", healthHandler(deps.DB, deps.ServiceName))

	api := app.Group("/api")

	// Auth (public)
	authHandler := NewAuthHandler(deps.AuthUC, log)
	api.Post("/auth/login", authHandler.Login)

	// Everything below requires a Bearer token
	protected := api.Group("", AuthMiddleware(resolver, log))
	protected.Get("/me", authHandler.Me)

	branchHandler := NewBranchHandler(deps.BranchUC, log)
	orderHandler := NewOrderHandler(deps.OrderUC, log)
	complaintHandler := NewComplaintHandler(deps.ComplaintUC, log)
	reportHandler := NewReportHandler(deps.ReportUC, log)
	statsHandler := NewStatsHandler(deps.StatsUC, log)
	historyHandler := NewHistoryHandler(deps.AuditUC, log)
	userHandler := NewUserHandler(deps.UserUC, log)

	// Branches and their workflows
	protected.Get("/branches", branchHandler.List)
	protected.Get("/branches/:id/orders", orderHandler.ListActive)
	protected.Post("/branches/:id/orders", orderHandler.Create)
	protected.Get("/branches/:id/complaints", complaintHandler.List)
	protected.Post("/branches/:id/complaints", complaintHandler.Create)
	protected.Get("/branches/:id/complaints/export.csv", reportHandler.ComplaintCSV)

	// Orders
	protected.Get("/orders/:id", orderHandler.Get)
	protected.Post("/orders/:id/status", orderHandler.Transition)
	protected.Put("/orders/:id/notes", orderHandler.UpdateNotes)

	// Complaints
	protected.Get("/complaints/:id", complaintHandler.Get)
	protected.Put("/complaints/:id", complaintHandler.Edit)
	protected.Post("/complaints/:id/status", complaintHandler.QuickStatus)
	protected.Post("/complaints/:id/archive", complaintHandler.Archive)
	protected.Get("/complaints/:id/receipt.pdf", reportHandler.Receipt)

	// Stats and history
	protected.Get("/stats/orders", statsHandler.Orders)
	protected.Get("/stats/complaints", statsHandler.Complaints)
	protected.Get("/history", historyHandler.Timeline)

	// Admin
	admin := protected.Group("/admin", AdminOnly())
	admin.Get("/overview", statsHandler.Overview)
	admin.Get("/complaints", complaintHandler.Browse)
	admin.Get("/export.xlsx", reportHandler.Workbook)

	admin.Get("/users", userHandler.List)
	admin.Post("/users", userHandler.Create)
	admin.Get("/users/:id", userHandler.Get)
	admin.Put("/users/:id", userHandler.Update)
	admin.Delete("/users/:id", userHandler.Delete)

	admin.Post("/branches", branchHandler.Create)
	admin.Put("/branches/:id", branchHandler.Update)
	admin.Delete("/branches/:id", branchHandler.Delete)
}

func healthHandler(db Pinger, service string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": service, "database": "unreachable"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": service})
	}
}
