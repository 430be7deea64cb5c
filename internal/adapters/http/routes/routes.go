package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	"conveyease/internal/adapters/http/handlers"
	"conveyease/internal/adapters/http/middleware"
	"conveyease/internal/config"
	"conveyease/internal/core/domain"
	"conveyease/internal/core/services"
	"conveyease/internal/core/workflow"
)

// Stores bundles the storage backends the services run on
type Stores struct {
	Bills  services.BillStore
	Users  services.UserStore
	Tokens services.RefreshTokenStore
}

// Setup configures all routes for the application
func Setup(app *fiber.App, stores Stores, engine *workflow.Engine, cfg *config.Config, log *zap.Logger) {
	// Initialize services
	authService := services.NewAuthService(stores.Users, stores.Tokens, cfg, log)
	userService := services.NewUserService(stores.Users, log)
	billService := services.NewBillService(stores.Bills, stores.Users, engine, cfg, log)
	dashboardService := services.NewDashboardService(billService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg)
	authHandler := handlers.NewAuthHandler(authService, userService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	billHandler := handlers.NewBillHandler(billService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	setupAuthRoutes(apiV1.Group("/auth"), authHandler, cfg)

	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler)

	billRoutes := apiV1.Group("/bills")
	billRoutes.Use(middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	setupBillRoutes(billRoutes, billHandler)

	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	dashboardRoutes.Get("/", dashboardHandler.GetDashboard)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Post("/register", middleware.AuthMiddleware(cfg), middleware.ManagementOnly(), handler.Register)
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user directory routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/team", middleware.RoleMiddleware(domain.RoleSupervisor), handler.GetTeam)
	router.Get("/",
		middleware.RoleMiddleware(domain.RoleAccounts, domain.RoleManagement),
		middleware.PrivateCacheHeaders(time.Minute),
		handler.ListUsers,
	)
}

// setupBillRoutes configures bill routes. Role checks beyond
// authentication are made by the approval workflow per bill.
func setupBillRoutes(router fiber.Router, handler *handlers.BillHandler) {
	router.Get("/", handler.ListBills)
	router.Post("/", handler.CreateBill)
	router.Get("/:id", handler.GetBill)
	router.Get("/:id/history", handler.GetHistory)
	router.Get("/:id/actions", handler.GetActions)
	router.Post("/:id/transitions", handler.Transition)

	router.Post("/:id/approve", handler.Approve)
	router.Post("/:id/reject", handler.Reject)
	router.Post("/:id/pay", handler.Pay)
	router.Post("/:id/resubmit", handler.Resubmit)
	router.Post("/:id/submit", handler.Resubmit)
}
