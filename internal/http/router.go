package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/lending/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
//
// Middleware order: request id, security headers, CSRF, session, authentication.
// CSRF runs before the session so the session context survives CSRF's request
// replacement.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(auth.SecurityHeadersMiddleware())

	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.LoadAndSave())
	}
	router.Use(auth.NewMiddleware(cfg.AuthService, cfg.SessionManager).Handler())

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}

	api := router.Group("/api")
	admin := api.Group("/admin", auth.RequireAdmin())

	if cfg.Borrow != nil {
		borrows := NewBorrowsController(cfg.Borrow, cfg.Books)
		api.POST("/books/:id/borrow", borrows.CreateBorrow)
		api.GET("/books/:id/availability", borrows.Availability)
		api.POST("/borrows/:id/return", borrows.ReturnOwn)
		api.GET("/user/borrowed", borrows.ActiveLoans)
		api.GET("/user/borrow-history", borrows.History)

		admin.POST("/borrows/return", borrows.AdminReturn)
		admin.GET("/borrows/active", borrows.AdminActive)
		admin.GET("/overdue", borrows.Overdue)
	}

	if cfg.Reports != nil {
		reportsController := NewReportsController(cfg.Reports)
		admin.GET("/reports", reportsController.Stats)
		admin.GET("/reports/categories", reportsController.Categories)
		admin.GET("/reports/external-sources", reportsController.ExternalSources)
	}

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		admin.GET("/audit", auditController.GetAuditEvents)
	}

	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		admin.GET("/tasks/types", tasksController.ListTaskTypes)
		admin.GET("/tasks/:id", tasksController.GetTaskStatus)
		admin.POST("/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
