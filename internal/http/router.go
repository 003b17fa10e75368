package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/ir-contacts/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	authEnabled := cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled()
	if authEnabled {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager)
		authController.RegisterRoutes(router)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	contactsController := NewContactsController(cfg.Contacts, cfg.Attachments, cfg.BlobStore)
	attachmentsController := NewAttachmentsController(cfg.Contacts, cfg.Attachments, cfg.BlobStore, cfg.MaxUploadBytes)
	importController := NewImportController(cfg.Database, cfg.Jobs, cfg.Importer, authEnabled)
	exportController := NewExportController(cfg.Jobs, cfg.Exporter)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Contact endpoints
	router.GET("/api/contacts", contactsController.List)
	router.POST("/api/contacts", contactsController.Create)
	router.GET("/api/contacts/:id", contactsController.Get)
	router.PUT("/api/contacts/:id", contactsController.Update)
	router.DELETE("/api/contacts/:id", contactsController.Delete)

	// Attachment endpoints
	router.GET("/api/contacts/:id/attachments", attachmentsController.List)
	router.POST("/api/contacts/:id/attachments", attachmentsController.Upload)
	router.GET("/api/attachments/:id/download", attachmentsController.Download)
	router.DELETE("/api/attachments/:id", attachmentsController.Delete)

	// Import endpoints
	router.POST("/api/import/inspect", importController.Inspect)
	router.POST("/api/import", importController.Import)
	router.GET("/api/import/progress", importController.Progress)

	// Export endpoints
	router.GET("/api/export", exportController.Export)
	router.GET("/api/export/progress", exportController.Progress)

	return router
}
