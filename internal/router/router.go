package router

import (
	"shift-tracker/internal/audit"
	"shift-tracker/internal/auth"
	"shift-tracker/internal/config"
	"shift-tracker/internal/handler"
	"shift-tracker/internal/messaging"
	"shift-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires every handler behind the right middleware chain:
// session resolution for anything personal, the administrative gate on top
// of that for management and audit routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	sessions := auth.NewSessionAuthority(db, cfg.Session.TTLHours)
	auditLogger := audit.NewLogger(db)
	policy := auth.Policy{RootUsername: cfg.Security.RootUsername}
	messages := messaging.NewService(db, cfg.Security.RootUsername)

	authHandler := handler.NewAuthHandler(db, sessions, auditLogger, cfg)
	profileHandler := handler.NewProfileHandler(db, cfg.Security.BcryptCost)
	userHandler := handler.NewUserHandler(db, policy, cfg.Security.BcryptCost)
	recordHandler := handler.NewRecordHandler(db, auditLogger)
	messageHandler := handler.NewMessageHandler(messages)
	logHandler := handler.NewLogHandler(auditLogger, cfg.App.LogPageSize)

	api := r.Group("/api")

	// no session required
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/change-password", authHandler.ChangePassword)

	// session required
	protected := api.Group("")
	protected.Use(middleware.Session(sessions, cfg.Session.CookieName))

	protected.GET("/auth/me", authHandler.Me)
	protected.GET("/me", authHandler.MeProfile)
	protected.PUT("/profile", profileHandler.UpdateProfile)
	protected.POST("/change-password", profileHandler.ChangePassword)

	protected.GET("/records", recordHandler.List)
	protected.POST("/records", recordHandler.Create)
	protected.PUT("/records/:id", recordHandler.Update)
	protected.DELETE("/records/:id", recordHandler.Delete)
	protected.GET("/records/export/csv", recordHandler.ExportCSV)
	protected.GET("/records/export/xlsx", recordHandler.ExportXLSX)

	protected.GET("/messages/conversations", messageHandler.Conversations)
	protected.GET("/messages/unread/count", messageHandler.UnreadCount)
	protected.GET("/messages/:username", messageHandler.ListWith)
	protected.PUT("/messages/:username/mark-read", messageHandler.MarkRead)
	protected.POST("/messages", messageHandler.Send)

	// administrative surface
	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin())

	admin.GET("/users", userHandler.List)
	admin.POST("/users", userHandler.Create)
	admin.PUT("/users/:id", userHandler.Update)
	admin.DELETE("/users/:id", userHandler.Delete)
	admin.PUT("/users/:id/toggle-status", userHandler.ToggleStatus)
	admin.PUT("/users/:id/role", userHandler.ChangeRole)
	admin.PUT("/users/:id/reset-password", userHandler.ResetPassword)
	admin.GET("/users/:id/records", userHandler.Records)

	admin.PUT("/records/:id/admin-edit", recordHandler.AdminEdit)
	admin.DELETE("/records/:id/admin-delete", recordHandler.AdminDelete)

	admin.GET("/logs/access", logHandler.Access)
	admin.GET("/logs/modifications", logHandler.Modifications)

	return r
}
