package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"tasktracker/internal/handlers"
	"tasktracker/internal/middleware"
	"tasktracker/internal/realtime"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Users   *handlers.UserHandler
	Tasks   *handlers.TaskHandler
	Teams   *handlers.TeamHandler
	Collab  *handlers.CollaborationHandler
	Reports *handlers.ReportHandler
	Hub     *realtime.Hub
}

func Register(r *gin.Engine, h Handlers, jwtSecret []byte) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Task Tracker API", "docs": "/swagger/index.html"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	protected := api.Group("", middleware.AuthMiddleware(jwtSecret))

	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/auth/me", h.Auth.Me)
	protected.GET("/users/profile", h.Users.GetProfile)
	protected.PUT("/users/profile", h.Users.UpdateProfile)

	tasks := protected.Group("/tasks")
	tasks.POST("", h.Tasks.Create)
	tasks.GET("", h.Tasks.List)
	tasks.GET("/:id", h.Tasks.Get)
	tasks.PUT("/:id", h.Tasks.Update)
	tasks.DELETE("/:id", h.Tasks.Delete)
	tasks.PATCH("/:id/complete", h.Tasks.Complete)
	tasks.PATCH("/:id/assign", h.Tasks.Assign)

	tasks.POST("/:id/comments", h.Collab.AddComment)
	tasks.GET("/:id/comments", h.Collab.ListComments)
	tasks.DELETE("/:id/comments/:commentId", h.Collab.DeleteComment)

	tasks.POST("/:id/attachments", h.Collab.Upload)
	tasks.GET("/:id/attachments", h.Collab.ListAttachments)
	tasks.GET("/:id/attachments/:attachmentId/download", h.Collab.Download)
	tasks.DELETE("/:id/attachments/:attachmentId", h.Collab.DeleteAttachment)

	teams := protected.Group("/teams")
	teams.POST("", h.Teams.Create)
	teams.GET("", h.Teams.List)
	teams.GET("/:id", h.Teams.Get)
	teams.PUT("/:id", h.Teams.Update)
	teams.DELETE("/:id", h.Teams.Delete)
	teams.POST("/:id/members", h.Teams.AddMember)
	teams.DELETE("/:id/members/:userId", h.Teams.RemoveMember)
	teams.GET("/:id/tasks", h.Teams.ListTasks)
	teams.GET("/:id/report", h.Reports.TeamReport)

	// socket clients carry a JWT like any other request; the register event
	// binds the authenticated user to the connection
	r.GET("/ws", middleware.AuthMiddleware(jwtSecret), h.Hub.HandleWS)
}
