package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-reminder-api/internal/middleware"
	"go.uber.org/zap"
)

// Router holds everything needed to mount the API routes.
type Router struct {
	Auth         *AuthHandler
	Users        *UserHandler
	Tasks        *TaskHandler
	Authn        middleware.Authenticator
	LoginLimiter *middleware.IPRateLimiter
	Logger       *zap.Logger
}

// Engine builds the gin engine with every route mounted.
func (rt Router) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(rt.Logger))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		respondOK(c, "Todo reminder API is running", gin.H{"status": "ok"})
	})

	requireAuth := middleware.RequireAuth(rt.Authn)
	taskID := middleware.RequireTaskID()

	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", rt.Auth.Register)
			auth.POST("/login", middleware.RateLimit(rt.LoginLimiter), rt.Auth.Login)
			auth.POST("/logout", requireAuth, rt.Auth.Logout)
			auth.GET("/me", requireAuth, rt.Auth.GetCurrentUser)
			auth.PUT("/device-token", requireAuth, rt.Auth.SaveDeviceToken)
			auth.PUT("/password", requireAuth, rt.Auth.ChangePassword)
		}

		// User routes (protected)
		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("", rt.Users.ListUsers)
			users.GET("/:id", rt.Users.GetUser)
			users.PUT("/:id", rt.Users.UpdateUser)
			users.DELETE("/:id", rt.Users.DeleteUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", rt.Tasks.ListTasks)
			tasks.POST("", rt.Tasks.CreateTask)
			tasks.GET("/overdue", rt.Tasks.ListOverdueTasks)
			tasks.GET("/search", rt.Tasks.SearchTasks)
			tasks.GET("/assigned", rt.Tasks.ListAssignedTasks)
			tasks.POST("/generate", rt.Tasks.GenerateTasks)
			tasks.DELETE("/bulk", rt.Tasks.BulkDeleteTasks)
			tasks.PUT("/assign", rt.Tasks.AssignTask)
			tasks.GET("/:id", taskID, rt.Tasks.GetTask)
			tasks.PUT("/:id", taskID, rt.Tasks.UpdateTask)
			tasks.DELETE("/:id", taskID, rt.Tasks.DeleteTask)
			tasks.PATCH("/:id/complete", taskID, rt.Tasks.ToggleTask)
			tasks.POST("/:id/unassign", taskID, rt.Tasks.UnassignTask)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found", "data": nil})
	})

	return r
}
