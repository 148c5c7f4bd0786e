package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/grouptask-dev/grouptask/internal/handlers"
	"github.com/grouptask-dev/grouptask/internal/middleware"
	"github.com/grouptask-dev/grouptask/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", handlers.Signup)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", middleware.AuthMiddleware(), handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.GET("", handlers.ListTasks)
			tasks.POST("", handlers.CreateTask)

			// Edit draft endpoints; registered before :task_id so "edit"
			// is not parsed as an ID
			tasks.PUT("/edit", handlers.SubmitTaskEdit)
			tasks.DELETE("/edit", handlers.CancelTaskEdit)

			tasks.PATCH("/:task_id", handlers.UpdateTask)
			tasks.DELETE("/:task_id", handlers.DeleteTask)
			tasks.GET("/:task_id/activity", handlers.ListTaskActivity)
			tasks.POST("/:task_id/edit", handlers.OpenTaskEdit)
		}

		role := api.Group("/role", middleware.AuthMiddleware())
		{
			role.POST("", handlers.ChangeRole)
			role.POST("/verify", handlers.VerifyRole)
			role.DELETE("/pending", handlers.CancelRoleChange)
		}
	}

	return r
}
