package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ideamentor-dev/ideamentor/internal/config"
	"github.com/ideamentor-dev/ideamentor/internal/handlers"
	"github.com/ideamentor-dev/ideamentor/internal/mailer"
	"github.com/ideamentor-dev/ideamentor/internal/middleware"
	"github.com/ideamentor-dev/ideamentor/internal/otp"
	"github.com/ideamentor-dev/ideamentor/internal/token"
	"github.com/ideamentor-dev/ideamentor/internal/types"
)

func NewRouter(cfg *config.Config) *gin.Engine {
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

	tokens := token.NewService(cfg.JWTSecret)
	otps := otp.NewService(cfg.OTPSecret, mailer.NewSMTPSender(cfg))

	authHandler := handlers.NewAuthHandler(tokens, otps)
	googleHandler := handlers.NewGoogleHandler(cfg, tokens)

	requireAuth := middleware.AuthMiddleware(tokens)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/resend-otp", authHandler.ResendOTP)
			auth.POST("/verify/:code", authHandler.VerifyOTP)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", requireAuth, authHandler.Me)

			auth.GET("/google/login", googleHandler.Login)
			auth.GET("/google/callback", googleHandler.Callback)
		}

		users := api.Group("/users", requireAuth)
		{
			users.GET("/me", handlers.UserInfo)
			users.PUT("/password", handlers.ChangePassword)
			users.DELETE("/me", handlers.DeleteAccount)
		}

		projects := api.Group("/projects", requireAuth)
		{
			projects.GET("", handlers.ListProjects)
			projects.POST("", handlers.CreateProject)
			projects.GET("/:project_id", handlers.GetProject)
			projects.PUT("/:project_id", handlers.UpdateProject)
			projects.DELETE("/:project_id", handlers.DeleteProject)

			projects.GET("/:project_id/todos", handlers.ListProjectTodos)
			projects.POST("/:project_id/todos", handlers.CreateTodo)
		}

		todos := api.Group("/todos", requireAuth)
		{
			todos.GET("", handlers.ListTodos)
			todos.PUT("/:todo_id", handlers.UpdateTodo)
			todos.DELETE("/:todo_id", handlers.DeleteTodo)

			todos.GET("/:todo_id/resources", handlers.ListTodoResources)
			todos.POST("/:todo_id/resources", handlers.CreateResource)
		}

		resources := api.Group("/resources", requireAuth)
		{
			resources.GET("", handlers.ListResources)
			resources.PUT("/:resource_id", handlers.UpdateResource)
			resources.DELETE("/:resource_id", handlers.DeleteResource)
		}

		profile := api.Group("/profile", requireAuth)
		{
			profile.POST("/image", handlers.UploadProfileImage)
			profile.GET("/image", handlers.GetProfileImage)
			profile.PUT("/image", handlers.UpdateProfileImage)
		}
	}

	return r
}
