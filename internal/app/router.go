package app

import (
	"narraprep_backend/docs"
	"narraprep_backend/internal/config"
	"narraprep_backend/internal/middleware"
	"narraprep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api/v1")
	// 可选认证：有 token 时解析身份，否则回退到 user_id 参数
	api.Use(middleware.TryAuthMiddleware(cfg))
	{
		a.registerSystemRoutes(api, c)
		a.registerUserRoutes(api, c)
		a.registerQuestionRoutes(api, c)
		a.registerQuizRoutes(api, c)
		a.registerAttemptRoutes(api, c)
	}
}

func (a *App) registerSystemRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/health", c.health.HealthCheck)
	api.GET("/health/firebase", c.health.BackendHealth)
	api.GET("/config/firebase", c.config.FirebaseConfig)
	api.POST("/auth/login", c.auth.Login)
}

func (a *App) registerUserRoutes(api *gin.RouterGroup, c *controllers) {
	users := api.Group("/users")
	{
		users.GET("", c.user.ListUsers)
		users.GET("/me", c.user.GetCurrentUser)
		users.GET("/:user_id", c.user.GetUser)
		users.POST("", c.user.CreateUser)
		users.PUT("/:user_id", c.user.UpdateUser)
		users.POST("/:user_id/avatar", c.user.UploadAvatar)
	}
}

func (a *App) registerQuestionRoutes(api *gin.RouterGroup, c *controllers) {
	questions := api.Group("/questions")
	{
		questions.GET("", c.question.ListQuestions)
		questions.GET("/:id", c.question.GetQuestion)
		questions.POST("", c.question.CreateQuestion)
		questions.PUT("/:id", c.question.UpdateQuestion)
		questions.DELETE("/:id", c.question.DeleteQuestion)
		questions.POST("/:id/image", c.question.UploadImage)
	}
}

func (a *App) registerQuizRoutes(api *gin.RouterGroup, c *controllers) {
	quizzes := api.Group("/quizzes")
	{
		quizzes.GET("", c.quiz.ListQuizzes)
		quizzes.GET("/user/:user_id", c.quiz.ListUserQuizzes)
		quizzes.GET("/:id", c.quiz.GetQuiz)
		quizzes.POST("", c.quiz.CreateQuiz)
		quizzes.PUT("/:id", c.quiz.UpdateQuiz)
		quizzes.DELETE("/:id", c.quiz.DeleteQuiz)
	}
}

func (a *App) registerAttemptRoutes(api *gin.RouterGroup, c *controllers) {
	attempts := api.Group("/attempts")
	{
		attempts.GET("/user/:user_id", c.attempt.ListUserAttempts)
		attempts.GET("/quiz/:quiz_id", c.attempt.ListQuizAttempts)
		attempts.GET("/:id", c.attempt.GetAttempt)
		attempts.POST("", c.attempt.CreateAttempt)
		attempts.PUT("/:id", c.attempt.UpdateAttempt)
		attempts.DELETE("/:id", c.attempt.DeleteAttempt)
	}
}
