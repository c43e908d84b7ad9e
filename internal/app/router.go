package app

import (
	"study_assistant_backend/docs"
	"study_assistant_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(a.authMiddleware())
	{
		a.registerQuizRoutes(authGroup, c)
		a.registerUserDataRoutes(authGroup, c)
	}
}

func (a *App) registerQuizRoutes(rg *gin.RouterGroup, c *controllers) {
	quiz := rg.Group("/quiz")

	// 偏好与个性化
	quiz.GET("/preferences", c.preference.GetPreferences)
	quiz.PUT("/preferences", c.preference.UpdatePreferences)
	quiz.GET("/performance", c.personalization.GetPerformance)
	quiz.GET("/recommendations", c.personalization.GetRecommendations)
	quiz.POST("/personalize", c.personalization.Personalize)

	// 会话状态机
	quiz.GET("/state", c.quizSession.GetState)
	quiz.DELETE("/state/error", c.quizSession.ClearError)
	quiz.POST("/generate", c.quizSession.Generate)
	quiz.POST("/quizzes/:quizId/start", c.quizSession.StartQuiz)
	quiz.POST("/sessions/:sessionId/answers", c.quizSession.SubmitAnswer)
	quiz.POST("/sessions/:sessionId/complete", c.quizSession.Complete)
	quiz.POST("/sessions/:sessionId/abandon", c.quizSession.Abandon)
	quiz.POST("/review", c.quizSession.StartReview)
	quiz.POST("/chat", c.quizSession.ReturnToChat)
	quiz.GET("/history", c.quizSession.History)
}

func (a *App) registerUserDataRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/user/data/export", c.userData.Export)
	rg.DELETE("/user/data", c.userData.Erase)
}
