package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourusername/trivia-engine/internal/middleware"
)

// Routes - обработчики и middleware, из которых собирается API
type Routes struct {
	Quiz    *QuizHandler
	Results *ResultHandler
	Bank    *BankHandler // nil, если банк вопросов не подключен
	WS      *WSHandler

	Auth        *middleware.AuthMiddleware
	CreateLimit gin.HandlerFunc // nil - без ограничения
}

// RegisterRoutes регистрирует маршруты API
func RegisterRoutes(router *gin.Engine, r Routes) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		sessions := api.Group("/sessions")
		{
			create := []gin.HandlerFunc{}
			if r.CreateLimit != nil {
				create = append(create, r.CreateLimit)
			}
			sessions.POST("", append(create, r.Quiz.StartSession)...)

			withID := sessions.Group("/:id")
			withID.Use(middleware.ExtractUUIDParam("id", SessionIDKey), r.Auth.RequireSessionTicket("id"))
			{
				withID.GET("", r.Quiz.GetSession)
				withID.POST("/guess", r.Quiz.Guess)
				withID.POST("/quit", r.Quiz.Quit)
				if r.WS != nil {
					withID.GET("/ws", r.WS.HandleConnection)
				}
			}
		}

		results := api.Group("/results")
		{
			results.GET("", r.Results.ListResults)
			results.GET("/stats", r.Results.GetStats)
			results.GET("/export", r.Auth.AdminOnly(), r.Results.ExportResults)
			results.GET("/:session_id", middleware.ExtractUUIDParam("session_id", ResultSessionIDKey), r.Results.GetResult)
		}

		if r.WS != nil {
			api.GET("/ws/stats", r.Auth.AdminOnly(), r.WS.GetStats)
		}

		if r.Bank != nil {
			bank := api.Group("/bank")
			{
				bank.GET("/stats", r.Bank.GetStats)
				bank.POST("/import", r.Auth.AdminOnly(), r.Bank.Import)
				bank.GET("/questions/:question_id", r.Auth.AdminOnly(), r.Bank.GetQuestion)
				bank.DELETE("/questions/:question_id", r.Auth.AdminOnly(), r.Bank.DeleteQuestion)
			}
		}
	}
}
