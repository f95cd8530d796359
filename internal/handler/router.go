package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Health   *HealthHandler
	Chat     *ChatHandler
	Classify *ClassifyHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/", deps.Health.Home)
	api.POST("/predict", deps.Classify.PredictSubreddit)
	api.POST("/predict-sentiment", deps.Classify.PredictSentiment)
	api.POST("/api/chat", deps.Chat.Chat)
}
