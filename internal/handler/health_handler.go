package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Home(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to the Reddit Post Classifier API!")
}
