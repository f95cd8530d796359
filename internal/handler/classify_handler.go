package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appErr "github.com/simppl/reddify/internal/pkg/errors"
	"github.com/simppl/reddify/internal/pkg/response"
)

// Classifier exposes the two black-box predictors to the HTTP layer.
type Classifier interface {
	PredictSubreddit(ctx context.Context, title string) (string, error)
	PredictSentiment(ctx context.Context, title string) (string, error)
}

type ClassifyHandler struct {
	classifiers Classifier
}

func NewClassifyHandler(classifiers Classifier) *ClassifyHandler {
	return &ClassifyHandler{classifiers: classifiers}
}

type classifyRequest struct {
	PostTitle string `json:"post_title"`
}

func (h *ClassifyHandler) PredictSubreddit(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.PostTitle) == "" {
		response.Error(c, http.StatusBadRequest, "Missing 'post_title' field")
		return
	}
	label, err := h.classifiers.PredictSubreddit(c.Request.Context(), req.PostTitle)
	if err != nil {
		if errors.Is(err, appErr.ErrModelUnavailable) {
			response.Error(c, http.StatusServiceUnavailable, "Subreddit model not loaded")
			return
		}
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"post_title":          req.PostTitle,
		"predicted_subreddit": label,
	})
}

func (h *ClassifyHandler) PredictSentiment(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.PostTitle) == "" {
		response.Error(c, http.StatusBadRequest, "Missing 'post_title' field")
		return
	}
	label, err := h.classifiers.PredictSentiment(c.Request.Context(), req.PostTitle)
	if err != nil {
		if errors.Is(err, appErr.ErrModelUnavailable) {
			response.Error(c, http.StatusServiceUnavailable, "Sentiment model not loaded")
			return
		}
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"post_title": req.PostTitle,
		"sentiment":  label,
	})
}
