package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simppl/reddify/internal/model"
	appErr "github.com/simppl/reddify/internal/pkg/errors"
	"github.com/simppl/reddify/internal/pkg/response"
)

// Answerer is the RAG pipeline as the chat endpoint sees it.
type Answerer interface {
	AnswerQuestion(ctx context.Context, query string, nResults int) (*model.AnswerResult, error)
}

type ChatHandler struct {
	rag Answerer
}

func NewChatHandler(rag Answerer) *ChatHandler {
	return &ChatHandler{rag: rag}
}

type chatRequest struct {
	Query    string `json:"query"`
	NResults int    `json:"n_results"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		response.Error(c, http.StatusBadRequest, "Missing query parameter")
		return
	}
	result, err := h.rag.AnswerQuestion(c.Request.Context(), req.Query, req.NResults)
	if err != nil {
		if errors.Is(err, appErr.ErrInvalid) {
			response.Error(c, http.StatusBadRequest, "Missing query parameter")
			return
		}
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
