package handler

import (
	"net/http"
	"strings"

	"sprintsync/internal/suggest"
	"sprintsync/internal/util"

	"github.com/gin-gonic/gin"
)

// AIHandler serves task suggestions and the AI mode report.
type AIHandler struct {
	Suggest *suggest.Service
}

func NewAIHandler(svc *suggest.Service) *AIHandler {
	return &AIHandler{Suggest: svc}
}

type suggestReq struct {
	Title   string               `json:"title"`
	Context string               `json:"context"`
	Users   []suggest.RosterUser `json:"users"`
}

// SuggestTask drafts a description and estimate for a task title. The
// suggestion service itself never fails; the only client error here is
// a missing title.
func (h *AIHandler) SuggestTask(c *gin.Context) {
	var req suggestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Title is required for AI suggestions")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		util.Error(c, http.StatusBadRequest, "Title is required for AI suggestions")
		return
	}

	sg := h.Suggest.Suggest(c.Request.Context(), req.Title, strings.TrimSpace(req.Context), req.Users)
	c.JSON(http.StatusOK, sg)
}

// Status reports whether suggestions use the completion API or the
// deterministic fallback.
func (h *AIHandler) Status(c *gin.Context) {
	mode := h.Suggest.Mode()
	description := "Using intelligent fallback responses (OpenAI API key not configured)"
	if mode == "openai" {
		description = "Using OpenAI chat completions for AI suggestions"
	}
	c.JSON(http.StatusOK, gin.H{
		"mode":        mode,
		"description": description,
	})
}
