package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"curator/curation"
)

// SearchRequest is a semantic search query.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k,omitempty"`
}

// AskRequest is a grounded question about one item.
type AskRequest struct {
	Question       string `json:"question" binding:"required"`
	IncludeRelated bool   `json:"include_related,omitempty"`
}

// RegisterSearchRoutes registers semantic search and Q&A endpoints.
func RegisterSearchRoutes(r *gin.Engine, curator *curation.Curator) {
	r.POST("/api/search", func(c *gin.Context) {
		var req SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		results, err := curator.Search(c.Request.Context(), req.Query, req.TopK)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
	})

	r.POST("/api/items/:id/ask", func(c *gin.Context) {
		var req AskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		answer, err := curator.AnswerQuestion(c.Request.Context(), c.Param("id"), req.Question, req.IncludeRelated)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, answer)
	})
}
