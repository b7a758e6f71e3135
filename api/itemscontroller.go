package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"curator/store"
	"curator/types"
)

// ItemResponse pairs an item with its normalized badges.
type ItemResponse struct {
	Item   *types.Item   `json:"item"`
	Badges []types.Badge `json:"badges"`
}

// RegisterItemRoutes registers item retrieval endpoints.
func RegisterItemRoutes(r *gin.Engine, items store.ItemStore, badges store.BadgeStore) {
	g := r.Group("/api/items")

	g.GET("", func(c *gin.Context) {
		sourceID, _ := strconv.ParseInt(c.Query("source_id"), 10, 64)
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		list, err := items.ListItems(c.Request.Context(), sourceID, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": list, "count": len(list)})
	})

	g.GET("/:id", func(c *gin.Context) {
		id := c.Param("id")
		item, err := items.GetItem(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if item == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}

		linked, err := badges.ListItemBadges(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, ItemResponse{Item: item, Badges: linked})
	})
}
