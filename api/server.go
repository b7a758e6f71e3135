// Package api exposes the pipeline's control surface over HTTP:
// trigger/status for the scheduler, item retrieval, semantic search
// and question answering.
package api

import (
	"github.com/gin-gonic/gin"

	"curator/curation"
	"curator/scheduler"
	"curator/store"
)

// Deps carries the collaborators the controllers need.
type Deps struct {
	Scheduler *scheduler.Scheduler
	Curator   *curation.Curator
	Items     store.ItemStore
	Badges    store.BadgeStore
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	RegisterHealthRoutes(r)
	RegisterScanRoutes(r, deps.Scheduler)
	RegisterItemRoutes(r, deps.Items, deps.Badges)
	RegisterSearchRoutes(r, deps.Curator)
	return r
}
