package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with middleware, health and search routes.
func NewRouter(cfg HandlerConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(RequestID())
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		h := newSearchHandler(cfg)
		h.fail(c, NegotiateFormat(c), fmt.Errorf("panic: %v", recovered), 0)
		c.Abort()
	}))
	r.Use(LogMessageIn(cfg.AccessLog, cfg.Logger))

	out := newResponder(cfg)

	// health
	r.GET("/health", func(c *gin.Context) {
		out.negotiated(c, http.StatusOK, healthResponse{Status: "ok"})
	})

	RegisterSearchRoutes(r, cfg)

	r.NoRoute(out.routeError(http.StatusNotFound, "Not found"))
	r.NoMethod(out.routeError(http.StatusMethodNotAllowed, "Method not allowed"))

	return r
}
