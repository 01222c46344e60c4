package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/FooledKiwi/flighttrack/internal/service"
	"github.com/FooledKiwi/flighttrack/internal/storage"
	"github.com/gin-gonic/gin"
)

// Handler holds the dependencies shared by the HTML pages and the JSON API.
// Individual methods are registered as gin handler functions.
type Handler struct {
	routes *service.RouteService
}

// New creates a Handler backed by the given route service.
func New(routes *service.RouteService) *Handler {
	return &Handler{routes: routes}
}

// routeJSON is the public projection of a route used by every JSON endpoint.
func routeJSON(rt *storage.Route) gin.H {
	return gin.H{
		"id":           rt.ID,
		"airport_code": rt.AirportCode,
		"position":     rt.Position,
		"duration":     rt.Duration,
	}
}

func routesJSON(routes []storage.Route) []gin.H {
	out := make([]gin.H, len(routes))
	for i := range routes {
		out[i] = routeJSON(&routes[i])
	}
	return out
}

func writeRouteOrNotFound(c *gin.Context, rt *storage.Route) {
	if rt == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such route"})
		return
	}
	c.JSON(http.StatusOK, routeJSON(rt))
}

// isTimeout reports whether err comes from the request deadline set by the
// timeout middleware.
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// writeStoreError logs err and answers with a JSON error: 503 when the
// request ran out of time, 500 otherwise.
func writeStoreError(c *gin.Context, op string, err error, msg string) {
	log.Printf("handler: %s: %v", op, err)
	if isTimeout(err) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request timed out"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
