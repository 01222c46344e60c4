package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/FooledKiwi/flighttrack/internal/service"
	"github.com/gin-gonic/gin"
)

// ListRoutesJSON handles /routes. Only GET is served; every other method is
// answered with a 405 and the store is left untouched.
//
// Response 200:
//
//	{"status":"success","count":2,"routes":[{"id":1,"airport_code":"JFK","position":"L","duration":30}, ...]}
func (h *Handler) ListRoutesJSON(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"status":  "error",
			"message": "Only GET method allowed",
		})
		return
	}

	routes, err := h.routes.ListRoutes(c.Request.Context())
	if err != nil {
		log.Printf("handler: ListRoutesJSON: %v", err)
		status, msg := http.StatusInternalServerError, "failed to list routes"
		if isTimeout(err) {
			status, msg = http.StatusServiceUnavailable, "request timed out"
		}
		c.JSON(status, gin.H{
			"status":  "error",
			"message": msg,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"count":  len(routes),
		"routes": routesJSON(routes),
	})
}

// ---------------------------------------------------------------------------
// /api/v1
// ---------------------------------------------------------------------------

// ListRoutes handles GET /api/v1/routes
func (h *Handler) ListRoutes(c *gin.Context) {
	routes, err := h.routes.ListRoutes(c.Request.Context())
	if err != nil {
		writeStoreError(c, "ListRoutes", err, "failed to list routes")
		return
	}
	c.JSON(http.StatusOK, routesJSON(routes))
}

// CreateRouteJSON handles POST /api/v1/routes
//
// Body: {"airport_code":"JFK","position":"L","duration":30}
//
// Response 201: the stored route.
// Response 400: missing or invalid fields.
// Response 409: a route for the same airport code and position exists.
func (h *Handler) CreateRouteJSON(c *gin.Context) {
	var req createRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}
	req.normalize()

	rt, err := h.routes.CreateRoute(c.Request.Context(), req.AirportCode, req.position(), req.duration())
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, routeJSON(rt))
	case errors.Is(err, service.ErrRouteExists):
		c.JSON(http.StatusConflict, gin.H{"error": "route already exists"})
	case errors.Is(err, service.ErrInvalidRoute):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidRouteMessage(err)})
	default:
		writeStoreError(c, "CreateRouteJSON", err, "failed to create route")
	}
}

// GetNthRoute handles GET /api/v1/routes/nth?airport_code=JFK&position=L&n=1
func (h *Handler) GetNthRoute(c *gin.Context) {
	var req nthRouteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}
	req.normalize()

	rt, err := h.routes.NthRoute(c.Request.Context(), req.AirportCode, req.position(), req.N)
	if errors.Is(err, service.ErrInvalidRoute) {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidRouteMessage(err)})
		return
	}
	if err != nil {
		writeStoreError(c, "GetNthRoute", err, "failed to query route")
		return
	}
	writeRouteOrNotFound(c, rt)
}

// GetLongestRoute handles GET /api/v1/routes/longest
func (h *Handler) GetLongestRoute(c *gin.Context) {
	rt, err := h.routes.LongestRoute(c.Request.Context())
	if err != nil {
		writeStoreError(c, "GetLongestRoute", err, "failed to query route")
		return
	}
	writeRouteOrNotFound(c, rt)
}

// GetShortestRoute handles GET /api/v1/routes/shortest?start=JFK&end=LAX
//
// The result is the single shortest route stored at either airport; no path
// between the two is computed.
func (h *Handler) GetShortestRoute(c *gin.Context) {
	var req shortestRouteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}
	req.normalize()

	rt, err := h.routes.ShortestRoute(c.Request.Context(), req.Start, req.End)
	if err != nil {
		writeStoreError(c, "GetShortestRoute", err, "failed to query route")
		return
	}
	writeRouteOrNotFound(c, rt)
}
