package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/FooledKiwi/flighttrack/internal/service"
	"github.com/FooledKiwi/flighttrack/internal/storage"
	"github.com/gin-gonic/gin"
)

// msgRouteSaved is shown after a successful create.
const msgRouteSaved = "Route saved successfully!"

// renderPageError logs err and renders the generic error page, with a 503
// when the request ran out of time.
func renderPageError(c *gin.Context, op string, err error) {
	log.Printf("handler: %s: %v", op, err)
	if isTimeout(err) {
		c.HTML(http.StatusServiceUnavailable, "error.html", gin.H{
			"Title": "Request timed out",
			"Error": "The request took too long. Please try again.",
		})
		return
	}
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"Title": "Something went wrong",
		"Error": "The request could not be completed. Please try again.",
	})
}

// Dashboard handles GET /
func (h *Handler) Dashboard(c *gin.Context) {
	sum, err := h.routes.Summary(c.Request.Context())
	if err != nil {
		renderPageError(c, "Dashboard", err)
		return
	}
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":   "Dashboard",
		"Summary": sum,
	})
}

// ---------------------------------------------------------------------------
// Nth route
// ---------------------------------------------------------------------------

// NthRouteForm handles GET /nth/
func (h *Handler) NthRouteForm(c *gin.Context) {
	c.HTML(http.StatusOK, "nth_node.html", gin.H{
		"Title": "Nth route",
		"Form":  nthRouteRequest{Position: string(storage.PositionLeft)},
	})
}

// NthRoute handles POST /nth/
func (h *Handler) NthRoute(c *gin.Context) {
	var req nthRouteRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "nth_node.html", gin.H{
			"Title": "Nth route",
			"Form":  req,
			"Error": bindErrorMessage(err),
		})
		return
	}
	req.normalize()

	rt, err := h.routes.NthRoute(c.Request.Context(), req.AirportCode, req.position(), req.N)
	if errors.Is(err, service.ErrInvalidRoute) {
		c.HTML(http.StatusBadRequest, "nth_node.html", gin.H{
			"Title": "Nth route",
			"Form":  req,
			"Error": invalidRouteMessage(err),
		})
		return
	}
	if err != nil {
		renderPageError(c, "NthRoute", err)
		return
	}

	c.HTML(http.StatusOK, "nth_node.html", gin.H{
		"Title":    "Nth route",
		"Form":     req,
		"Searched": true,
		"Route":    rt,
	})
}

// ---------------------------------------------------------------------------
// Create route
// ---------------------------------------------------------------------------

// CreateRouteForm handles GET /create/
func (h *Handler) CreateRouteForm(c *gin.Context) {
	c.HTML(http.StatusOK, "create_route.html", gin.H{
		"Title": "Add route",
		"Form":  createRouteRequest{Position: string(storage.PositionLeft)},
	})
}

// CreateRoute handles POST /create/
func (h *Handler) CreateRoute(c *gin.Context) {
	var req createRouteRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "create_route.html", gin.H{
			"Title": "Add route",
			"Form":  req,
			"Error": bindErrorMessage(err),
		})
		return
	}
	req.normalize()

	_, err := h.routes.CreateRoute(c.Request.Context(), req.AirportCode, req.position(), req.duration())
	switch {
	case err == nil:
		c.HTML(http.StatusOK, "create_route.html", gin.H{
			"Title":   "Add route",
			"Form":    createRouteRequest{Position: req.Position},
			"Message": msgRouteSaved,
		})
	case errors.Is(err, service.ErrRouteExists):
		c.HTML(http.StatusConflict, "create_route.html", gin.H{
			"Title": "Add route",
			"Form":  req,
			"Error": fmt.Sprintf("A %s route for %s already exists.", req.position().Label(), req.AirportCode),
		})
	case errors.Is(err, service.ErrInvalidRoute):
		c.HTML(http.StatusBadRequest, "create_route.html", gin.H{
			"Title": "Add route",
			"Form":  req,
			"Error": invalidRouteMessage(err),
		})
	default:
		renderPageError(c, "CreateRoute", err)
	}
}

// ---------------------------------------------------------------------------
// Longest / shortest
// ---------------------------------------------------------------------------

// LongestRoute handles GET /longest/
func (h *Handler) LongestRoute(c *gin.Context) {
	rt, err := h.routes.LongestRoute(c.Request.Context())
	if err != nil {
		renderPageError(c, "LongestRoute", err)
		return
	}
	c.HTML(http.StatusOK, "longest.html", gin.H{
		"Title": "Longest route",
		"Route": rt,
	})
}

// ShortestRouteForm handles GET /shortest/
func (h *Handler) ShortestRouteForm(c *gin.Context) {
	c.HTML(http.StatusOK, "shortest.html", gin.H{
		"Title": "Shortest route",
		"Form":  shortestRouteRequest{},
	})
}

// ShortestRoute handles POST /shortest/
func (h *Handler) ShortestRoute(c *gin.Context) {
	var req shortestRouteRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "shortest.html", gin.H{
			"Title": "Shortest route",
			"Form":  req,
			"Error": bindErrorMessage(err),
		})
		return
	}
	req.normalize()

	rt, err := h.routes.ShortestRoute(c.Request.Context(), req.Start, req.End)
	if err != nil {
		renderPageError(c, "ShortestRoute", err)
		return
	}

	c.HTML(http.StatusOK, "shortest.html", gin.H{
		"Title":    "Shortest route",
		"Form":     req,
		"Searched": true,
		"Route":    rt,
	})
}

// RouteList handles GET /route/
func (h *Handler) RouteList(c *gin.Context) {
	routes, err := h.routes.ListRoutes(c.Request.Context())
	if err != nil {
		renderPageError(c, "RouteList", err)
		return
	}
	c.HTML(http.StatusOK, "route_list.html", gin.H{
		"Title":  "All routes",
		"Routes": routes,
	})
}
