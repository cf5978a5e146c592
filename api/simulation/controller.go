package simulationapi

import (
	"errors"
	"net/http"

	dmn "github.com/beka-birhanu/gridnav/domain"
	"github.com/beka-birhanu/gridnav/grid"
	"github.com/beka-birhanu/gridnav/navigator"
	"github.com/beka-birhanu/gridnav/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Controller handles HTTP requests for simulation runs.
type Controller struct {
	simulator i.Simulator
}

// NewController creates a new Controller.
func NewController(s i.Simulator) *Controller {
	return &Controller{
		simulator: s,
	}
}

// RegisterPublic registers public routes.
func (c *Controller) RegisterPublic(route *gin.RouterGroup) {
	route.GET("/grid", c.gridInfo)
}

// RegisterProtected registers privileged routes.
func (c *Controller) RegisterProtected(route *gin.RouterGroup) {
	simulations := route.Group("/simulations")
	{
		simulations.POST("", c.submit)
		simulations.GET("/:ID", c.result)
	}
}

// gridInfo describes the shared grid; ?render=true adds its text rendering.
func (c *Controller) gridInfo(ctx *gin.Context) {
	stats, rendering := c.simulator.Grid()
	response := GridResponse{Stats: stats}
	if ctx.Query("render") == "true" {
		response.Rendering = rendering
	}
	ctx.JSON(http.StatusOK, response)
}

// submit queues a new run.
func (c *Controller) submit(ctx *gin.Context) {
	var request SimulationRequest

	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := c.simulator.Submit(ctx.Request.Context(), request.Start.coordinate(), request.Goal.coordinate())
	if err != nil {
		if errors.Is(err, grid.ErrOutOfBounds) || errors.Is(err, navigator.ErrBlockedEndpoint) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusAccepted, SubmitResponse{ID: id.String()})
}

// result returns a stored run.
func (c *Controller) result(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid run ID"})
		return
	}

	run, err := c.simulator.Result(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, dmn.ErrRunNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, run)
}
