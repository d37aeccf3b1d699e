package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mferrier/booktracker/internal/storage"
)

type GoalsController struct {
	goals *storage.GoalStore
}

func NewGoalsController(goals *storage.GoalStore) *GoalsController {
	return &GoalsController{goals: goals}
}

func (c *GoalsController) Get(ctx *gin.Context) {
	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}

	goal, err := c.goals.GetYearlyGoal(year)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if goal == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no goal set for year"})
		return
	}
	ctx.JSON(http.StatusOK, goal)
}

type goalRequest struct {
	Target int `json:"target"`
}

func (c *GoalsController) Put(ctx *gin.Context) {
	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}

	var req goalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid goal payload: " + err.Error()})
		return
	}

	if err := c.goals.SetYearlyGoal(year, req.Target); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := c.goals.GetYearlyGoal(year)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, goal)
}
