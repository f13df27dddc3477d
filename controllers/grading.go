package controllers

import (
	"context"
	"errors"
	"net/http"

	"gradebot/workers"

	"github.com/gin-gonic/gin"
)

// POST /api/grade
// Body (JSON or form): {"assignment": "...", "answer": "...", "session": "..."}
// Missing fields are empty strings; an empty answer is a valid submission.
func Grade(c *gin.Context) {
	grader, pool := workers.GraderInstance(c)
	if grader == nil || pool == nil {
		RespondError(c, "grader not configured", http.StatusInternalServerError)
		return
	}

	var req workers.Request
	if err := c.ShouldBind(&req); err != nil {
		RespondError(c, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var res workers.Result
	err := pool.Do(c.Request.Context(), func(ctx context.Context) {
		res = grader.Grade(ctx, req)
	})
	if errors.Is(err, workers.ErrPoolBusy) {
		RespondError(c, "grading is busy, please try again", http.StatusServiceUnavailable)
		return
	}

	switch res.Status {
	case workers.STATUS_LOOKUP_ERROR:
		c.JSON(http.StatusNotFound, res)
	case workers.STATUS_PROVIDER_ERROR:
		c.JSON(http.StatusBadGateway, res)
	default:
		RespondSuccess(c, res)
	}
}

// GET /health
func Health(c *gin.Context) {
	grader, _ := workers.GraderInstance(c)
	n := 0
	if grader != nil {
		n = grader.Assignments()
	}
	RespondSuccess(c, gin.H{"status": "ok", "assignments": n})
}
