package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	dErrors "material-master/domainerrors"
	"material-master/pipeline"
	"material-master/workflow"
)

// Controller holds the services the HTTP handlers call.
type Controller struct {
	pipeline *pipeline.Pipeline
	workflow *workflow.Service
}

func New(p *pipeline.Pipeline, w *workflow.Service) *Controller {
	return &Controller{pipeline: p, workflow: w}
}

// Health reports that the server is up.
func (ctl *Controller) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps a domain error code to an HTTP status.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch dErrors.CodeOf(err) {
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
	case dErrors.CodeValidation:
		status = http.StatusBadRequest
	case dErrors.CodeInvalidState:
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": dErrors.CodeOf(err)})
}
