package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	dErrors "material-master/domainerrors"
	"material-master/workflow"
)

// SubmitRequest handles a new material request.
func (ctl *Controller) SubmitRequest(c *gin.Context) {
	var in workflow.SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, dErrors.Wrap(err, dErrors.CodeValidation, "invalid request body"))
		return
	}

	req, err := ctl.workflow.Submit(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// ListRequests returns workflow requests, optionally filtered by status.
func (ctl *Controller) ListRequests(c *gin.Context) {
	requests, err := ctl.workflow.Requests(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// ApproveRequest approves a pending request and returns it with its audit
// record.
func (ctl *Controller) ApproveRequest(c *gin.Context) {
	var in workflow.ApproveInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, dErrors.Wrap(err, dErrors.CodeValidation, "invalid request body"))
		return
	}

	req, audit, err := ctl.workflow.Approve(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req, "audit": audit})
}

// GetAuditHistory returns the version history of one material, or of all
// materials when none is given.
func (ctl *Controller) GetAuditHistory(c *gin.Context) {
	history, err := ctl.workflow.History(c.Request.Context(), c.Query("material"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// ListAuditedMaterials returns the material numbers that have audit records.
func (ctl *Controller) ListAuditedMaterials(c *gin.Context) {
	materials, err := ctl.workflow.AuditedMaterials(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, materials)
}

// GetWorkflowKPIs returns the workflow KPIs.
func (ctl *Controller) GetWorkflowKPIs(c *gin.Context) {
	report, err := ctl.workflow.KPIs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "metrics": report.Metrics()})
}

// GetWorkflowDashboard returns everything the workflow dashboard shows.
func (ctl *Controller) GetWorkflowDashboard(c *gin.Context) {
	dash, err := ctl.workflow.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}
