package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	dErrors "material-master/domainerrors"
	"material-master/pipeline"
)

// GetMaterialDashboard returns the KPI report, material types and the first
// page of the material master.
func (ctl *Controller) GetMaterialDashboard(c *gin.Context) {
	limit, ok := limitParam(c, pipeline.DefaultPageSize)
	if !ok {
		return
	}
	dash, err := ctl.pipeline.MaterialDashboard(limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// ListMaterials returns the material master, optionally filtered by type.
func (ctl *Controller) ListMaterials(c *gin.Context) {
	limit, ok := limitParam(c, 0)
	if !ok {
		return
	}
	entries, err := ctl.pipeline.Materials()
	if err != nil {
		respondError(c, err)
		return
	}

	filtered := pipeline.FilterByType(entries, c.Query("type"))
	if limit > 0 {
		filtered = pipeline.Head(filtered, limit)
	}
	c.JSON(http.StatusOK, filtered)
}

// ListMaterialTypes returns the distinct material types.
func (ctl *Controller) ListMaterialTypes(c *gin.Context) {
	entries, err := ctl.pipeline.Materials()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pipeline.MaterialTypes(entries))
}

// GetMaterialKPIs returns the data-quality KPIs of the material master.
func (ctl *Controller) GetMaterialKPIs(c *gin.Context) {
	report, err := ctl.pipeline.MaterialKPIs()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "metrics": report.Metrics()})
}

// SimulateMaterials rebuilds the material master from the retail export.
func (ctl *Controller) SimulateMaterials(c *gin.Context) {
	res, err := ctl.pipeline.BuildMaterialMaster()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// limitParam reads the optional limit query parameter.
func limitParam(c *gin.Context, fallback int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		respondError(c, dErrors.New(dErrors.CodeValidation, "limit must be a non-negative integer"))
		return 0, false
	}
	return n, true
}
