package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunValidation applies the rule set to the raw material master file.
// Findings are part of a successful response.
func (ctl *Controller) RunValidation(c *gin.Context) {
	report, err := ctl.pipeline.Validate("")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"passed": report.Passed(),
		"report": report,
	})
}
