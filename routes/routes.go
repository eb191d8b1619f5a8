package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"material-master/controllers"
)

func RegisterRoutes(router *gin.Engine, ctl *controllers.Controller, gatherer prometheus.Gatherer) {
	router.GET("/health", ctl.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		// Dashboard routes
		api.GET("/dashboard/materials", ctl.GetMaterialDashboard)
		api.GET("/dashboard/workflow", ctl.GetWorkflowDashboard)

		// Material master routes
		api.GET("/materials", ctl.ListMaterials)
		api.GET("/materials/types", ctl.ListMaterialTypes)
		api.GET("/materials/kpis", ctl.GetMaterialKPIs)
		api.POST("/materials/simulate", ctl.SimulateMaterials)

		// Validation routes
		api.GET("/validation", ctl.RunValidation)

		// Workflow routes
		api.POST("/workflow/requests", ctl.SubmitRequest)
		api.GET("/workflow/requests", ctl.ListRequests)
		api.POST("/workflow/requests/:id/approve", ctl.ApproveRequest)
		api.GET("/workflow/audit", ctl.GetAuditHistory)
		api.GET("/workflow/audit/materials", ctl.ListAuditedMaterials)
		api.GET("/workflow/kpis", ctl.GetWorkflowKPIs)
	}
}
