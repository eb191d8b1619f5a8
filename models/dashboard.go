// models/dashboard.go
package models

type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type MaterialDashboard struct {
	KPIs          []Metric              `json:"kpis"`
	TotalRows     int                   `json:"total_rows"`
	MaterialTypes []string              `json:"material_types"`
	Materials     []MaterialMasterEntry `json:"materials"` // first page only
}

type WorkflowDashboard struct {
	KPIs             []Metric          `json:"kpis"`
	Pending          []WorkflowRequest `json:"pending"`
	Requests         []WorkflowRequest `json:"requests"`
	AuditedMaterials []string          `json:"audited_materials"`
}
