// models/material.go
package models

const (
	MaterialTypeFinished     = "FERT"
	MaterialTypeSemiFinished = "HALB"

	ProcurementInHouse  = "E"
	ProcurementExternal = "F"
)

type MaterialMasterEntry struct {
	MaterialNumber      string  `json:"material_number"`
	MaterialDescription *string `json:"material_description"` // nil when the export had no description
	MaterialType        string  `json:"material_type"`
	BaseUnit            string  `json:"base_unit"`
	ProcurementType     string  `json:"procurement_type"`
	Plant               string  `json:"plant"`
	ValuationClass      string  `json:"valuation_class"`
}

// Description returns the description or "" when it is missing.
func (m MaterialMasterEntry) Description() string {
	if m.MaterialDescription == nil {
		return ""
	}
	return *m.MaterialDescription
}
