// Package simulator derives a synthetic material master from cleaned retail
// transactions.
package simulator

import (
	"strings"

	"material-master/models"
)

// Default attributes given to every simulated material.
const (
	DefaultBaseUnit       = "EA"
	DefaultPlant          = "1000"
	DefaultValuationClass = "3000"
)

type pair struct {
	code        string
	description string
}

// Simulate builds one material per distinct (StockCode, Description) pair,
// keeping the first occurrence in input order. A stock code starting with
// "1" is a finished good (FERT); anything else is semi-finished (HALB).
// Every call recomputes the whole master.
func Simulate(transactions []models.Transaction) []models.MaterialMasterEntry {
	seen := make(map[pair]struct{}, len(transactions))
	out := make([]models.MaterialMasterEntry, 0)

	for _, tx := range transactions {
		p := pair{code: tx.StockCode, description: tx.Description}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}

		desc := tx.Description
		out = append(out, models.MaterialMasterEntry{
			MaterialNumber:      tx.StockCode,
			MaterialDescription: &desc,
			MaterialType:        MaterialType(tx.StockCode),
			BaseUnit:            DefaultBaseUnit,
			ProcurementType:     models.ProcurementInHouse,
			Plant:               DefaultPlant,
			ValuationClass:      DefaultValuationClass,
		})
	}
	return out
}

// MaterialType classifies a stock code.
func MaterialType(stockCode string) string {
	if strings.HasPrefix(stockCode, "1") {
		return models.MaterialTypeFinished
	}
	return models.MaterialTypeSemiFinished
}
