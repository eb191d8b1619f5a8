package simulator

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	dErrors "material-master/domainerrors"
	"material-master/models"
	"material-master/table"
)

// Retail export column names.
const (
	ColInvoiceNo   = "InvoiceNo"
	ColStockCode   = "StockCode"
	ColDescription = "Description"
	ColQuantity    = "Quantity"
	ColInvoiceDate = "InvoiceDate"
	ColUnitPrice   = "UnitPrice"
	ColCustomerID  = "CustomerID"
	ColCountry     = "Country"
)

// UnknownCustomer replaces a missing CustomerID.
const UnknownCustomer = "Unknown"

var requiredRetailColumns = []string{
	ColInvoiceNo, ColStockCode, ColDescription, ColQuantity, ColInvoiceDate, ColUnitPrice,
}

// CleanStats counts what the cleaner dropped and why.
type CleanStats struct {
	Input         int `json:"input"`
	MissingFields int `json:"missing_fields"`
	NonPositive   int `json:"non_positive"`
	Duplicates    int `json:"duplicates"`
	BadDates      int `json:"bad_dates"`
	Output        int `json:"output"`
}

// Clean turns the raw retail export into transactions. Rows are dropped when
// InvoiceNo, StockCode or Description is missing, when Quantity or UnitPrice
// is not a positive number, when they repeat an earlier row exactly, or when
// InvoiceDate cannot be read. Surviving descriptions are trimmed and
// title-cased. The input table is not modified.
func Clean(t *table.Table) ([]models.Transaction, CleanStats, error) {
	stats := CleanStats{Input: t.Len()}
	for _, c := range requiredRetailColumns {
		if !t.HasColumn(c) {
			return nil, stats, dErrors.Newf(dErrors.CodeValidation, "retail export has no %s column", c)
		}
	}

	title := cases.Title(language.English)
	seen := make(map[string]struct{}, t.Len())
	out := make([]models.Transaction, 0, t.Len())

	for i := 0; i < t.Len(); i++ {
		if missing(t, i, ColInvoiceNo) || missing(t, i, ColStockCode) || missing(t, i, ColDescription) {
			stats.MissingFields++
			continue
		}

		qty, qok := cell(t, i, ColQuantity).Float()
		price, pok := cell(t, i, ColUnitPrice).Float()
		if !qok || !pok || qty <= 0 || price <= 0 {
			stats.NonPositive++
			continue
		}

		key := rowKey(t, i)
		if _, dup := seen[key]; dup {
			stats.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		invoiceDate, ok := cell(t, i, ColInvoiceDate).Time()
		if !ok {
			stats.BadDates++
			continue
		}

		customer := UnknownCustomer
		if v := cell(t, i, ColCustomerID); !v.IsNull() {
			customer = v.String()
		}

		out = append(out, models.Transaction{
			InvoiceNo:   cell(t, i, ColInvoiceNo).String(),
			StockCode:   cell(t, i, ColStockCode).String(),
			Description: title.String(strings.TrimSpace(cell(t, i, ColDescription).String())),
			Quantity:    qty,
			InvoiceDate: invoiceDate,
			UnitPrice:   price,
			CustomerID:  customer,
			Country:     cell(t, i, ColCountry).String(),
		})
	}

	stats.Output = len(out)
	return out, stats, nil
}

func cell(t *table.Table, row int, column string) table.Value {
	v, _ := t.Value(row, column)
	return v
}

func missing(t *table.Table, row int, column string) bool {
	return cell(t, row, column).IsNull()
}

// rowKey identifies a row by all of its cells.
func rowKey(t *table.Table, row int) string {
	values := t.Row(row)
	parts := make([]string, len(values))
	for i, v := range values {
		if v.IsNull() {
			parts[i] = "\x00"
			continue
		}
		parts[i] = v.String()
	}
	return strings.Join(parts, "\x1f")
}
