// models/transaction.go
package models

import "time"

// Transaction is one cleaned line of the retail export.
type Transaction struct {
	InvoiceNo   string    `json:"invoice_no"`
	StockCode   string    `json:"stock_code"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	InvoiceDate time.Time `json:"invoice_date"`
	UnitPrice   float64   `json:"unit_price"`
	CustomerID  string    `json:"customer_id"` // "Unknown" when the export had none
	Country     string    `json:"country"`
}
