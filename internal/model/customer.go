package model

import "github.com/shopspring/decimal"

// Customer is the invoice recipient. Referenced by invoices for due-date
// derivation and format selection; never owned or mutated by the engine.
type Customer struct {
	ID               int64  `json:"id"`
	CustomerNumber   string `json:"customer_number,omitempty"`
	DisplayName      string `json:"display_name"`
	Email            string `json:"email,omitempty"`
	VATID            string `json:"vat_id,omitempty"`
	LeitwegID        string `json:"leitweg_id,omitempty"`
	PaymentTermsDays int    `json:"payment_terms_days"`
}

// Product is a catalog entry used to seed line items.
type Product struct {
	ID        int64           `json:"id"`
	SKU       string          `json:"sku,omitempty"`
	Name      string          `json:"name"`
	Unit      Unit            `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	VATRate   decimal.Decimal `json:"vat_rate"`
	Active    bool            `json:"is_active"`
}
