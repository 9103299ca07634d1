package models

import "github.com/shopspring/decimal"

// LineSnapshot carries the per-line figures frozen at document creation time.
// Product name and prices are copied here so later edits to the Product (or a
// new exchange rate) never alter historical documents.
type LineSnapshot struct {
	ProductID    uint            `gorm:"not null;index"`
	ProductName  string          `gorm:"not null"`
	Quantity     int             `gorm:"not null"`
	UnitPriceUSD decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	UnitPriceFC  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxRate      decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	HTUSD        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	HTFC         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TVAUSD       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TVAFC        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TTCUSD       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TTCFC        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// DocumentTotals are the six document-level sums (HT/TVA/TTC × USD/FC).
type DocumentTotals struct {
	TotalHTUSD  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalHTFC   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalTVAUSD decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalTVAFC  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalTTCUSD decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalTTCFC  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// ClientSnapshot is the denormalized client identity copied onto quotes and
// invoices at creation. Deliberate: historical documents must not change when
// the Client record later changes.
type ClientSnapshot struct {
	ClientID    uint   `gorm:"not null;index"`
	ClientNom   string `gorm:"not null"`
	ClientEmail string
}
