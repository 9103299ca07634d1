package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product domain models
type UnitType struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null;unique"` // ex: pièce, heure, kg, etc.
	Symbol    string // ex: h, kg, m, etc.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product is a sellable good or service. Prices are kept in USD; the FC price
// is optional and, when absent, derived from the active rate at the moment a
// document line is built (never stored back on the product).
type Product struct {
	ID           uint            `gorm:"primaryKey"`
	Name         string          `gorm:"not null;index"`
	UnitPriceUSD decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	UnitPriceFC  decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	UnitTypeID   uint
	UnitType     UnitType        `gorm:"foreignKey:UnitTypeID"`
	TaxRate      decimal.Decimal `gorm:"type:decimal(5,2);not null"` // pourcentage, 0..100
	IsActive     bool            `gorm:"not null;default:true"`

	// Suivi de stock optionnel (produits physiques uniquement)
	StockTracking bool `gorm:"not null;default:false"`
	StockOnHand   int
	StockMinimum  int
	StockMaximum  int

	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
