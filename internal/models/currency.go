package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency codes supported by the application.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyFC  Currency = "FC" // Franc Congolais
)

// Valid reports whether c is a known currency code.
func (c Currency) Valid() bool { return c == CurrencyUSD || c == CurrencyFC }

// DefaultRateUSDFC is the fallback USD→FC rate used when no rate has been
// configured yet. Callers must tolerate an un-configured system.
var DefaultRateUSDFC = decimal.NewFromInt(2800)

// ExchangeRate stores a conversion rate between two currencies.
// At most one row per (base, target) pair may be active; superseded rows are
// kept for audit and never deleted.
type ExchangeRate struct {
	ID        uint            `gorm:"primaryKey"`
	Base      Currency        `gorm:"size:3;not null;index:idx_rate_pair"`
	Target    Currency        `gorm:"size:3;not null;index:idx_rate_pair"`
	Rate      decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	Active    bool            `gorm:"not null;index"`
	CreatedAt time.Time
}
