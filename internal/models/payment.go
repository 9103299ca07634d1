package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment tied to invoices
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Payment methods. Gateway payments always carry a transaction reference.
const (
	MethodManual  = "manual"
	MethodGateway = "gateway"
)

type Payment struct {
	ID            uint   `gorm:"primaryKey"`
	InvoiceID     uint   `gorm:"not null;index"`
	InvoiceNumber string `gorm:"not null"` // snapshot du numéro de facture
	AmountUSD     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AmountFC      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency      Currency        `gorm:"size:3;not null"`
	Method        string          `gorm:"not null"`
	Status        PaymentStatus   `gorm:"size:16;not null"`
	// Référence du prestataire de paiement. Unique: c'est la garde
	// d'idempotence contre les livraisons répétées de confirmations.
	TransactionRef *string `gorm:"uniqueIndex"`
	PaymentDate    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
