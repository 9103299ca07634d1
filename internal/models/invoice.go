package models

import "time"

// Invoicing models
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceDraft: {InvoiceSent, InvoiceCancelled},
	InvoiceSent:  {InvoicePaid, InvoiceCancelled},
}

// CanTransition reports whether from → to is a permitted invoice transition.
func (from InvoiceStatus) CanTransition(to InvoiceStatus) bool {
	for _, s := range invoiceTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Invoice struct {
	ID     uint          `gorm:"primaryKey"`
	Number string        `gorm:"not null;uniqueIndex"`
	Status InvoiceStatus `gorm:"size:16;not null"`
	ClientSnapshot
	Currency Currency      `gorm:"size:3;not null"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID"`
	DocumentTotals
	QuoteID     *uint // devis d'origine, si issue d'une conversion
	DueDate     *time.Time
	PaymentDate *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type InvoiceItem struct {
	ID        uint `gorm:"primaryKey"`
	InvoiceID uint `gorm:"not null;index"`
	LineSnapshot
}
