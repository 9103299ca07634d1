package models

import "time"

// Quote / devis models
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuoteSent     QuoteStatus = "sent"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteRefused  QuoteStatus = "refused"
	QuoteExpired  QuoteStatus = "expired"
)

// quoteTransitions is the closed transition table. Anything not listed is an
// invalid transition, including self-transitions.
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteDraft: {QuoteSent},
	QuoteSent:  {QuoteAccepted, QuoteRefused, QuoteExpired},
}

// CanTransition reports whether from → to is a permitted quote transition.
func (from QuoteStatus) CanTransition(to QuoteStatus) bool {
	for _, s := range quoteTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status freezes the quote for edits.
func (s QuoteStatus) Terminal() bool { return s == QuoteAccepted || s == QuoteRefused }

type Quote struct {
	ID     uint        `gorm:"primaryKey"`
	Number string      `gorm:"not null;uniqueIndex"`
	Status QuoteStatus `gorm:"size:16;not null"`
	ClientSnapshot
	Currency Currency    `gorm:"size:3;not null"`
	Items    []QuoteItem `gorm:"foreignKey:QuoteID"`
	DocumentTotals
	ValidityDays    int `gorm:"not null"`
	ExpirationDate  time.Time
	AcceptanceDate  *time.Time
	LinkedInvoiceID *uint // si le devis est converti en facture
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EffectiveStatus returns the status as it should be read: a quote past its
// expiration date that is still "sent" reads as expired. The stored status is
// only changed by an explicit write.
func (q *Quote) EffectiveStatus(now time.Time) QuoteStatus {
	if q.Status == QuoteSent && now.After(q.ExpirationDate) {
		return QuoteExpired
	}
	return q.Status
}

type QuoteItem struct {
	ID      uint `gorm:"primaryKey"`
	QuoteID uint `gorm:"not null;index"`
	LineSnapshot
}
