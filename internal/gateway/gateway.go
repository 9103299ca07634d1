// Package gateway abstracts the external payment provider. The billing core
// depends only on the Client interface; the simulated implementation stands
// in for the real provider in development and tests.
package gateway

import (
	"context"
	"sync"

	"github.com/mkadima/gestfact/internal/errs"
	"github.com/mkadima/gestfact/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session is a checkout session opened with the provider.
type Session struct {
	ID          string
	InvoiceID   uint
	Amount      decimal.Decimal
	Currency    models.Currency
	CheckoutURL string
}

// Status of a checkout session as reported by the provider.
type Status struct {
	SessionID      string
	InvoiceID      uint
	Currency       models.Currency
	Paid           bool
	TransactionRef string
}

// Client is the synchronous collaborator interface. Failures surface as
// errs.ErrGateway and never alter invoice or payment state.
type Client interface {
	CreateSession(ctx context.Context, invoiceID uint, amount decimal.Decimal, currency models.Currency) (*Session, error)
	CheckStatus(ctx context.Context, sessionID string) (*Status, error)
}

// Simulated is an in-memory gateway. Sessions settle when MarkSettled is
// called (the dev UI button, or a test).
type Simulated struct {
	mu       sync.Mutex
	sessions map[string]*simSession
}

type simSession struct {
	session Session
	paid    bool
	txRef   string
}

func NewSimulated() *Simulated {
	return &Simulated{sessions: make(map[string]*simSession)}
}

func (g *Simulated) CreateSession(ctx context.Context, invoiceID uint, amount decimal.Decimal, currency models.Currency) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Gateway("session_create_failed", err)
	}
	if !amount.IsPositive() {
		return nil, errs.Gateway("invalid_amount", nil)
	}
	id := uuid.NewString()
	s := Session{
		ID:          id,
		InvoiceID:   invoiceID,
		Amount:      amount,
		Currency:    currency,
		CheckoutURL: "https://gateway.invalid/checkout/" + id,
	}
	g.mu.Lock()
	g.sessions[id] = &simSession{session: s}
	g.mu.Unlock()
	return &s, nil
}

func (g *Simulated) CheckStatus(ctx context.Context, sessionID string) (*Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Gateway("status_check_failed", err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[sessionID]
	if !ok {
		return nil, errs.Gateway("unknown_session", nil)
	}
	return &Status{
		SessionID:      sessionID,
		InvoiceID:      s.session.InvoiceID,
		Currency:       s.session.Currency,
		Paid:           s.paid,
		TransactionRef: s.txRef,
	}, nil
}

// MarkSettled simulates the customer completing the checkout. Returns the
// transaction reference the provider would have issued.
func (g *Simulated) MarkSettled(sessionID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[sessionID]
	if !ok {
		return "", errs.Gateway("unknown_session", nil)
	}
	if !s.paid {
		s.paid = true
		s.txRef = "sim_" + uuid.NewString()
	}
	return s.txRef, nil
}
