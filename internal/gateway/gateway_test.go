package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mkadima/gestfact/internal/errs"
	"github.com/mkadima/gestfact/internal/models"

	"github.com/shopspring/decimal"
)

func TestSimulatedCheckoutFlow(t *testing.T) {
	g := NewSimulated()
	ctx := context.Background()
	amount := decimal.RequireFromString("348.00")

	session, err := g.CreateSession(ctx, 7, amount, models.CurrencyUSD)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.ID == "" || !strings.Contains(session.CheckoutURL, session.ID) {
		t.Fatalf("unexpected session: %+v", session)
	}

	status, err := g.CheckStatus(ctx, session.ID)
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if status.Paid || status.TransactionRef != "" {
		t.Fatalf("expected unpaid session, got %+v", status)
	}
	if status.InvoiceID != 7 || status.Currency != models.CurrencyUSD {
		t.Fatalf("status lost session context: %+v", status)
	}

	ref, err := g.MarkSettled(session.ID)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !strings.HasPrefix(ref, "sim_") {
		t.Fatalf("unexpected transaction reference %q", ref)
	}

	// Settling twice keeps the original reference.
	again, err := g.MarkSettled(session.ID)
	if err != nil {
		t.Fatalf("settle again: %v", err)
	}
	if again != ref {
		t.Fatalf("reference changed on repeat settle: %q vs %q", again, ref)
	}

	status, err = g.CheckStatus(ctx, session.ID)
	if err != nil {
		t.Fatalf("check status after settle: %v", err)
	}
	if !status.Paid || status.TransactionRef != ref {
		t.Fatalf("expected paid with reference %q, got %+v", ref, status)
	}
}

func TestSimulatedFailures(t *testing.T) {
	g := NewSimulated()
	ctx := context.Background()

	if _, err := g.CheckStatus(ctx, "nope"); !errors.Is(err, errs.ErrGateway) {
		t.Fatalf("expected gateway error for unknown session, got %v", err)
	}
	if _, err := g.MarkSettled("nope"); !errors.Is(err, errs.ErrGateway) {
		t.Fatalf("expected gateway error settling unknown session, got %v", err)
	}
	if _, err := g.CreateSession(ctx, 1, decimal.Zero, models.CurrencyUSD); !errors.Is(err, errs.ErrGateway) {
		t.Fatalf("expected gateway error for non-positive amount, got %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.CreateSession(cancelled, 1, decimal.NewFromInt(10), models.CurrencyUSD); !errors.Is(err, errs.ErrGateway) {
		t.Fatalf("expected gateway error on cancelled context, got %v", err)
	}
}
