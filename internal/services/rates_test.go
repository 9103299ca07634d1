package services

import (
	"errors"
	"testing"

	"github.com/mkadima/gestfact/internal/errs"
	"github.com/mkadima/gestfact/internal/models"

	"github.com/shopspring/decimal"
)

func TestActiveRateFallback(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewRateService(conn)
	rate, err := svc.Active(models.CurrencyUSD, models.CurrencyFC)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	assertDecimalEqual(t, "fallback rate", rate, "2800")
	// Other pairs have no documented fallback.
	if _, err := svc.Active(models.CurrencyFC, models.CurrencyUSD); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found for unconfigured pair, got %v", err)
	}
}

func TestSetActiveRateSwap(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewRateService(conn)

	if _, err := svc.SetActive(models.CurrencyUSD, models.CurrencyFC, mustDecimal(t, "2800")); err != nil {
		t.Fatalf("set 2800: %v", err)
	}
	if _, err := svc.SetActive(models.CurrencyUSD, models.CurrencyFC, mustDecimal(t, "2850")); err != nil {
		t.Fatalf("set 2850: %v", err)
	}

	// Exactly one active row for the pair, and it is the new rate.
	var activeCount int64
	conn.Model(&models.ExchangeRate{}).
		Where("base = ? AND target = ? AND active = ?", models.CurrencyUSD, models.CurrencyFC, true).
		Count(&activeCount)
	if activeCount != 1 {
		t.Fatalf("expected exactly 1 active rate, got %d", activeCount)
	}
	rate, err := svc.Active(models.CurrencyUSD, models.CurrencyFC)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	assertDecimalEqual(t, "active rate", rate, "2850")

	// Superseded rows are retained for history.
	history, err := svc.History(models.CurrencyUSD, models.CurrencyFC)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(history))
	}
}

func TestSetActiveRateValidation(t *testing.T) {
	conn := setupTestDB(t)
	svc := NewRateService(conn)
	if _, err := svc.SetActive(models.CurrencyUSD, models.CurrencyFC, decimal.Zero); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error for zero rate, got %v", err)
	}
	if _, err := svc.SetActive(models.CurrencyUSD, models.CurrencyFC, mustDecimal(t, "-5")); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error for negative rate, got %v", err)
	}
	if _, err := svc.SetActive(models.CurrencyUSD, models.CurrencyUSD, mustDecimal(t, "1")); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error for identical pair, got %v", err)
	}
	if _, err := svc.SetActive("EUR", models.CurrencyFC, mustDecimal(t, "3000")); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error for unknown currency, got %v", err)
	}
}
