package services

import (
	"errors"
	"testing"

	"github.com/mkadima/gestfact/internal/errs"
	"github.com/mkadima/gestfact/internal/models"

	"github.com/shopspring/decimal"
)

func TestComputeLineDualCurrency(t *testing.T) {
	// 100.00 USD, 16% tax, quantity 3, rate 2800
	product := &models.Product{
		ID:           1,
		Name:         "Service",
		UnitPriceUSD: decimal.RequireFromString("100.00"),
		TaxRate:      decimal.RequireFromString("16"),
	}
	line, err := ComputeLine(product, 3, decimal.NewFromInt(2800))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	assertDecimalEqual(t, "ht_usd", line.HTUSD, "300.00")
	assertDecimalEqual(t, "tva_usd", line.TVAUSD, "48.00")
	assertDecimalEqual(t, "ttc_usd", line.TTCUSD, "348.00")
	assertDecimalEqual(t, "ht_fc", line.HTFC, "840000.00")
	assertDecimalEqual(t, "tva_fc", line.TVAFC, "134400.00")
	assertDecimalEqual(t, "ttc_fc", line.TTCFC, "974400.00")
	if line.ProductName != "Service" {
		t.Fatalf("expected product name snapshot, got %q", line.ProductName)
	}
}

func TestComputeLineUsesStoredFCPrice(t *testing.T) {
	// When the product carries its own FC price, the rate must not be applied.
	product := &models.Product{
		UnitPriceUSD: decimal.RequireFromString("10.00"),
		UnitPriceFC:  decimal.NullDecimal{Decimal: decimal.RequireFromString("25000.00"), Valid: true},
		TaxRate:      decimal.Zero,
	}
	line, err := ComputeLine(product, 2, decimal.NewFromInt(2800))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	assertDecimalEqual(t, "unit_price_fc", line.UnitPriceFC, "25000.00")
	assertDecimalEqual(t, "ht_fc", line.HTFC, "50000.00")
}

func TestComputeLineCurrencyConsistency(t *testing.T) {
	// ht_fc ≈ ht_usd × rate within rounding tolerance for a derived FC price.
	product := &models.Product{
		UnitPriceUSD: decimal.RequireFromString("33.33"),
		TaxRate:      decimal.RequireFromString("16"),
	}
	rate := decimal.RequireFromString("2812.5")
	line, err := ComputeLine(product, 7, rate)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want := line.HTUSD.Mul(rate)
	if line.HTFC.Sub(want).Abs().GreaterThan(decimal.RequireFromString("0.01")) {
		t.Fatalf("ht_fc %s deviates from ht_usd×rate %s", line.HTFC, want)
	}
}

func TestComputeLineRejectsBadInput(t *testing.T) {
	product := &models.Product{UnitPriceUSD: decimal.NewFromInt(10), TaxRate: decimal.NewFromInt(16)}
	if _, err := ComputeLine(product, 0, decimal.NewFromInt(2800)); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
	if _, err := ComputeLine(product, -2, decimal.NewFromInt(2800)); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error for negative quantity, got %v", err)
	}
	bad := &models.Product{UnitPriceUSD: decimal.NewFromInt(10), TaxRate: decimal.NewFromInt(101)}
	if _, err := ComputeLine(bad, 1, decimal.NewFromInt(2800)); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error for tax rate > 100, got %v", err)
	}
}

func TestAggregateTotalsOrderIndependent(t *testing.T) {
	rate := decimal.NewFromInt(2800)
	products := []*models.Product{
		{Name: "A", UnitPriceUSD: decimal.RequireFromString("12.50"), TaxRate: decimal.RequireFromString("16")},
		{Name: "B", UnitPriceUSD: decimal.RequireFromString("7.99"), TaxRate: decimal.Zero},
		{Name: "C", UnitPriceUSD: decimal.RequireFromString("450.00"), TaxRate: decimal.RequireFromString("8")},
	}
	var lines []models.LineSnapshot
	for i, p := range products {
		line, err := ComputeLine(p, i+1, rate)
		if err != nil {
			t.Fatalf("compute %s: %v", p.Name, err)
		}
		lines = append(lines, line)
	}
	forward, err := AggregateTotals(lines)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	reversed := []models.LineSnapshot{lines[2], lines[1], lines[0]}
	backward, err := AggregateTotals(reversed)
	if err != nil {
		t.Fatalf("aggregate reversed: %v", err)
	}
	if !forward.TotalTTCUSD.Equal(backward.TotalTTCUSD) || !forward.TotalTTCFC.Equal(backward.TotalTTCFC) {
		t.Fatalf("totals depend on line order: %v vs %v", forward, backward)
	}
	// Totals equal the sum of per-line fields.
	var wantHTUSD decimal.Decimal
	for _, l := range lines {
		wantHTUSD = wantHTUSD.Add(l.HTUSD)
	}
	if !forward.TotalHTUSD.Equal(wantHTUSD) {
		t.Fatalf("total_ht_usd %s != sum of lines %s", forward.TotalHTUSD, wantHTUSD)
	}
	if !forward.TotalTTCUSD.Equal(forward.TotalHTUSD.Add(forward.TotalTVAUSD)) {
		t.Fatalf("ttc != ht + tva: %v", forward)
	}
}

func TestAggregateTotalsRejectsEmptyDocument(t *testing.T) {
	if _, err := AggregateTotals(nil); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error for empty document, got %v", err)
	}
}
