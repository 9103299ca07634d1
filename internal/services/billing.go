package services

import (
	"github.com/mkadima/gestfact/internal/errs"
	"github.com/mkadima/gestfact/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeLine builds the frozen line snapshot for one (product, quantity)
// pair. Pure: the product and rate are read, nothing is written. The FC unit
// price comes from the product when set, otherwise from USD × rate.
//
// Intermediate math keeps full decimal precision; rounding to 2 places
// happens once, on the stored figures.
func ComputeLine(product *models.Product, quantity int, rate decimal.Decimal) (models.LineSnapshot, error) {
	var line models.LineSnapshot
	if quantity <= 0 {
		return line, errs.Validation("invalid_quantity", map[string]string{"quantity": "must_be_positive"})
	}
	if product.TaxRate.IsNegative() || product.TaxRate.GreaterThan(hundred) {
		return line, errs.Validation("invalid_tax_rate", map[string]string{"tax_rate": "out_of_range"})
	}

	unitUSD := product.UnitPriceUSD
	unitFC := unitUSD.Mul(rate)
	if product.UnitPriceFC.Valid {
		unitFC = product.UnitPriceFC.Decimal
	}

	qty := decimal.NewFromInt(int64(quantity))
	htUSD := qty.Mul(unitUSD)
	htFC := qty.Mul(unitFC)
	taxFactor := product.TaxRate.Div(hundred)
	tvaUSD := htUSD.Mul(taxFactor)
	tvaFC := htFC.Mul(taxFactor)

	line = models.LineSnapshot{
		ProductID:    product.ID,
		ProductName:  product.Name,
		Quantity:     quantity,
		UnitPriceUSD: unitUSD.Round(2),
		UnitPriceFC:  unitFC.Round(2),
		TaxRate:      product.TaxRate,
		HTUSD:        htUSD.Round(2),
		HTFC:         htFC.Round(2),
		TVAUSD:       tvaUSD.Round(2),
		TVAFC:        tvaFC.Round(2),
		TTCUSD:       htUSD.Add(tvaUSD).Round(2),
		TTCFC:        htFC.Add(tvaFC).Round(2),
	}
	return line, nil
}

// AggregateTotals sums the six per-line fields. Addition is commutative, so
// the result does not depend on line order. A document needs at least one
// line.
func AggregateTotals(lines []models.LineSnapshot) (models.DocumentTotals, error) {
	var t models.DocumentTotals
	if len(lines) == 0 {
		return t, errs.Validation("empty_document", map[string]string{"items": "required"})
	}
	t.TotalHTUSD = decimal.Zero
	t.TotalHTFC = decimal.Zero
	t.TotalTVAUSD = decimal.Zero
	t.TotalTVAFC = decimal.Zero
	t.TotalTTCUSD = decimal.Zero
	t.TotalTTCFC = decimal.Zero
	for _, l := range lines {
		t.TotalHTUSD = t.TotalHTUSD.Add(l.HTUSD)
		t.TotalHTFC = t.TotalHTFC.Add(l.HTFC)
		t.TotalTVAUSD = t.TotalTVAUSD.Add(l.TVAUSD)
		t.TotalTVAFC = t.TotalTVAFC.Add(l.TVAFC)
		t.TotalTTCUSD = t.TotalTTCUSD.Add(l.TTCUSD)
		t.TotalTTCFC = t.TotalTTCFC.Add(l.TTCFC)
	}
	return t, nil
}
