package services

import (
	"errors"

	"github.com/mkadima/gestfact/internal/errs"
	"github.com/mkadima/gestfact/internal/models"

	"gorm.io/gorm"
)

// LineInput is one (product, quantity) pair supplied by the caller when
// creating a quote or invoice.
type LineInput struct {
	ProductID uint
	Quantity  int
}

// buildLines resolves products, applies the active rate and computes the
// frozen snapshots plus document totals for a new quote or invoice.
func buildLines(db *gorm.DB, rates *RateService, items []LineInput) ([]models.LineSnapshot, models.DocumentTotals, error) {
	var totals models.DocumentTotals
	if len(items) == 0 {
		return nil, totals, errs.Validation("empty_document", map[string]string{"items": "required"})
	}
	rate, err := rates.activeIn(db, models.CurrencyUSD, models.CurrencyFC)
	if err != nil {
		return nil, totals, err
	}
	lines := make([]models.LineSnapshot, 0, len(items))
	for _, it := range items {
		var product models.Product
		if err := db.First(&product, it.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, totals, errs.NotFound("product")
			}
			return nil, totals, err
		}
		if !product.IsActive {
			return nil, totals, errs.Validation("inactive_product", map[string]string{"product_id": "inactive"})
		}
		line, err := ComputeLine(&product, it.Quantity, rate)
		if err != nil {
			return nil, totals, err
		}
		lines = append(lines, line)
	}
	totals, err = AggregateTotals(lines)
	if err != nil {
		return nil, totals, err
	}
	return lines, totals, nil
}

// loadClient fetches the client used for the document snapshot.
func loadClient(db *gorm.DB, id uint) (*models.Client, error) {
	var client models.Client
	if err := db.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("client")
		}
		return nil, err
	}
	return &client, nil
}
