package services

import (
	"errors"

	"github.com/mkadima/gestfact/internal/errs"
	"github.com/mkadima/gestfact/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RateService holds the active exchange rates. One row per (base, target)
// pair is active at a time; superseded rows are kept for history.
type RateService struct{ DB *gorm.DB }

func NewRateService(db *gorm.DB) *RateService { return &RateService{DB: db} }

// Active returns the active rate for the pair. An un-configured system still
// answers: USD→FC falls back to the documented default instead of failing.
func (s *RateService) Active(base, target models.Currency) (decimal.Decimal, error) {
	return s.activeIn(s.DB, base, target)
}

// activeIn resolves the rate on the given handle, so document creation reads
// it inside its own transaction.
func (s *RateService) activeIn(db *gorm.DB, base, target models.Currency) (decimal.Decimal, error) {
	var rate models.ExchangeRate
	err := db.Where("base = ? AND target = ? AND active = ?", base, target, true).First(&rate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if base == models.CurrencyUSD && target == models.CurrencyFC {
			return models.DefaultRateUSDFC, nil
		}
		return decimal.Zero, errs.NotFound("exchange_rate")
	}
	if err != nil {
		return decimal.Zero, err
	}
	return rate.Rate, nil
}

// SetActive installs a new active rate for the pair, deactivating the
// previous one in the same transaction so no reader observes zero or two
// active rows.
func (s *RateService) SetActive(base, target models.Currency, rate decimal.Decimal) (*models.ExchangeRate, error) {
	if !base.Valid() || !target.Valid() || base == target {
		return nil, errs.Validation("invalid_currency_pair", nil)
	}
	if !rate.IsPositive() {
		return nil, errs.Validation("rate_must_be_positive", map[string]string{"rate": "must_be_positive"})
	}
	row := models.ExchangeRate{Base: base, Target: target, Rate: rate, Active: true}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ExchangeRate{}).
			Where("base = ? AND target = ? AND active = ?", base, target, true).
			Update("active", false).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// History lists all rates for a pair, newest first.
func (s *RateService) History(base, target models.Currency) ([]models.ExchangeRate, error) {
	var rows []models.ExchangeRate
	err := s.DB.Where("base = ? AND target = ?", base, target).Order("id desc").Find(&rows).Error
	return rows, err
}
