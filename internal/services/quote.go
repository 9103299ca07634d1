package services

import (
	"errors"
	"time"

	"github.com/mkadima/gestfact/internal/errs"
	"github.com/mkadima/gestfact/internal/models"

	"gorm.io/gorm"
)

const defaultValidityDays = 30

// QuoteService drives the quote lifecycle: creation with frozen totals,
// status transitions, and the one-way conversion into an invoice.
type QuoteService struct {
	DB    *gorm.DB
	Rates *RateService
	now   func() time.Time
}

func NewQuoteService(db *gorm.DB, rates *RateService) *QuoteService {
	return &QuoteService{DB: db, Rates: rates, now: time.Now}
}

type CreateQuoteInput struct {
	ClientID     uint
	Currency     models.Currency
	Items        []LineInput
	ValidityDays int
}

// Create computes the line snapshots and totals at the current rate and
// persists the quote as draft. Everything happens in one transaction.
func (s *QuoteService) Create(in CreateQuoteInput) (*models.Quote, error) {
	if !in.Currency.Valid() {
		return nil, errs.Validation("invalid_currency", map[string]string{"currency": "unknown"})
	}
	if in.ValidityDays < 0 {
		return nil, errs.Validation("invalid_validity", map[string]string{"validity_days": "must_not_be_negative"})
	}
	validity := in.ValidityDays
	if validity == 0 {
		validity = defaultValidityDays
	}
	now := s.now()
	var quote models.Quote
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		client, err := loadClient(tx, in.ClientID)
		if err != nil {
			return err
		}
		lines, totals, err := buildLines(tx, s.Rates, in.Items)
		if err != nil {
			return err
		}
		quote = models.Quote{
			Number: documentNumber("DEVIS", now),
			Status: models.QuoteDraft,
			ClientSnapshot: models.ClientSnapshot{
				ClientID:    client.ID,
				ClientNom:   client.Nom,
				ClientEmail: client.Email,
			},
			Currency:       in.Currency,
			DocumentTotals: totals,
			ValidityDays:   validity,
			ExpirationDate: now.AddDate(0, 0, validity),
		}
		if err := tx.Create(&quote).Error; err != nil {
			return err
		}
		items := make([]models.QuoteItem, 0, len(lines))
		for _, l := range lines {
			items = append(items, models.QuoteItem{QuoteID: quote.ID, LineSnapshot: l})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		quote.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Get loads a quote with its items.
func (s *QuoteService) Get(id uint) (*models.Quote, error) {
	var quote models.Quote
	if err := s.DB.Preload("Items").First(&quote, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("quote")
		}
		return nil, err
	}
	return &quote, nil
}

// List returns quotes newest first.
func (s *QuoteService) List(limit, offset int) ([]models.Quote, int64, error) {
	var total int64
	if err := s.DB.Model(&models.Quote{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var quotes []models.Quote
	err := s.DB.Preload("Items").Order("id desc").Limit(limit).Offset(offset).Find(&quotes).Error
	return quotes, total, err
}

// UpdateStatus applies one explicit transition from the closed table.
// Accepted and refused quotes are frozen.
func (s *QuoteService) UpdateStatus(id uint, to models.QuoteStatus) (*models.Quote, error) {
	var quote models.Quote
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&quote, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("quote")
			}
			return err
		}
		if quote.Status.Terminal() || !quote.Status.CanTransition(to) {
			return errs.InvalidTransition(string(quote.Status), string(to))
		}
		updates := map[string]any{"status": to}
		if to == models.QuoteAccepted {
			updates["acceptance_date"] = s.now()
		}
		if err := tx.Model(&quote).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Preload("Items").First(&quote, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// ConvertToInvoice turns an accepted quote into a draft invoice. The invoice
// copies the snapshot verbatim: no recomputation, whatever the product prices
// or exchange rate are today. The linked_invoice_id check-and-set is a single
// guarded UPDATE so two racing conversions cannot both succeed.
func (s *QuoteService) ConvertToInvoice(id uint) (*models.Invoice, error) {
	now := s.now()
	var invoice models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var quote models.Quote
		if err := tx.Preload("Items").First(&quote, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("quote")
			}
			return err
		}
		if quote.Status != models.QuoteAccepted {
			return errs.Precondition("quote_not_accepted")
		}
		if quote.LinkedInvoiceID != nil {
			return errs.Precondition("already_converted")
		}
		due := now.AddDate(0, 0, 30)
		invoice = models.Invoice{
			Number:         documentNumber("FACT", now),
			Status:         models.InvoiceDraft,
			ClientSnapshot: quote.ClientSnapshot,
			Currency:       quote.Currency,
			DocumentTotals: quote.DocumentTotals,
			QuoteID:        &quote.ID,
			DueDate:        &due,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		items := make([]models.InvoiceItem, 0, len(quote.Items))
		for _, it := range quote.Items {
			items = append(items, models.InvoiceItem{InvoiceID: invoice.ID, LineSnapshot: it.LineSnapshot})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		invoice.Items = items
		// Guarded set: only wins if nobody linked an invoice in between.
		res := tx.Model(&models.Quote{}).
			Where("id = ? AND linked_invoice_id IS NULL", quote.ID).
			Update("linked_invoice_id", invoice.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.Concurrency("quote_already_converted")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Delete removes a quote and its items. Converted quotes keep their invoice
// back-link and cannot be deleted.
func (s *QuoteService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var quote models.Quote
		if err := tx.First(&quote, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("quote")
			}
			return err
		}
		if quote.LinkedInvoiceID != nil {
			return errs.Conflict("quote_converted")
		}
		if err := tx.Where("quote_id = ?", quote.ID).Delete(&models.QuoteItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&quote).Error
	})
}
