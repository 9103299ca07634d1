package services

import (
	"errors"
	"time"

	"github.com/mkadima/gestfact/internal/errs"
	"github.com/mkadima/gestfact/internal/models"

	"gorm.io/gorm"
)

// InvoiceService drives the invoice lifecycle and payment reconciliation.
// All writes run as single transactions; the transaction_reference unique
// index is the backstop against concurrent confirmation redeliveries.
type InvoiceService struct {
	DB    *gorm.DB
	Rates *RateService
	now   func() time.Time
}

func NewInvoiceService(db *gorm.DB, rates *RateService) *InvoiceService {
	return &InvoiceService{DB: db, Rates: rates, now: time.Now}
}

type CreateInvoiceInput struct {
	ClientID uint
	Currency models.Currency
	Items    []LineInput
	DueDate  *time.Time
}

// Create computes line snapshots and totals at the current rate and persists
// the invoice as draft. Default due date is 30 days out.
func (s *InvoiceService) Create(in CreateInvoiceInput) (*models.Invoice, error) {
	if !in.Currency.Valid() {
		return nil, errs.Validation("invalid_currency", map[string]string{"currency": "unknown"})
	}
	now := s.now()
	due := in.DueDate
	if due == nil {
		d := now.AddDate(0, 0, 30)
		due = &d
	}
	var invoice models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		client, err := loadClient(tx, in.ClientID)
		if err != nil {
			return err
		}
		lines, totals, err := buildLines(tx, s.Rates, in.Items)
		if err != nil {
			return err
		}
		invoice = models.Invoice{
			Number: documentNumber("FACT", now),
			Status: models.InvoiceDraft,
			ClientSnapshot: models.ClientSnapshot{
				ClientID:    client.ID,
				ClientNom:   client.Nom,
				ClientEmail: client.Email,
			},
			Currency:       in.Currency,
			DocumentTotals: totals,
			DueDate:        due,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		items := make([]models.InvoiceItem, 0, len(lines))
		for _, l := range lines {
			items = append(items, models.InvoiceItem{InvoiceID: invoice.ID, LineSnapshot: l})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		invoice.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Get loads an invoice with its items.
func (s *InvoiceService) Get(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.DB.Preload("Items").First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("invoice")
		}
		return nil, err
	}
	return &invoice, nil
}

// List returns invoices newest first.
func (s *InvoiceService) List(limit, offset int) ([]models.Invoice, int64, error) {
	var total int64
	if err := s.DB.Model(&models.Invoice{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var invoices []models.Invoice
	err := s.DB.Preload("Items").Order("id desc").Limit(limit).Offset(offset).Find(&invoices).Error
	return invoices, total, err
}

// Payments lists the payments recorded against an invoice.
func (s *InvoiceService) Payments(invoiceID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.DB.Where("invoice_id = ?", invoiceID).Order("id").Find(&payments).Error
	return payments, err
}

// UpdateStatus applies one explicit transition from the closed table. Paid
// invoices are fully immutable except for appending payments, and paid itself
// is only reachable through MarkPaid or RecordGatewayPayment.
func (s *InvoiceService) UpdateStatus(id uint, to models.InvoiceStatus) (*models.Invoice, error) {
	if to == models.InvoicePaid {
		return nil, errs.Validation("use_payment_endpoint", map[string]string{"status": "paid_requires_payment"})
	}
	var invoice models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&invoice, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("invoice")
			}
			return err
		}
		if invoice.Status == models.InvoicePaid || !invoice.Status.CanTransition(to) {
			return errs.InvalidTransition(string(invoice.Status), string(to))
		}
		if err := tx.Model(&invoice).Update("status", to).Error; err != nil {
			return err
		}
		return tx.Preload("Items").First(&invoice, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// MarkPaidInput configures the manual/administrative payment path.
type MarkPaidInput struct {
	Method   string           // defaults to "manual"
	Currency *models.Currency // overrides the invoice currency when set
}

// MarkPaid records a completed payment for the full TTC amount and marks the
// invoice paid, all in one transaction.
func (s *InvoiceService) MarkPaid(id uint, in MarkPaidInput) (*models.Payment, error) {
	method := in.Method
	if method == "" {
		method = models.MethodManual
	}
	now := s.now()
	var payment models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.First(&invoice, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("invoice")
			}
			return err
		}
		if invoice.Status == models.InvoicePaid {
			return errs.Precondition("already_paid")
		}
		if invoice.Status == models.InvoiceCancelled {
			return errs.Precondition("invoice_cancelled")
		}
		currency := invoice.Currency
		if in.Currency != nil {
			if !in.Currency.Valid() {
				return errs.Validation("invalid_currency", map[string]string{"currency": "unknown"})
			}
			currency = *in.Currency
		}
		payment = models.Payment{
			InvoiceID:     invoice.ID,
			InvoiceNumber: invoice.Number,
			AmountUSD:     invoice.TotalTTCUSD,
			AmountFC:      invoice.TotalTTCFC,
			Currency:      currency,
			Method:        method,
			Status:        models.PaymentCompleted,
			PaymentDate:   &now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return tx.Model(&invoice).Updates(map[string]any{
			"status":       models.InvoicePaid,
			"payment_date": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// RecordGatewayPayment is the external-confirmation path (webhook style).
// Redeliveries with the same transaction reference are no-ops: the first
// delivery wins, later ones get the already-recorded payment back. A race
// between two deliveries is settled by the unique index, not by
// check-then-act alone.
func (s *InvoiceService) RecordGatewayPayment(id uint, transactionRef string, currency models.Currency) (*models.Payment, error) {
	if transactionRef == "" {
		return nil, errs.Validation("missing_transaction_reference", map[string]string{"transaction_reference": "required"})
	}
	if !currency.Valid() {
		return nil, errs.Validation("invalid_currency", map[string]string{"currency": "unknown"})
	}
	// Fast path: confirmation already processed.
	if existing, ok, err := s.paymentByRef(transactionRef); err != nil {
		return nil, err
	} else if ok {
		return existing, nil
	}
	now := s.now()
	var payment models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.First(&invoice, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("invoice")
			}
			return err
		}
		if invoice.Status == models.InvoicePaid {
			return errs.Precondition("already_paid")
		}
		if invoice.Status == models.InvoiceCancelled {
			return errs.Precondition("invoice_cancelled")
		}
		ref := transactionRef
		payment = models.Payment{
			InvoiceID:      invoice.ID,
			InvoiceNumber:  invoice.Number,
			AmountUSD:      invoice.TotalTTCUSD,
			AmountFC:       invoice.TotalTTCFC,
			Currency:       currency,
			Method:         models.MethodGateway,
			Status:         models.PaymentCompleted,
			TransactionRef: &ref,
			PaymentDate:    &now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return tx.Model(&invoice).Updates(map[string]any{
			"status":       models.InvoicePaid,
			"payment_date": now,
		}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the race against a concurrent delivery of the same
		// confirmation; the other writer's payment is the result.
		if existing, ok, ferr := s.paymentByRef(transactionRef); ferr == nil && ok {
			return existing, nil
		}
		return nil, errs.Concurrency("duplicate_transaction_reference")
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *InvoiceService) paymentByRef(ref string) (*models.Payment, bool, error) {
	var payment models.Payment
	err := s.DB.Where("transaction_ref = ?", ref).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &payment, true, nil
}

// Delete removes an invoice, its items and its payments. Paid invoices
// cannot be deleted.
func (s *InvoiceService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.First(&invoice, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("invoice")
			}
			return err
		}
		if invoice.Status == models.InvoicePaid {
			return errs.Conflict("invoice_paid")
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		// Unlink the source quote so it can be converted again or deleted.
		if invoice.QuoteID != nil {
			if err := tx.Model(&models.Quote{}).Where("id = ?", *invoice.QuoteID).
				Update("linked_invoice_id", nil).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&invoice).Error
	})
}
