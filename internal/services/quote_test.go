package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mkadima/gestfact/internal/errs"
	"github.com/mkadima/gestfact/internal/models"
)

func newQuoteService(t *testing.T) (*QuoteService, models.Client, models.Product) {
	t.Helper()
	conn := setupTestDB(t)
	client, product := seedBillingFixtures(t, conn)
	svc := NewQuoteService(conn, NewRateService(conn))
	return svc, client, product
}

func TestQuoteCreate(t *testing.T) {
	svc, client, product := newQuoteService(t)
	fixed := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	quote, err := svc.Create(CreateQuoteInput{
		ClientID: client.ID,
		Currency: models.CurrencyUSD,
		Items:    []LineInput{{ProductID: product.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quote.Status != models.QuoteDraft {
		t.Fatalf("expected draft, got %s", quote.Status)
	}
	if !strings.HasPrefix(quote.Number, "DEVIS-20250101-") || len(quote.Number) != len("DEVIS-20250101-")+6 {
		t.Fatalf("unexpected number format: %s", quote.Number)
	}
	// Default validity 30 days: 2025-01-01 → 2025-01-31.
	if got := quote.ExpirationDate; got.Year() != 2025 || got.Month() != time.January || got.Day() != 31 {
		t.Fatalf("expected expiration 2025-01-31, got %s", got)
	}
	if quote.ClientNom != client.Nom {
		t.Fatalf("expected client snapshot %q, got %q", client.Nom, quote.ClientNom)
	}
	assertDecimalEqual(t, "total_ttc_usd", quote.TotalTTCUSD, "348.00")
	assertDecimalEqual(t, "total_ttc_fc", quote.TotalTTCFC, "974400.00")
	if len(quote.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(quote.Items))
	}
}

func TestQuoteCreateValidation(t *testing.T) {
	svc, client, product := newQuoteService(t)
	if _, err := svc.Create(CreateQuoteInput{ClientID: client.ID, Currency: "EUR", Items: []LineInput{{ProductID: product.ID, Quantity: 1}}}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error for currency, got %v", err)
	}
	if _, err := svc.Create(CreateQuoteInput{ClientID: client.ID, Currency: models.CurrencyUSD}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error for empty items, got %v", err)
	}
	if _, err := svc.Create(CreateQuoteInput{ClientID: 9999, Currency: models.CurrencyUSD, Items: []LineInput{{ProductID: product.ID, Quantity: 1}}}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found for unknown client, got %v", err)
	}
	if _, err := svc.Create(CreateQuoteInput{ClientID: client.ID, Currency: models.CurrencyUSD, Items: []LineInput{{ProductID: 9999, Quantity: 1}}}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
	// Zero validity means "use the default"; a negative value is bad input.
	if _, err := svc.Create(CreateQuoteInput{ClientID: client.ID, Currency: models.CurrencyUSD, Items: []LineInput{{ProductID: product.ID, Quantity: 1}}, ValidityDays: -5}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error for negative validity, got %v", err)
	}
}

func TestQuoteStatusTransitions(t *testing.T) {
	svc, client, product := newQuoteService(t)
	quote, err := svc.Create(CreateQuoteInput{ClientID: client.ID, Currency: models.CurrencyUSD, Items: []LineInput{{ProductID: product.ID, Quantity: 1}}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// draft → accepted is not in the table.
	if _, err := svc.UpdateStatus(quote.ID, models.QuoteAccepted); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition draft→accepted, got %v", err)
	}
	if _, err := svc.UpdateStatus(quote.ID, models.QuoteSent); err != nil {
		t.Fatalf("draft→sent: %v", err)
	}
	accepted, err := svc.UpdateStatus(quote.ID, models.QuoteAccepted)
	if err != nil {
		t.Fatalf("sent→accepted: %v", err)
	}
	if accepted.AcceptanceDate == nil {
		t.Fatal("expected acceptance_date to be stamped")
	}
	// Accepted is terminal for edits.
	if _, err := svc.UpdateStatus(quote.ID, models.QuoteRefused); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition from accepted, got %v", err)
	}
}

func TestQuoteEffectiveStatusExpiry(t *testing.T) {
	quote := &models.Quote{Status: models.QuoteSent, ExpirationDate: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)}
	if got := quote.EffectiveStatus(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)); got != models.QuoteSent {
		t.Fatalf("expected sent before expiry, got %s", got)
	}
	if got := quote.EffectiveStatus(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)); got != models.QuoteExpired {
		t.Fatalf("expected expired after expiry, got %s", got)
	}
	// Only sent quotes derive expiry; drafts do not.
	quote.Status = models.QuoteDraft
	if got := quote.EffectiveStatus(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)); got != models.QuoteDraft {
		t.Fatalf("expected draft unchanged, got %s", got)
	}
}

func TestQuoteConvertToInvoice(t *testing.T) {
	svc, client, product := newQuoteService(t)
	quote, err := svc.Create(CreateQuoteInput{ClientID: client.ID, Currency: models.CurrencyUSD, Items: []LineInput{{ProductID: product.ID, Quantity: 3}}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Not accepted yet.
	if _, err := svc.ConvertToInvoice(quote.ID); !errors.Is(err, errs.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure, got %v", err)
	} else if errs.Reason(err) != "quote_not_accepted" {
		t.Fatalf("expected reason quote_not_accepted, got %q", errs.Reason(err))
	}

	if _, err := svc.UpdateStatus(quote.ID, models.QuoteSent); err != nil {
		t.Fatalf("sent: %v", err)
	}
	if _, err := svc.UpdateStatus(quote.ID, models.QuoteAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}

	invoice, err := svc.ConvertToInvoice(quote.ID)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if invoice.Status != models.InvoiceDraft {
		t.Fatalf("expected invoice draft, got %s", invoice.Status)
	}
	if !strings.HasPrefix(invoice.Number, "FACT-") {
		t.Fatalf("expected FACT- number, got %s", invoice.Number)
	}
	// Totals and items copied verbatim.
	reloaded, err := svc.Get(quote.ID)
	if err != nil {
		t.Fatalf("reload quote: %v", err)
	}
	if !invoice.TotalTTCUSD.Equal(reloaded.TotalTTCUSD) || !invoice.TotalTTCFC.Equal(reloaded.TotalTTCFC) {
		t.Fatalf("invoice totals differ from quote: %v vs %v", invoice.DocumentTotals, reloaded.DocumentTotals)
	}
	if len(invoice.Items) != len(reloaded.Items) {
		t.Fatalf("item count mismatch: %d vs %d", len(invoice.Items), len(reloaded.Items))
	}
	if !invoice.Items[0].HTFC.Equal(reloaded.Items[0].HTFC) {
		t.Fatalf("line snapshot mismatch: %s vs %s", invoice.Items[0].HTFC, reloaded.Items[0].HTFC)
	}
	if reloaded.LinkedInvoiceID == nil || *reloaded.LinkedInvoiceID != invoice.ID {
		t.Fatalf("expected linked_invoice_id %d, got %v", invoice.ID, reloaded.LinkedInvoiceID)
	}

	// Second conversion fails with the distinct reason; first invoice untouched.
	if _, err := svc.ConvertToInvoice(quote.ID); !errors.Is(err, errs.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure on reconversion, got %v", err)
	} else if errs.Reason(err) != "already_converted" {
		t.Fatalf("expected reason already_converted, got %q", errs.Reason(err))
	}
	var invoiceCount int64
	svc.DB.Model(&models.Invoice{}).Count(&invoiceCount)
	if invoiceCount != 1 {
		t.Fatalf("expected exactly 1 invoice, got %d", invoiceCount)
	}
}

func TestQuoteDeleteBlockedAfterConversion(t *testing.T) {
	svc, client, product := newQuoteService(t)
	quote, err := svc.Create(CreateQuoteInput{ClientID: client.ID, Currency: models.CurrencyUSD, Items: []LineInput{{ProductID: product.ID, Quantity: 1}}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(quote.ID, models.QuoteSent); err != nil {
		t.Fatalf("sent: %v", err)
	}
	if _, err := svc.UpdateStatus(quote.ID, models.QuoteAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := svc.ConvertToInvoice(quote.ID); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if err := svc.Delete(quote.ID); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict deleting converted quote, got %v", err)
	}

	// An unconverted quote deletes cleanly, items included.
	other, err := svc.Create(CreateQuoteInput{ClientID: client.ID, Currency: models.CurrencyUSD, Items: []LineInput{{ProductID: product.ID, Quantity: 2}}})
	if err != nil {
		t.Fatalf("create other: %v", err)
	}
	if err := svc.Delete(other.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var itemCount int64
	svc.DB.Model(&models.QuoteItem{}).Where("quote_id = ?", other.ID).Count(&itemCount)
	if itemCount != 0 {
		t.Fatalf("expected items removed, got %d", itemCount)
	}
}

// A rate change after creation must not alter stored FC totals; a new quote
// picks up the new rate.
func TestQuoteTotalsStableAcrossRateChange(t *testing.T) {
	svc, client, product := newQuoteService(t)
	rates := svc.Rates
	if _, err := rates.SetActive(models.CurrencyUSD, models.CurrencyFC, mustDecimal(t, "2800")); err != nil {
		t.Fatalf("set rate: %v", err)
	}
	before, err := svc.Create(CreateQuoteInput{ClientID: client.ID, Currency: models.CurrencyUSD, Items: []LineInput{{ProductID: product.ID, Quantity: 3}}})
	if err != nil {
		t.Fatalf("create before: %v", err)
	}
	if _, err := rates.SetActive(models.CurrencyUSD, models.CurrencyFC, mustDecimal(t, "2850")); err != nil {
		t.Fatalf("swap rate: %v", err)
	}
	reloaded, err := svc.Get(before.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	assertDecimalEqual(t, "stored ht_fc", reloaded.TotalHTFC, "840000.00")

	after, err := svc.Create(CreateQuoteInput{ClientID: client.ID, Currency: models.CurrencyUSD, Items: []LineInput{{ProductID: product.ID, Quantity: 3}}})
	if err != nil {
		t.Fatalf("create after: %v", err)
	}
	assertDecimalEqual(t, "new ht_fc", after.TotalHTFC, "855000.00")
}
