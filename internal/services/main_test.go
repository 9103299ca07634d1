package services

import (
	"fmt"
	"testing"

	"github.com/mkadima/gestfact/internal/db"
	"github.com/mkadima/gestfact/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

// seedBillingFixtures creates a client and a reference product: 100.00 USD,
// 16% tax, no FC price.
func seedBillingFixtures(t *testing.T, conn *gorm.DB) (client models.Client, product models.Product) {
	t.Helper()
	client = models.Client{Nom: "Ets Kivu Services", Email: "compta@kivu.cd", Ville: "Goma"}
	if err := conn.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	product = models.Product{
		Name:         "Maintenance groupe électrogène",
		UnitPriceUSD: decimal.RequireFromString("100.00"),
		TaxRate:      decimal.RequireFromString("16"),
		IsActive:     true,
	}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("product: %v", err)
	}
	return
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func assertDecimalEqual(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s: got %s want %s", field, got, want)
	}
}
