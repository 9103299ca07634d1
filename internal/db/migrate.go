package db

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mkadima/gestfact/internal/models"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN est vide, vérifiez la configuration de l'environnement")
	}
	var db *gorm.DB
	var err error
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	// TranslateError maps driver duplicate-key errors onto gorm.ErrDuplicatedKey;
	// the payment idempotency path depends on it.
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel), TranslateError: true}
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		fmt.Println("Retrying DB connection...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	// Masked DSN printed once for diagnostics.
	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	fmt.Println("[DB] Using DSN:", masked)
	// MIGRATIONS=1 runs SQL migrations via golang-migrate; otherwise AutoMigrate (dev convenience).
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"exchange_rates", "quotes", "invoices", "payments"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	// Seeding only when explicitly requested via DB_SEED=1|true
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		seed(db)
	}
	return db, nil
}

// AutoMigrate creates/updates the schema for every entity. Shared with tests.
func AutoMigrate(db *gorm.DB) error {
	entities := []interface{}{
		&models.Role{}, &models.User{}, &models.UnitType{}, &models.Product{},
		&models.Client{}, &models.ExchangeRate{},
		&models.Quote{}, &models.QuoteItem{},
		&models.Invoice{}, &models.InvoiceItem{}, &models.Payment{},
		&models.Warehouse{}, &models.Tool{}, &models.ToolMovement{},
	}
	for _, m := range entities {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

func seed(db *gorm.DB) {
	// Roles
	for _, name := range []string{models.RoleAdmin, models.RoleManager, models.RoleUser} {
		var existing models.Role
		if err := db.Where("name = ?", name).First(&existing).Error; err == gorm.ErrRecordNotFound {
			db.Create(&models.Role{Name: name})
		}
	}
	// Unit Types
	baseUnitTypes := []models.UnitType{
		{Name: "pièce", Symbol: "pc"},
		{Name: "heure", Symbol: "h"},
		{Name: "jour", Symbol: "j"},
		{Name: "kilogramme", Symbol: "kg"},
	}
	for _, ut := range baseUnitTypes {
		var existing models.UnitType
		if err := db.Where("name = ?", ut.Name).First(&existing).Error; err == gorm.ErrRecordNotFound {
			db.Create(&ut)
		}
	}
	// Initial USD→FC rate, only when none exists at all.
	var count int64
	db.Model(&models.ExchangeRate{}).Where("base = ? AND target = ?", models.CurrencyUSD, models.CurrencyFC).Count(&count)
	if count == 0 {
		db.Create(&models.ExchangeRate{Base: models.CurrencyUSD, Target: models.CurrencyFC, Rate: models.DefaultRateUSDFC, Active: true})
	}
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
