package models

import "time"

// Tool / asset inventory with warehouse tracking.
type Warehouse struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null;unique"`
	Ville     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tool is a physical asset counted per warehouse. Invariant maintained by the
// inventory service: QuantityAvailable + QuantityAssigned == QuantityTotal.
type Tool struct {
	ID                uint   `gorm:"primaryKey"`
	Name              string `gorm:"not null;index"`
	Reference         string `gorm:"not null;uniqueIndex"`
	WarehouseID       uint   `gorm:"not null;index"`
	Warehouse         Warehouse `gorm:"foreignKey:WarehouseID"`
	QuantityTotal     int    `gorm:"not null"`
	QuantityAvailable int    `gorm:"not null"`
	QuantityAssigned  int    `gorm:"not null"`
	MinQuantity       int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Types de mouvement d'inventaire.
const (
	MovementIn     = "in"     // entrée en stock
	MovementOut    = "out"    // sortie définitive
	MovementAssign = "assign" // affectation à un chantier/technicien
	MovementReturn = "return" // retour d'affectation
	MovementAdjust = "adjust" // correction d'inventaire
)

// ToolMovement is one row of the movement history ledger.
type ToolMovement struct {
	ID        uint   `gorm:"primaryKey"`
	ToolID    uint   `gorm:"not null;index"`
	Type      string `gorm:"size:16;not null"`
	Quantity  int    `gorm:"not null"`
	Reference string // bon de sortie, chantier, etc.
	Note      string
	CreatedAt time.Time
}
