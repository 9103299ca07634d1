package models

import "time"

// Client entity
type Client struct {
	ID        uint   `gorm:"primaryKey"`
	Nom       string `gorm:"not null;index"` // Raison sociale ou nom
	Contact   string // Nom du contact principal
	Telephone string
	Email     string
	Adresse   string
	Ville     string
	RCCM      string `gorm:"index"` // Registre du commerce (RDC)
	IDNat     string // Identification nationale (RDC)
	CreatedAt time.Time
	UpdatedAt time.Time
}
