package models

import "time"

// User & auth related models
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"unique;not null;index"`
	Password  string `gorm:"not null"` // hashé (bcrypt)
	Nom       string `gorm:"index"`
	RoleID    uint
	Role      Role `gorm:"foreignKey:RoleID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Role struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"unique;not null"` // admin, manager, user
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)
