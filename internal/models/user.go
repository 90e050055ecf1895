package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	Email     string `gorm:"uniqueIndex;not null"`
	Username  string `gorm:"uniqueIndex;not null"`
	Firstname string
	Lastname  string
	// Nil for accounts provisioned through Google sign-in.
	PasswordHash *string
	IsActive     bool `gorm:"default:false"`

	// Relationships
	Projects     []Project     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ProfileImage *ProfileImage `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
