package models

import "gorm.io/gorm"

type ProfileImage struct {
	gorm.Model

	Name      string
	MimeType  string
	ImageData []byte `gorm:"not null"`
	UserID    uint   `gorm:"not null;index"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
