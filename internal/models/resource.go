package models

import "gorm.io/gorm"

type Resource struct {
	gorm.Model

	ResourceTitle       string `gorm:"not null"`
	ResourceDescription string `gorm:"type:text"`
	Link                string
	ResourceType        string `gorm:"default:web page"`
	TodoID              uint   `gorm:"not null;index"`

	// Relationships
	Todo Todo `gorm:"foreignKey:TodoID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
