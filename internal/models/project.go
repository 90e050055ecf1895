package models

import (
	"time"

	"gorm.io/gorm"
)

const DefaultProjectStatus = "pending"

type Project struct {
	gorm.Model

	Title               string `gorm:"not null"`
	BriefDescription    string `gorm:"type:text"`
	DetailedDescription string `gorm:"type:text"`
	Status              string `gorm:"default:pending"`
	CreatedDate         time.Time
	UserID              uint `gorm:"not null;index"`

	// Relationships
	User  User   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Todos []Todo `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
