package models

import "gorm.io/gorm"

type Todo struct {
	gorm.Model

	TaskTitle       string `gorm:"not null"`
	TaskDescription string `gorm:"type:text"`
	Completed       bool   `gorm:"default:false"`
	ProjectID       uint   `gorm:"not null;index"`

	// Relationships
	Project   Project    `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Resources []Resource `gorm:"foreignKey:TodoID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
