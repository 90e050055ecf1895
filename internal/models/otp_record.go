package models

import "time"

// OTPRecord holds a pending email verification code. Expiry is computed
// from CreatedAt; it is never stored.
type OTPRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"index;not null"`
	Code      string `gorm:"index;not null"`
	CreatedAt time.Time
}
