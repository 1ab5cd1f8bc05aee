package models

import "time"

// Account is one entry in the chart of accounts, identified by a numeric code.
type Account struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Code      int       `gorm:"not null" json:"code"`
}
