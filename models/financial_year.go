package models

import "time"

// FinancialYear is an accounting period bounding events. Deleting a year
// cascades to its events (and through them to transactions and attachments).
type FinancialYear struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	Events    []Event   `gorm:"foreignKey:FinancialYearID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
