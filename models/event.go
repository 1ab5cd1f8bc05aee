package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is a journal entry: a dated, described group of transactions whose
// debits and credits balance. Rows are immutable once written, so there is
// deliberately no UpdatedAt column.
type Event struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	Date            time.Time      `gorm:"not null" json:"date"`
	Description     string         `gorm:"size:100;not null" json:"description"`
	FinancialYearID *uint          `gorm:"index" json:"financial_year_id"`
	Transactions    []Transaction  `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"transactions"`
	Attachments     []Attachment   `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"attachments"`
}

// Transaction is a single debit or credit of a decimal amount against one
// account. Transactions exist only as children of an event and are never
// created or updated individually.
type Transaction struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	AccountID uint            `gorm:"index;not null" json:"account_id"`
	Account   Account         `gorm:"foreignKey:AccountID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Direction string          `gorm:"size:6;not null" json:"direction"`
	EventID   uint            `gorm:"index;not null" json:"event_id"`
}
