// Package ledger implements the double-entry core: validation of journal
// event payloads and their atomic all-or-nothing persistence. Everything
// else in the application is plain CRUD; the invariants live here.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bukubesar/models"
)

// Transaction directions.
const (
	Debit  = "debit"
	Credit = "credit"
)

const (
	maxDescriptionLen = 100
	// numeric(12,2): at most 12 digits in total, 2 of them fractional.
	maxIntegerDigits = 10
	maxDecimalPlaces = 2
)

// amountCeiling is 10^maxIntegerDigits; any |amount| at or above it has more
// than 12 total digits once the 2 fractional places are counted.
var amountCeiling = decimal.New(1, maxIntegerDigits)

// TransactionInput is one submitted line item of an event.
type TransactionInput struct {
	Amount    decimal.Decimal `json:"amount"`
	AccountID uint            `json:"account_id"`
	Direction string          `json:"direction"`
}

// EventInput is the payload of an event creation request.
type EventInput struct {
	Date            time.Time
	Description     string
	FinancialYearID *uint
	Transactions    []TransactionInput
}

// Validate checks an event payload without touching the database. Rules are
// applied in order: structural field checks first, then the non-empty rule,
// then the balance invariant over exact decimal sums. The first violation is
// returned as a *ValidationError. Validate is pure: calling it twice on the
// same payload yields the same result.
func Validate(in EventInput) error {
	if in.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "this field is required"}
	}
	if in.Description == "" {
		return &ValidationError{Field: "description", Message: "this field is required"}
	}
	if len(in.Description) > maxDescriptionLen {
		return &ValidationError{
			Field:   "description",
			Message: fmt.Sprintf("ensure this field has no more than %d characters", maxDescriptionLen),
		}
	}

	for i, t := range in.Transactions {
		if t.AccountID == 0 {
			return &ValidationError{
				Field:   fmt.Sprintf("transactions[%d].account", i),
				Message: "this field is required",
			}
		}
		if t.Direction != Debit && t.Direction != Credit {
			return &ValidationError{
				Field:   fmt.Sprintf("transactions[%d].direction", i),
				Message: fmt.Sprintf("%q is not a valid choice", t.Direction),
			}
		}
		if err := validateAmount(t.Amount); err != nil {
			return &ValidationError{
				Field:   fmt.Sprintf("transactions[%d].amount", i),
				Message: err.Error(),
			}
		}
	}

	if len(in.Transactions) == 0 {
		return &ValidationError{Message: "Event must have at least one transaction."}
	}

	totalDebits := decimal.Zero
	totalCredits := decimal.Zero
	for _, t := range in.Transactions {
		switch t.Direction {
		case Debit:
			totalDebits = totalDebits.Add(t.Amount)
		case Credit:
			totalCredits = totalCredits.Add(t.Amount)
		}
	}
	if !totalDebits.Equal(totalCredits) {
		return &ValidationError{
			Message: fmt.Sprintf("Total debits (%s) must equal total credits (%s).",
				totalDebits.StringFixed(2), totalCredits.StringFixed(2)),
		}
	}

	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.Exponent() < -maxDecimalPlaces {
		return fmt.Errorf("ensure that there are no more than %d decimal places", maxDecimalPlaces)
	}
	if amount.Abs().GreaterThanOrEqual(amountCeiling) {
		return fmt.Errorf("ensure that there are no more than %d digits in total", maxIntegerDigits+maxDecimalPlaces)
	}
	return nil
}

// ValidateFinancialYear enforces the strict date-range rule; equal dates are
// rejected.
func ValidateFinancialYear(startDate, endDate time.Time) error {
	if !startDate.Before(endDate) {
		return &ValidationError{Message: "Start date must be before end date."}
	}
	return nil
}

// Create validates the payload and persists the event with all its
// transactions in a single database transaction. Reference resolution
// (financial year, accounts) happens inside the same transaction, so either
// every row commits or none does; a half-written event is never visible to
// concurrent readers. Transactions are inserted one by one in submission
// order, which is the order they come back in when re-read by id.
func Create(gdb *gorm.DB, in EventInput) (*models.Event, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	event := &models.Event{
		Date:            in.Date,
		Description:     in.Description,
		FinancialYearID: in.FinancialYearID,
	}

	err := gdb.Transaction(func(tx *gorm.DB) error {
		if in.FinancialYearID != nil {
			var fy models.FinancialYear
			if err := tx.First(&fy, *in.FinancialYearID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ValidationError{
						Field:   "financial_year",
						Message: fmt.Sprintf("financial year %d does not exist", *in.FinancialYearID),
					}
				}
				return err
			}
		}

		if err := resolveAccounts(tx, in.Transactions); err != nil {
			return err
		}

		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		for _, t := range in.Transactions {
			rec := models.Transaction{
				Amount:    t.Amount,
				AccountID: t.AccountID,
				Direction: t.Direction,
				EventID:   event.ID,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("create transaction: %w", err)
			}
			event.Transactions = append(event.Transactions, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event.Attachments == nil {
		event.Attachments = []models.Attachment{}
	}
	return event, nil
}

// resolveAccounts verifies every referenced account exists, reporting the
// first line item with an unknown reference.
func resolveAccounts(tx *gorm.DB, lines []TransactionInput) error {
	ids := make([]uint, 0, len(lines))
	seen := make(map[uint]bool, len(lines))
	for _, t := range lines {
		if !seen[t.AccountID] {
			seen[t.AccountID] = true
			ids = append(ids, t.AccountID)
		}
	}
	var accounts []models.Account
	if err := tx.Where("id IN ?", ids).Find(&accounts).Error; err != nil {
		return fmt.Errorf("resolve accounts: %w", err)
	}
	known := make(map[uint]bool, len(accounts))
	for _, a := range accounts {
		known[a.ID] = true
	}
	for i, t := range lines {
		if !known[t.AccountID] {
			return &ValidationError{
				Field:   fmt.Sprintf("transactions[%d].account", i),
				Message: fmt.Sprintf("account %d does not exist", t.AccountID),
			}
		}
	}
	return nil
}
