package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func baseInput(lines ...TransactionInput) EventInput {
	return EventInput{
		Date:         time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC),
		Description:  "Test Event",
		Transactions: lines,
	}
}

func TestValidateBalanced(t *testing.T) {
	in := baseInput(
		TransactionInput{Amount: d("100.00"), AccountID: 1, Direction: Debit},
		TransactionInput{Amount: d("100.00"), AccountID: 2, Direction: Credit},
	)
	if err := Validate(in); err != nil {
		t.Fatalf("balanced event rejected: %v", err)
	}
}

func TestValidateBalancedThreeLines(t *testing.T) {
	// 150 + 50 debit == 200 credit
	in := baseInput(
		TransactionInput{Amount: d("150.00"), AccountID: 1, Direction: Debit},
		TransactionInput{Amount: d("50.00"), AccountID: 2, Direction: Debit},
		TransactionInput{Amount: d("200.00"), AccountID: 3, Direction: Credit},
	)
	if err := Validate(in); err != nil {
		t.Fatalf("multi-line balanced event rejected: %v", err)
	}
}

func TestValidateUnbalanced(t *testing.T) {
	in := baseInput(
		TransactionInput{Amount: d("100.00"), AccountID: 1, Direction: Debit},
		TransactionInput{Amount: d("50.00"), AccountID: 2, Direction: Credit},
	)
	err := Validate(in)
	if err == nil {
		t.Fatalf("unbalanced event accepted")
	}
	want := "Total debits (100.00) must equal total credits (50.00)."
	if err.Error() != want {
		t.Fatalf("message mismatch:\n got %q\nwant %q", err.Error(), want)
	}
}

func TestValidateUnbalancedWholeCentMessage(t *testing.T) {
	// Totals are rendered with two decimal places even for whole amounts.
	in := baseInput(
		TransactionInput{Amount: d("100"), AccountID: 1, Direction: Debit},
		TransactionInput{Amount: d("50"), AccountID: 2, Direction: Credit},
	)
	err := Validate(in)
	if err == nil {
		t.Fatalf("unbalanced event accepted")
	}
	if got := err.Error(); got != "Total debits (100.00) must equal total credits (50.00)." {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestValidateEmptyTransactions(t *testing.T) {
	in := baseInput()
	err := Validate(in)
	if err == nil {
		t.Fatalf("empty transaction list accepted")
	}
	if err.Error() != "Event must have at least one transaction." {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Field != "" {
		t.Fatalf("expected whole-payload error, got field %q", verr.Field)
	}
}

func TestValidateBadDirection(t *testing.T) {
	// An unknown direction is a structural error, not a silently excluded
	// line: totals here would balance if "both" were dropped.
	in := baseInput(
		TransactionInput{Amount: d("100.00"), AccountID: 1, Direction: Debit},
		TransactionInput{Amount: d("100.00"), AccountID: 2, Direction: Credit},
		TransactionInput{Amount: d("10.00"), AccountID: 3, Direction: "both"},
	)
	err := Validate(in)
	if err == nil {
		t.Fatalf("invalid direction accepted")
	}
	verr := err.(*ValidationError)
	if verr.Field != "transactions[2].direction" {
		t.Fatalf("wrong field: %q", verr.Field)
	}
	if !strings.Contains(verr.Message, `"both" is not a valid choice`) {
		t.Fatalf("unexpected message: %q", verr.Message)
	}
}

func TestValidateAmountPrecision(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		ok     bool
	}{
		{"two places", "10.25", true},
		{"whole", "10", true},
		{"three places", "10.255", false},
		{"twelve digits", "9999999999.99", true},
		{"thirteen digits", "99999999999.99", false},
	}
	for _, tc := range cases {
		in := baseInput(
			TransactionInput{Amount: d(tc.amount), AccountID: 1, Direction: Debit},
			TransactionInput{Amount: d(tc.amount), AccountID: 2, Direction: Credit},
		)
		err := Validate(in)
		if tc.ok && err != nil {
			t.Fatalf("%s: valid amount %s rejected: %v", tc.name, tc.amount, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: invalid amount %s accepted", tc.name, tc.amount)
		}
	}
}

func TestValidateMissingFields(t *testing.T) {
	in := baseInput(TransactionInput{Amount: d("1.00"), AccountID: 1, Direction: Debit})
	in.Date = time.Time{}
	if err := Validate(in); err == nil {
		t.Fatalf("missing date accepted")
	}

	in = baseInput(TransactionInput{Amount: d("1.00"), AccountID: 1, Direction: Debit})
	in.Description = ""
	if err := Validate(in); err == nil {
		t.Fatalf("missing description accepted")
	}

	in = baseInput(TransactionInput{Amount: d("1.00"), AccountID: 1, Direction: Debit})
	in.Description = strings.Repeat("x", 101)
	if err := Validate(in); err == nil {
		t.Fatalf("101-char description accepted")
	}

	in = baseInput(TransactionInput{Amount: d("1.00"), Direction: Debit})
	err := Validate(in)
	if err == nil {
		t.Fatalf("missing account reference accepted")
	}
	if verr := err.(*ValidationError); verr.Field != "transactions[0].account" {
		t.Fatalf("wrong field: %q", verr.Field)
	}
}

func TestValidateIdempotent(t *testing.T) {
	in := baseInput(
		TransactionInput{Amount: d("100.00"), AccountID: 1, Direction: Debit},
		TransactionInput{Amount: d("50.00"), AccountID: 2, Direction: Credit},
	)
	first := Validate(in)
	second := Validate(in)
	if first == nil || second == nil {
		t.Fatalf("expected errors, got %v / %v", first, second)
	}
	if first.Error() != second.Error() {
		t.Fatalf("validation not idempotent: %q vs %q", first.Error(), second.Error())
	}
}

func TestValidateFinancialYear(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	if err := ValidateFinancialYear(start, end); err != nil {
		t.Fatalf("valid range rejected: %v", err)
	}
	if err := ValidateFinancialYear(end, start); err == nil {
		t.Fatalf("inverted range accepted")
	}
	// Equal dates are rejected: the inequality is strict.
	err := ValidateFinancialYear(start, start)
	if err == nil {
		t.Fatalf("equal dates accepted")
	}
	if err.Error() != "Start date must be before end date." {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
