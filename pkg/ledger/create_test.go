package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bukubesar/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger_test.db")
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := gdb.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Account{}, &models.FinancialYear{}, &models.Event{}, &models.Transaction{}, &models.Attachment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func seedAccounts(t *testing.T, gdb *gorm.DB) []models.Account {
	t.Helper()
	accounts := []models.Account{
		{Name: "Kas", Code: 1000},
		{Name: "Bank", Code: 1100},
		{Name: "Pendapatan", Code: 4000},
	}
	for i := range accounts {
		if err := gdb.Create(&accounts[i]).Error; err != nil {
			t.Fatalf("seed account: %v", err)
		}
	}
	return accounts
}

func TestCreatePersistsEventWithTransactions(t *testing.T) {
	gdb := openTestDB(t)
	accts := seedAccounts(t, gdb)

	fy := models.FinancialYear{
		StartDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	if err := gdb.Create(&fy).Error; err != nil {
		t.Fatalf("seed financial year: %v", err)
	}

	in := baseInput(
		TransactionInput{Amount: d("100.00"), AccountID: accts[0].ID, Direction: Debit},
		TransactionInput{Amount: d("100.00"), AccountID: accts[2].ID, Direction: Credit},
	)
	in.FinancialYearID = &fy.ID

	event, err := Create(gdb, in)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if event.ID == 0 {
		t.Fatalf("event id not assigned")
	}
	if event.CreatedAt.IsZero() {
		t.Fatalf("created_at not set")
	}

	var stored models.Event
	if err := gdb.Preload("Transactions").First(&stored, event.ID).Error; err != nil {
		t.Fatalf("reload event: %v", err)
	}
	if len(stored.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(stored.Transactions))
	}
	if stored.FinancialYearID == nil || *stored.FinancialYearID != fy.ID {
		t.Fatalf("financial year reference lost")
	}
}

func TestCreateWithoutFinancialYear(t *testing.T) {
	// financial_year is optional; events may be recorded outside any year.
	gdb := openTestDB(t)
	accts := seedAccounts(t, gdb)

	in := baseInput(
		TransactionInput{Amount: d("25.00"), AccountID: accts[0].ID, Direction: Debit},
		TransactionInput{Amount: d("25.00"), AccountID: accts[1].ID, Direction: Credit},
	)
	event, err := Create(gdb, in)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if event.FinancialYearID != nil {
		t.Fatalf("expected nil financial year")
	}
}

func TestCreatePreservesSubmissionOrder(t *testing.T) {
	gdb := openTestDB(t)
	accts := seedAccounts(t, gdb)

	in := baseInput(
		TransactionInput{Amount: d("150.00"), AccountID: accts[0].ID, Direction: Debit},
		TransactionInput{Amount: d("50.00"), AccountID: accts[1].ID, Direction: Debit},
		TransactionInput{Amount: d("200.00"), AccountID: accts[2].ID, Direction: Credit},
	)
	event, err := Create(gdb, in)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var lines []models.Transaction
	if err := gdb.Where("event_id = ?", event.ID).Order("id").Find(&lines).Error; err != nil {
		t.Fatalf("reload transactions: %v", err)
	}
	want := []string{"150.00", "50.00", "200.00"}
	for i, line := range lines {
		if line.Amount.StringFixed(2) != want[i] {
			t.Fatalf("line %d out of order: got %s want %s", i, line.Amount.StringFixed(2), want[i])
		}
	}
}

func TestCreateRejectsUnknownAccount(t *testing.T) {
	gdb := openTestDB(t)
	accts := seedAccounts(t, gdb)

	in := baseInput(
		TransactionInput{Amount: d("10.00"), AccountID: accts[0].ID, Direction: Debit},
		TransactionInput{Amount: d("10.00"), AccountID: 9999, Direction: Credit},
	)
	_, err := Create(gdb, in)
	if err == nil {
		t.Fatalf("unknown account accepted")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if verr.Field != "transactions[1].account" {
		t.Fatalf("wrong field: %q", verr.Field)
	}

	var n int64
	gdb.Model(&models.Event{}).Count(&n)
	if n != 0 {
		t.Fatalf("event row leaked after failed create: %d", n)
	}
}

func TestCreateRejectsUnknownFinancialYear(t *testing.T) {
	gdb := openTestDB(t)
	accts := seedAccounts(t, gdb)

	missing := uint(4242)
	in := baseInput(
		TransactionInput{Amount: d("10.00"), AccountID: accts[0].ID, Direction: Debit},
		TransactionInput{Amount: d("10.00"), AccountID: accts[1].ID, Direction: Credit},
	)
	in.FinancialYearID = &missing
	if _, err := Create(gdb, in); err == nil {
		t.Fatalf("unknown financial year accepted")
	}
}

func TestCreateRollsBackOnChildInsertFailure(t *testing.T) {
	// Force the child insert to fail after the parent row was written; the
	// whole event must disappear with the rollback.
	gdb := openTestDB(t)
	accts := seedAccounts(t, gdb)

	if err := gdb.Migrator().DropTable(&models.Transaction{}); err != nil {
		t.Fatalf("drop transactions table: %v", err)
	}

	in := baseInput(
		TransactionInput{Amount: d("10.00"), AccountID: accts[0].ID, Direction: Debit},
		TransactionInput{Amount: d("10.00"), AccountID: accts[1].ID, Direction: Credit},
	)
	if _, err := Create(gdb, in); err == nil {
		t.Fatalf("create succeeded without a transactions table")
	}

	var n int64
	gdb.Model(&models.Event{}).Count(&n)
	if n != 0 {
		t.Fatalf("partial event visible after rollback: %d rows", n)
	}
}

func TestCreateDoesNotPersistUnbalanced(t *testing.T) {
	gdb := openTestDB(t)
	accts := seedAccounts(t, gdb)

	in := baseInput(
		TransactionInput{Amount: d("100.00"), AccountID: accts[0].ID, Direction: Debit},
		TransactionInput{Amount: d("50.00"), AccountID: accts[1].ID, Direction: Credit},
	)
	if _, err := Create(gdb, in); err == nil {
		t.Fatalf("unbalanced event persisted")
	}

	var events, lines int64
	gdb.Model(&models.Event{}).Count(&events)
	gdb.Model(&models.Transaction{}).Count(&lines)
	if events != 0 || lines != 0 {
		t.Fatalf("rows written for rejected payload: events=%d transactions=%d", events, lines)
	}
}

func TestFinancialYearDeleteCascades(t *testing.T) {
	gdb := openTestDB(t)
	accts := seedAccounts(t, gdb)

	fy := models.FinancialYear{
		StartDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	if err := gdb.Create(&fy).Error; err != nil {
		t.Fatalf("seed financial year: %v", err)
	}

	in := baseInput(
		TransactionInput{Amount: d("10.00"), AccountID: accts[0].ID, Direction: Debit},
		TransactionInput{Amount: d("10.00"), AccountID: accts[1].ID, Direction: Credit},
	)
	in.FinancialYearID = &fy.ID
	if _, err := Create(gdb, in); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := gdb.Delete(&fy).Error; err != nil {
		t.Fatalf("delete financial year: %v", err)
	}

	var events, lines int64
	gdb.Model(&models.Event{}).Count(&events)
	gdb.Model(&models.Transaction{}).Count(&lines)
	if events != 0 || lines != 0 {
		t.Fatalf("cascade delete incomplete: events=%d transactions=%d", events, lines)
	}
}
