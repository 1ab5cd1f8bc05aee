package main

import (
	"log"
	"os"
	"strings"

	"bukubesar/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if strings.EqualFold(os.Getenv("DB_DRIVER"), "sqlite") {
		// sqlite mode for tests and single-box deployments
		if dsn == "" {
			dsn = "bukubesar.db"
		}
		db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Fatal("failed to open sqlite database:", err)
		}
		// a single connection keeps the pragma effective for every query
		if sqlDB, derr := db.DB(); derr == nil {
			sqlDB.SetMaxOpenConns(1)
		}
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			log.Printf("warning: enabling sqlite foreign keys failed: %v", err)
		}
	} else {
		if dsn == "" {
			log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN (or DB_DRIVER=sqlite).")
		}
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Fatal("failed to connect postgres database:", err)
		}
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	// Ensure the roles master table exists first and seed it so users FK can be applied safely.
	if shouldMigrate {
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			log.Printf("migration warning (roles): %v", err)
		}
	}
	// seed master roles immediately
	roles := []models.Role{{Name: "administrator", Description: "full access"}, {Name: "user", Description: "regular user"}}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}

	// Now migrate the rest (users will get FK to roles). Order matters for the
	// ledger tables: accounts and financial_years before events, events before
	// transactions and attachments, so the cascade FKs can be applied.
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.User{}); err != nil {
			log.Printf("migration warning (users): %v", err)
		}
		if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
			log.Printf("migration warning (refresh_tokens): %v", err)
		}
		if err := db.AutoMigrate(&models.Account{}); err != nil {
			log.Printf("migration warning (accounts): %v", err)
		}
		if err := db.AutoMigrate(&models.FinancialYear{}); err != nil {
			log.Printf("migration warning (financial_years): %v", err)
		}
		if err := db.AutoMigrate(&models.Event{}); err != nil {
			log.Printf("migration warning (events): %v", err)
		}
		if err := db.AutoMigrate(&models.Transaction{}); err != nil {
			log.Printf("migration warning (transactions): %v", err)
		}
		if err := db.AutoMigrate(&models.Attachment{}); err != nil {
			log.Printf("migration warning (attachments): %v", err)
		}
	}
	seedDB()
}

func seedDB() {
	// Ensure master roles exist
	roles := []models.Role{{Name: "administrator", Description: "full access"}, {Name: "user", Description: "regular user"}}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}

	// Check if admin user exists
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		// find administrator role id
		var role models.Role
		if err := db.Where("name = ?", "administrator").First(&role).Error; err != nil {
			log.Printf("failed to find administrator role: %v", err)
		}
		// Seed admin user
		rid := role.ID
		admin := models.User{
			Username: "admin",
			RoleID:   &rid,
		}
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		admin.HashedPassword = hashedPassword
		db.Create(&admin)
		log.Println("Seeded admin user: username=admin, password=admin123")
	}

	// Seed a starter chart of accounts on an empty install so the first
	// journal entries have something to post against.
	var acctCount int64
	db.Model(&models.Account{}).Count(&acctCount)
	if acctCount == 0 {
		starter := []models.Account{
			{Name: "Kas", Code: 1000},
			{Name: "Bank", Code: 1100},
			{Name: "Pendapatan", Code: 4000},
			{Name: "Beban", Code: 5000},
		}
		for _, a := range starter {
			if err := db.Create(&a).Error; err != nil {
				log.Printf("failed to seed account %d %s: %v", a.Code, a.Name, err)
			}
		}
		log.Printf("Seeded starter chart of accounts (%d accounts)", len(starter))
	}

	// Ensure attachment directory exists
	ensureAttachmentBase()
}

// ensureAttachmentBase creates the base attachments directory.
func ensureAttachmentBase() {
	base := attachmentBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		log.Printf("failed to create attachment base dir %s: %v", base, err)
	}
}

// attachmentBaseDir returns the directory attachment blobs are written to
// (configurable via ATTACHMENT_BASE env). The stored key always uses the
// logical attachments/ prefix regardless of where the blobs physically live.
func attachmentBaseDir() string {
	if v := os.Getenv("ATTACHMENT_BASE"); v != "" {
		return v
	}
	return "attachments"
}
