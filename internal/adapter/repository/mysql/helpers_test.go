package mysql

import (
	"testing"

	doctypeDomain "doc-compliance/internal/domain/doctype"
	reqDomain "doc-compliance/internal/domain/requirement"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with both tables migrated.
// The domain models avoid engine-specific column types, so they migrate as-is.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&doctypeDomain.DocumentType{}, &reqDomain.Requirement{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func intPtr(v int) *int { return &v }

func unitPtr(u doctypeDomain.RenewalUnit) *doctypeDomain.RenewalUnit { return &u }
