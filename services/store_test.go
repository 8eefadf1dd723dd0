package services

import (
	"path/filepath"
	"testing"
	"time"

	"token-claim-service/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 1, 23, 12, 0, 0, 0, time.UTC)

// newTestDB opens a migrated SQLite database private to the test.
// A single connection serializes transactions the way row locks do in Postgres.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claims.db")
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, lastClaim *time.Time) models.UserAccount {
	t.Helper()
	verifiedAt := testNow.Add(-48 * time.Hour)
	user := models.UserAccount{
		ID:                uuid.NewString(),
		NullifierHash:     "0x" + uuid.NewString(),
		VerificationLevel: "orb",
		Verified:          true,
		VerifiedAt:        &verifiedAt,
		LastClaim:         lastClaim,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func reloadUser(t *testing.T, db *gorm.DB, id string) models.UserAccount {
	t.Helper()
	var user models.UserAccount
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return user
}

func newFakeClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(testNow)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
