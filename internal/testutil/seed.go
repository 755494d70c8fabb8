package testutil

import (
	"testing"
	"time"

	"github.com/codr1/Padelicious/internal/db"
)

// SlotSeed describes a slot row for tests. Zero values get sensible defaults.
type SlotSeed struct {
	CourtName       string
	Date            string
	StartTime       string
	EndTime         string
	Price           int64
	PriceTier       string
	DepositEligible bool
}

// SeedCourt inserts a court and returns its ID.
func SeedCourt(t *testing.T, database *db.DB, name string) int64 {
	t.Helper()

	result, err := database.Exec(`INSERT INTO courts (name, created_at) VALUES (?, ?)`, name, time.Now().UTC())
	if err != nil {
		t.Fatalf("insert court: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("court id: %v", err)
	}
	return id
}

// SeedSlot inserts a slot, creating its court if needed, and returns the
// slot ID.
func SeedSlot(t *testing.T, database *db.DB, seed SlotSeed) int64 {
	t.Helper()

	if seed.CourtName == "" {
		seed.CourtName = "Court 1"
	}
	if seed.Date == "" {
		seed.Date = time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	}
	if seed.StartTime == "" {
		seed.StartTime = "19:00"
	}
	if seed.EndTime == "" {
		seed.EndTime = "20:00"
	}
	if seed.PriceTier == "" {
		seed.PriceTier = "regular"
	}

	var courtID int64
	err := database.QueryRow(`SELECT id FROM courts WHERE name = ?`, seed.CourtName).Scan(&courtID)
	if err != nil {
		courtID = SeedCourt(t, database, seed.CourtName)
	}

	now := time.Now().UTC()
	result, err := database.Exec(
		`INSERT INTO slots (court_id, date, start_time, end_time, price, price_tier, deposit_eligible, available, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		courtID,
		seed.Date,
		seed.StartTime,
		seed.EndTime,
		seed.Price,
		seed.PriceTier,
		seed.DepositEligible,
		now,
		now,
	)
	if err != nil {
		t.Fatalf("insert slot: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("slot id: %v", err)
	}
	return id
}

// SlotAvailable reports the slot's availability flag.
func SlotAvailable(t *testing.T, database *db.DB, slotID int64) bool {
	t.Helper()

	var available bool
	if err := database.QueryRow(`SELECT available FROM slots WHERE id = ?`, slotID).Scan(&available); err != nil {
		t.Fatalf("load slot availability: %v", err)
	}
	return available
}
