package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/dm-report/internal/config"
	"github.com/stemsi/dm-report/internal/database"
	"github.com/stemsi/dm-report/internal/model"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	cfg := &config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "cases.db"),
	}
	db, err := database.Open(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("close db: %v", err)
		}
	})
	return db
}

func mustCreate(t *testing.T, repo CaseRecordRepository, rec model.CaseRecord) model.CaseRecord {
	t.Helper()
	if err := repo.Create(context.Background(), &rec); err != nil {
		t.Fatalf("create %+v: %v", rec, err)
	}
	return rec
}

// record builds a row with fixed province/unit columns.
func record(regency string, cases, year int) model.CaseRecord {
	return model.CaseRecord{
		ProvinceCode: 32,
		ProvinceName: "JAWA BARAT",
		RegencyCode:  3201,
		RegencyName:  regency,
		CaseCount:    cases,
		Unit:         "ORANG",
		Year:         year,
	}
}

func intPtr(v int) *int { return &v }
