package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/dm-report/internal/model"
	"github.com/xuri/excelize/v2"
)

func TestExportRecordsWritesFilteredRows(t *testing.T) {
	repo := newFakeRecordRepo(
		model.CaseRecord{ID: 1, ProvinceCode: 32, ProvinceName: "JAWA BARAT", RegencyCode: 3201, RegencyName: "KABUPATEN BOGOR", CaseCount: 10, Unit: "ORANG", Year: 2020},
		model.CaseRecord{ID: 2, ProvinceCode: 32, ProvinceName: "JAWA BARAT", RegencyCode: 3273, RegencyName: "KOTA BANDUNG", CaseCount: 20, Unit: "ORANG", Year: 2020},
		model.CaseRecord{ID: 3, ProvinceCode: 32, ProvinceName: "JAWA BARAT", RegencyCode: 3201, RegencyName: "KABUPATEN BOGOR", CaseCount: 30, Unit: "ORANG", Year: 2021},
	)
	svc := NewExportService(repo, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) }

	buf, filename, err := svc.ExportRecords(context.Background(), model.CaseRecordFilter{Year: intPtr(2020)})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filename != "penderita_dm_2020_20240309.xlsx" {
		t.Fatalf("filename = %q", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ExportSheetName)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows (header + 2 expected): %v", len(rows), rows)
	}
	if rows[0][0] != "ID" || rows[0][4] != "Nama Kabupaten/Kota" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][4] != "KABUPATEN BOGOR" || rows[2][4] != "KOTA BANDUNG" || rows[2][5] != "20" {
		t.Fatalf("data rows = %v", rows[1:])
	}
}
