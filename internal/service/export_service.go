package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/dm-report/internal/model"
	"github.com/stemsi/dm-report/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ExportSheetName is the worksheet holding exported records.
const ExportSheetName = "Penderita DM"

var exportHeaders = []string{
	"ID", "Kode Provinsi", "Nama Provinsi", "Kode Kabupaten/Kota",
	"Nama Kabupaten/Kota", "Jumlah Penderita DM", "Satuan", "Tahun",
}

// ExportService renders filtered record listings as xlsx workbooks.
type ExportService struct {
	recordRepo repository.CaseRecordRepository
	log        zerolog.Logger
	now        func() time.Time
}

// NewExportService creates a new ExportService.
func NewExportService(recordRepo repository.CaseRecordRepository, log zerolog.Logger) *ExportService {
	return &ExportService{
		recordRepo: recordRepo,
		log:        log.With().Str("component", "export_service").Logger(),
		now:        time.Now,
	}
}

// ExportRecords writes every record matching filter into a workbook and returns
// it with a download filename.
func (s *ExportService) ExportRecords(ctx context.Context, filter model.CaseRecordFilter) (*bytes.Buffer, string, error) {
	records, err := s.recordRepo.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(ExportSheetName)
	if err != nil {
		return nil, "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("header style: %w", err)
	}

	if err := f.SetSheetRow(ExportSheetName, "A1", &exportHeaders); err != nil {
		return nil, "", fmt.Errorf("write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	_ = f.SetCellStyle(ExportSheetName, "A1", lastCol+"1", headerStyle)
	_ = f.SetColWidth(ExportSheetName, "A", "A", 8)
	_ = f.SetColWidth(ExportSheetName, "B", lastCol, 20)
	_ = f.SetColWidth(ExportSheetName, "E", "E", 30)

	for i, rec := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			rec.ID, rec.ProvinceCode, rec.ProvinceName, rec.RegencyCode,
			rec.RegencyName, rec.CaseCount, rec.Unit, rec.Year,
		}
		if err := f.SetSheetRow(ExportSheetName, cell, &row); err != nil {
			return nil, "", fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.log.Error().Err(err).Msg("Failed to write workbook")
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}

	s.log.Debug().Int("rows", len(records)).Msg("Workbook exported")
	return buf, exportFilename(filter, s.now()), nil
}

func exportFilename(filter model.CaseRecordFilter, at time.Time) string {
	name := "penderita_dm"
	if filter.Year != nil {
		name += fmt.Sprintf("_%d", *filter.Year)
	}
	return name + "_" + at.Format("20060102") + ".xlsx"
}
