// Package seed loads the initial case records from the published CSV export.
package seed

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/stemsi/dm-report/internal/model"
)

// CSV column headers, as published by the open data portal.
const (
	ColID           = "id"
	ColProvinceCode = "kode_provinsi"
	ColProvinceName = "nama_provinsi"
	ColRegencyCode  = "kode_kabupaten_kota"
	ColRegencyName  = "nama_kabupaten_kota"
	ColCaseCount    = "jumlah_penderita_dm"
	ColUnit         = "satuan"
	ColYear         = "tahun"
)

var requiredColumns = []string{
	ColID, ColProvinceCode, ColProvinceName, ColRegencyCode,
	ColRegencyName, ColCaseCount, ColUnit, ColYear,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads a header-delimited case table. Any non-numeric id, code, count or
// year fails the whole parse.
func ParseCSV(r io.Reader) ([]model.CaseRecord, error) {
	cr := csv.NewReader(stripBOM(r))

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var records []model.CaseRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		p := rowParser{row: row, index: index, line: line}
		rec := model.CaseRecord{
			ID:           p.integer(ColID),
			ProvinceCode: p.integer(ColProvinceCode),
			ProvinceName: p.text(ColProvinceName),
			RegencyCode:  p.integer(ColRegencyCode),
			RegencyName:  p.text(ColRegencyName),
			CaseCount:    p.integer(ColCaseCount),
			Unit:         p.text(ColUnit),
			Year:         p.integer(ColYear),
		}
		if p.err != nil {
			return nil, p.err
		}
		records = append(records, rec)
	}
	return records, nil
}

// rowParser extracts typed cells and remembers the first failure.
type rowParser struct {
	row   []string
	index map[string]int
	line  int
	err   error
}

func (p *rowParser) text(col string) string {
	return p.row[p.index[col]]
}

func (p *rowParser) integer(col string) int {
	if p.err != nil {
		return 0
	}
	raw := strings.TrimSpace(p.text(col))
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.err = fmt.Errorf("line %d: column %s: %q is not an integer", p.line, col, raw)
		return 0
	}
	return n
}

func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, len(utf8BOM))
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return io.MultiReader(bytes.NewReader(buf[:n]), r)
	}
	if bytes.Equal(buf, utf8BOM) {
		return r
	}
	return io.MultiReader(bytes.NewReader(buf), r)
}
