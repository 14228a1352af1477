package model

import (
	"encoding/json"
	"strconv"
)

// CaseRecord is one row of diabetes case counts for a regency in a given year.
type CaseRecord struct {
	ID           int    `json:"id"`
	ProvinceCode int    `json:"province_code"`
	ProvinceName string `json:"province_name"`
	RegencyCode  int    `json:"regency_code"`
	RegencyName  string `json:"regency_name"`
	CaseCount    int    `json:"case_count"`
	Unit         string `json:"unit"`
	Year         int    `json:"year"`
}

// CaseRecordFilter narrows a record listing. Zero values mean "no filter".
type CaseRecordFilter struct {
	// Query is a case-insensitive substring matched against RegencyName.
	Query string
	// Year, when set, must match exactly.
	Year *int
}

// CaseRecordRequest is the create/edit form payload. Numeric inputs are kept as
// json.Number so both JSON numbers and form strings bind, and a blank form value
// stays blank for "required" instead of collapsing to 0. "number" admits only
// unsigned digit strings; the length caps keep every value inside int range.
type CaseRecordRequest struct {
	ProvinceCode json.Number `form:"province_code" json:"province_code" binding:"required,number,max=9"`
	ProvinceName string      `form:"province_name" json:"province_name" binding:"required,max=100"`
	RegencyCode  json.Number `form:"regency_code" json:"regency_code" binding:"required,number,max=9"`
	RegencyName  string      `form:"regency_name" json:"regency_name" binding:"required,max=100"`
	CaseCount    json.Number `form:"case_count" json:"case_count" binding:"required,number,max=9"`
	Unit         string      `form:"unit" json:"unit" binding:"required,max=50"`
	Year         json.Number `form:"year" json:"year" binding:"required,number,max=4"`
}

// ToRecord copies a validated request into a CaseRecord with the given id.
func (r *CaseRecordRequest) ToRecord(id int) *CaseRecord {
	return &CaseRecord{
		ID:           id,
		ProvinceCode: toInt(r.ProvinceCode),
		ProvinceName: r.ProvinceName,
		RegencyCode:  toInt(r.RegencyCode),
		RegencyName:  r.RegencyName,
		CaseCount:    toInt(r.CaseCount),
		Unit:         r.Unit,
		Year:         toInt(r.Year),
	}
}

func toInt(n json.Number) int {
	v, _ := strconv.Atoi(n.String())
	return v
}
