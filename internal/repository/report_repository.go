package repository

import (
	"context"
	"database/sql"

	"github.com/stemsi/dm-report/internal/database"
	"github.com/stemsi/dm-report/internal/model"
)

// ReportRepository runs the read-only aggregate queries behind the report views.
type ReportRepository struct {
	db *database.DB
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(db *database.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// GetGlobalStats retrieves table-wide totals. Min/max year are nil on an empty table.
func (r *ReportRepository) GetGlobalStats(ctx context.Context) (*model.GlobalStats, error) {
	var (
		stats            model.GlobalStats
		minYear, maxYear sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(case_count), 0),
			COUNT(*),
			MIN(year),
			MAX(year),
			COUNT(DISTINCT regency_name)
		 FROM case_records`,
	).Scan(&stats.TotalCases, &stats.TotalRecords, &minYear, &maxYear, &stats.UniqueRegions)
	if err != nil {
		return nil, err
	}
	stats.MinYear = nullableInt(minYear)
	stats.MaxYear = nullableInt(maxYear)
	return &stats, nil
}

// GetYearlyTotals retrieves the per-year case sum, oldest year first.
func (r *ReportRepository) GetYearlyTotals(ctx context.Context) ([]model.YearTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT year, COALESCE(SUM(case_count), 0)
		 FROM case_records
		 GROUP BY year
		 ORDER BY year ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []model.YearTotal{}
	for rows.Next() {
		var yt model.YearTotal
		if err := rows.Scan(&yt.Year, &yt.Total); err != nil {
			return nil, err
		}
		totals = append(totals, yt)
	}
	return totals, rows.Err()
}

// GetRegionRanking retrieves the regencies with the highest summed case count,
// together with the sum over every row. Both come from one statement so they
// always describe the same snapshot. Equal sums are ordered by name so the
// ranking is reproducible. An empty table yields no rows and a zero total.
func (r *ReportRepository) GetRegionRanking(ctx context.Context, limit int) ([]model.RegionTotal, int64, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(
		`SELECT ranked.regency_name, ranked.total, grand.total
		 FROM (
			SELECT regency_name, COALESCE(SUM(case_count), 0) AS total
			FROM case_records
			GROUP BY regency_name
		 ) ranked
		 CROSS JOIN (
			SELECT COALESCE(SUM(case_count), 0) AS total FROM case_records
		 ) grand
		 ORDER BY ranked.total DESC, ranked.regency_name ASC
		 LIMIT ?`),
		limit,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var grandTotal int64
	regions := []model.RegionTotal{}
	for rows.Next() {
		var rt model.RegionTotal
		if err := rows.Scan(&rt.Name, &rt.Total, &grandTotal); err != nil {
			return nil, 0, err
		}
		regions = append(regions, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return regions, grandTotal, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
