package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/stemsi/dm-report/internal/database"
	"github.com/stemsi/dm-report/internal/model"
)

const caseRecordColumns = `id, province_code, province_name, regency_code, regency_name, case_count, unit, year`

type CaseRecordRepository interface {
	GetByID(ctx context.Context, id int) (*model.CaseRecord, error)
	List(ctx context.Context, filter model.CaseRecordFilter) ([]model.CaseRecord, error)
	DistinctYears(ctx context.Context) ([]int, error)
	Exists(ctx context.Context) (bool, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, rec *model.CaseRecord) error
	InsertBatch(ctx context.Context, recs []model.CaseRecord) error
	Update(ctx context.Context, rec *model.CaseRecord) error
	Delete(ctx context.Context, id int) error
}

type caseRecordRepository struct {
	db *database.DB
}

func NewCaseRecordRepository(db *database.DB) CaseRecordRepository {
	return &caseRecordRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCaseRecord(row rowScanner, rec *model.CaseRecord) error {
	return row.Scan(
		&rec.ID, &rec.ProvinceCode, &rec.ProvinceName,
		&rec.RegencyCode, &rec.RegencyName,
		&rec.CaseCount, &rec.Unit, &rec.Year,
	)
}

func (r *caseRecordRepository) GetByID(ctx context.Context, id int) (*model.CaseRecord, error) {
	query := `SELECT ` + caseRecordColumns + ` FROM case_records WHERE id = ?`
	rec := &model.CaseRecord{}
	err := scanCaseRecord(r.db.QueryRowContext(ctx, r.db.Rebind(query), id), rec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns every record matching filter, ordered by id. There is no limit.
func (r *caseRecordRepository) List(ctx context.Context, filter model.CaseRecordFilter) ([]model.CaseRecord, error) {
	var (
		where []string
		args  []any
	)
	if q := filter.Query; q != "" {
		where = append(where, `LOWER(regency_name) LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(q))
	}
	if filter.Year != nil {
		where = append(where, `year = ?`)
		args = append(args, *filter.Year)
	}

	query := `SELECT ` + caseRecordColumns + ` FROM case_records`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.CaseRecord{}
	for rows.Next() {
		var rec model.CaseRecord
		if err := scanCaseRecord(rows, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DistinctYears returns every year present, newest first.
func (r *caseRecordRepository) DistinctYears(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT year FROM case_records ORDER BY year DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	years := []int{}
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// Exists reports whether at least one row is stored.
func (r *caseRecordRepository) Exists(ctx context.Context) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM case_records LIMIT 1`).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *caseRecordRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM case_records`).Scan(&n)
	return n, err
}

// Create inserts rec. A zero ID lets the store assign one; the assigned id is written back.
func (r *caseRecordRepository) Create(ctx context.Context, rec *model.CaseRecord) error {
	if rec.ID != 0 {
		query := `
			INSERT INTO case_records (` + caseRecordColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`
		return r.db.QueryRowContext(ctx, r.db.Rebind(query),
			rec.ID, rec.ProvinceCode, rec.ProvinceName, rec.RegencyCode,
			rec.RegencyName, rec.CaseCount, rec.Unit, rec.Year,
		).Scan(&rec.ID)
	}

	query := `
		INSERT INTO case_records (province_code, province_name, regency_code, regency_name, case_count, unit, year)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, r.db.Rebind(query),
		rec.ProvinceCode, rec.ProvinceName, rec.RegencyCode,
		rec.RegencyName, rec.CaseCount, rec.Unit, rec.Year,
	).Scan(&rec.ID)
}

// InsertBatch stores recs with their own ids in a single transaction, then moves the
// id generator past the highest inserted id so later creates cannot collide.
func (r *caseRecordRepository) InsertBatch(ctx context.Context, recs []model.CaseRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, r.db.Rebind(`
		INSERT INTO case_records (`+caseRecordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("prepare batch insert: %w", err)
	}
	defer stmt.Close()

	for i := range recs {
		rec := &recs[i]
		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.ProvinceCode, rec.ProvinceName, rec.RegencyCode,
			rec.RegencyName, rec.CaseCount, rec.Unit, rec.Year,
		); err != nil {
			return fmt.Errorf("insert record id=%d: %w", rec.ID, err)
		}
	}

	// SQLite AUTOINCREMENT already tracks the max explicit id in sqlite_sequence.
	if r.db.Dialect == database.DialectPostgres {
		if _, err := tx.ExecContext(ctx, `
			SELECT setval(pg_get_serial_sequence('case_records', 'id'),
			              COALESCE(MAX(id), 1), MAX(id) IS NOT NULL)
			FROM case_records
		`); err != nil {
			return fmt.Errorf("resync id sequence: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of the row identified by rec.ID.
func (r *caseRecordRepository) Update(ctx context.Context, rec *model.CaseRecord) error {
	query := `
		UPDATE case_records
		SET province_code = ?, province_name = ?, regency_code = ?, regency_name = ?,
		    case_count = ?, unit = ?, year = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		rec.ProvinceCode, rec.ProvinceName, rec.RegencyCode, rec.RegencyName,
		rec.CaseCount, rec.Unit, rec.Year, rec.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *caseRecordRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM case_records WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
