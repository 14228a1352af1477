package service

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/stemsi/dm-report/internal/config"
	"github.com/stemsi/dm-report/internal/model"
	"github.com/stemsi/dm-report/internal/repository"
)

// ── Fake CaseRecordRepository ──

type fakeRecordRepo struct {
	rows   map[int]model.CaseRecord
	nextID int
	err    error
}

func newFakeRecordRepo(recs ...model.CaseRecord) *fakeRecordRepo {
	r := &fakeRecordRepo{rows: map[int]model.CaseRecord{}, nextID: 1}
	for _, rec := range recs {
		r.rows[rec.ID] = rec
		if rec.ID >= r.nextID {
			r.nextID = rec.ID + 1
		}
	}
	return r
}

func (r *fakeRecordRepo) GetByID(_ context.Context, id int) (*model.CaseRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	rec, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (r *fakeRecordRepo) List(_ context.Context, f model.CaseRecordFilter) ([]model.CaseRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := []model.CaseRecord{}
	for _, rec := range r.rows {
		if f.Query != "" && !strings.Contains(strings.ToLower(rec.RegencyName), strings.ToLower(f.Query)) {
			continue
		}
		if f.Year != nil && rec.Year != *f.Year {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRecordRepo) DistinctYears(_ context.Context) ([]int, error) {
	seen := map[int]bool{}
	years := []int{}
	for _, rec := range r.rows {
		if !seen[rec.Year] {
			seen[rec.Year] = true
			years = append(years, rec.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func (r *fakeRecordRepo) Exists(_ context.Context) (bool, error) { return len(r.rows) > 0, r.err }

func (r *fakeRecordRepo) Count(_ context.Context) (int64, error) { return int64(len(r.rows)), r.err }

func (r *fakeRecordRepo) Create(_ context.Context, rec *model.CaseRecord) error {
	if r.err != nil {
		return r.err
	}
	if rec.ID == 0 {
		rec.ID = r.nextID
	}
	r.nextID = rec.ID + 1
	r.rows[rec.ID] = *rec
	return nil
}

func (r *fakeRecordRepo) InsertBatch(ctx context.Context, recs []model.CaseRecord) error {
	for i := range recs {
		if err := r.Create(ctx, &recs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRecordRepo) Update(_ context.Context, rec *model.CaseRecord) error {
	if _, ok := r.rows[rec.ID]; !ok {
		return repository.ErrNotFound
	}
	r.rows[rec.ID] = *rec
	return nil
}

func (r *fakeRecordRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

// ── Fake ReportCache ──

type fakeCache struct {
	data          map[string][]byte
	generation    int64
	invalidations int
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) Generation(context.Context) (int64, error) { return c.generation, nil }

func (c *fakeCache) Get(_ context.Context, gen int64, key string, dst any) (bool, error) {
	raw, ok := c.data[config.CacheKey.Versioned(key, gen)]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *fakeCache) Set(_ context.Context, gen int64, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[config.CacheKey.Versioned(key, gen)] = raw
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context) error {
	c.invalidations++
	c.generation++
	return nil
}

func intPtr(v int) *int { return &v }

func request(regency string, cases, year int) *model.CaseRecordRequest {
	return &model.CaseRecordRequest{
		ProvinceCode: "32",
		ProvinceName: "JAWA BARAT",
		RegencyCode:  "3201",
		RegencyName:  regency,
		CaseCount:    json.Number(strconv.Itoa(cases)),
		Unit:         "ORANG",
		Year:         json.Number(strconv.Itoa(year)),
	}
}
