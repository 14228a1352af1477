package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/dm-report/internal/model"
	"github.com/stemsi/dm-report/internal/repository"
)

func TestRecordServiceCreateInvalidatesReports(t *testing.T) {
	repo := newFakeRecordRepo()
	cache := newFakeCache()
	svc := NewRecordService(repo, cache, zerolog.Nop())

	rec, err := svc.Create(context.Background(), request("KOTA BANDUNG", 10, 2020))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID == 0 || rec.RegencyName != "KOTA BANDUNG" || rec.CaseCount != 10 || rec.Year != 2020 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if cache.invalidations != 1 {
		t.Fatalf("invalidations = %d, want 1", cache.invalidations)
	}
}

func TestRecordServiceUpdateMissingRecord(t *testing.T) {
	cache := newFakeCache()
	svc := NewRecordService(newFakeRecordRepo(), cache, zerolog.Nop())

	_, err := svc.Update(context.Background(), 9, request("A", 1, 2020))
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if cache.invalidations != 0 {
		t.Fatal("failed update must not invalidate cache")
	}
}

func TestRecordServiceUpdateOverwritesAllFields(t *testing.T) {
	repo := newFakeRecordRepo(model.CaseRecord{ID: 3, RegencyName: "OLD", CaseCount: 1, Year: 2019})
	svc := NewRecordService(repo, nil, zerolog.Nop())

	rec, err := svc.Update(context.Background(), 3, request("NEW", 42, 2023))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want := model.CaseRecord{
		ID: 3, ProvinceCode: 32, ProvinceName: "JAWA BARAT", RegencyCode: 3201,
		RegencyName: "NEW", CaseCount: 42, Unit: "ORANG", Year: 2023,
	}
	if *rec != want || repo.rows[3] != want {
		t.Fatalf("got %+v stored %+v, want %+v", *rec, repo.rows[3], want)
	}
}

func TestRecordServiceDeleteThenGet(t *testing.T) {
	repo := newFakeRecordRepo(model.CaseRecord{ID: 5, RegencyName: "A", Year: 2020})
	svc := NewRecordService(repo, nil, zerolog.Nop())
	ctx := context.Background()

	if err := svc.Delete(ctx, 5); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, 5); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, 5); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRecordServiceListByYear(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := NewRecordService(repo, nil, zerolog.Nop())
	ctx := context.Background()

	r2020, _ := svc.Create(ctx, request("A", 1, 2020))
	if _, err := svc.Create(ctx, request("B", 2, 2021)); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.List(ctx, model.CaseRecordFilter{Year: intPtr(2020)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != r2020.ID {
		t.Fatalf("list = %+v, want only record %d", got, r2020.ID)
	}

	years, err := svc.AvailableYears(ctx)
	if err != nil || len(years) != 2 || years[0] != 2021 || years[1] != 2020 {
		t.Fatalf("years = %v err=%v", years, err)
	}
}
