package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/dm-report/internal/model"
	"github.com/stemsi/dm-report/internal/repository"
)

// RecordService handles case record CRUD and the filtered listing.
type RecordService struct {
	recordRepo repository.CaseRecordRepository
	cache      ReportCache
	log        zerolog.Logger
}

// NewRecordService creates a new RecordService.
func NewRecordService(recordRepo repository.CaseRecordRepository, cache ReportCache, log zerolog.Logger) *RecordService {
	return &RecordService{
		recordRepo: recordRepo,
		cache:      cache,
		log:        log.With().Str("component", "record_service").Logger(),
	}
}

// GetByID retrieves a record. Missing ids yield repository.ErrNotFound.
func (s *RecordService) GetByID(ctx context.Context, id int) (*model.CaseRecord, error) {
	return s.recordRepo.GetByID(ctx, id)
}

// List retrieves every record matching filter.
func (s *RecordService) List(ctx context.Context, filter model.CaseRecordFilter) ([]model.CaseRecord, error) {
	return s.recordRepo.List(ctx, filter)
}

// AvailableYears retrieves the distinct years for the filter dropdown, newest first.
func (s *RecordService) AvailableYears(ctx context.Context) ([]int, error) {
	return s.recordRepo.DistinctYears(ctx)
}

// Create stores a new record with a store-assigned id.
func (s *RecordService) Create(ctx context.Context, req *model.CaseRecordRequest) (*model.CaseRecord, error) {
	rec := req.ToRecord(0)
	if err := s.recordRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.invalidateReports(ctx)
	return rec, nil
}

// Update overwrites every field of an existing record.
func (s *RecordService) Update(ctx context.Context, id int, req *model.CaseRecordRequest) (*model.CaseRecord, error) {
	if _, err := s.recordRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	rec := req.ToRecord(id)
	if err := s.recordRepo.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.invalidateReports(ctx)
	return rec, nil
}

// Delete removes an existing record.
func (s *RecordService) Delete(ctx context.Context, id int) error {
	if _, err := s.recordRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.recordRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateReports(ctx)
	return nil
}

// invalidateReports drops cached aggregates. Failure only costs staleness until TTL.
func (s *RecordService) invalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Report cache invalidation failed")
	}
}
