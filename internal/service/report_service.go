package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/dm-report/internal/config"
	"github.com/stemsi/dm-report/internal/model"
	"github.com/stemsi/dm-report/internal/repository"
)

// pieSlices is how many ranked regions get their own pie slice before OTHERS.
const pieSlices = 5

// ReportService computes the stats, trend and regional views.
type ReportService struct {
	reportRepo *repository.ReportRepository
	cache      ReportCache
	log        zerolog.Logger
}

// NewReportService creates a new ReportService. cache may be nil.
func NewReportService(reportRepo *repository.ReportRepository, cache ReportCache, log zerolog.Logger) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		cache:      cache,
		log:        log.With().Str("component", "report_service").Logger(),
	}
}

// GetGlobalStats returns table-wide totals for the home view.
func (s *ReportService) GetGlobalStats(ctx context.Context) (*model.GlobalStats, error) {
	view := s.cacheView(ctx)

	var stats model.GlobalStats
	if view.get(config.CacheKey.ReportStatsKey(), &stats) {
		return &stats, nil
	}

	fresh, err := s.reportRepo.GetGlobalStats(ctx)
	if err != nil {
		return nil, err
	}
	view.set(config.CacheKey.ReportStatsKey(), fresh)
	return fresh, nil
}

// GetYearlyTrend returns per-year sums as parallel series, oldest year first.
func (s *ReportService) GetYearlyTrend(ctx context.Context) (*model.YearlyTrend, error) {
	view := s.cacheView(ctx)

	var trend model.YearlyTrend
	if view.get(config.CacheKey.ReportTrendKey(), &trend) {
		return &trend, nil
	}

	totals, err := s.reportRepo.GetYearlyTotals(ctx)
	if err != nil {
		return nil, err
	}
	fresh := BuildYearlyTrend(totals)
	view.set(config.CacheKey.ReportTrendKey(), fresh)
	return fresh, nil
}

// GetRegionalBreakdown returns the top-10 ranking and the top-5 + OTHERS pie.
func (s *ReportService) GetRegionalBreakdown(ctx context.Context) (*model.RegionalBreakdown, error) {
	key := config.CacheKey.ReportRegionalKey(config.RegionalRankingSize)
	view := s.cacheView(ctx)

	var breakdown model.RegionalBreakdown
	if view.get(key, &breakdown) {
		return &breakdown, nil
	}

	ranking, total, err := s.reportRepo.GetRegionRanking(ctx, config.RegionalRankingSize)
	if err != nil {
		return nil, err
	}

	fresh := BuildRegionalBreakdown(ranking, total)
	view.set(key, fresh)
	return fresh, nil
}

// BuildYearlyTrend splits year totals into the two chart series.
func BuildYearlyTrend(totals []model.YearTotal) *model.YearlyTrend {
	trend := &model.YearlyTrend{
		Years:        make([]int, 0, len(totals)),
		CasesPerYear: make([]int64, 0, len(totals)),
	}
	for _, yt := range totals {
		trend.Years = append(trend.Years, yt.Year)
		trend.CasesPerYear = append(trend.CasesPerYear, yt.Total)
	}
	return trend
}

// BuildRegionalBreakdown derives both regional views from one ranking. The pie
// always ends with an OTHERS slice worth grandTotal minus the leading slices.
func BuildRegionalBreakdown(ranking []model.RegionTotal, grandTotal int64) *model.RegionalBreakdown {
	out := &model.RegionalBreakdown{
		RegionNames:  make([]string, 0, len(ranking)),
		RegionTotals: make([]int64, 0, len(ranking)),
	}
	for _, rt := range ranking {
		out.RegionNames = append(out.RegionNames, rt.Name)
		out.RegionTotals = append(out.RegionTotals, rt.Total)
	}

	n := min(pieSlices, len(ranking))
	out.PieLabels = make([]string, 0, n+1)
	out.PieData = make([]int64, 0, n+1)

	var topTotal int64
	for _, rt := range ranking[:n] {
		out.PieLabels = append(out.PieLabels, rt.Name)
		out.PieData = append(out.PieData, rt.Total)
		topTotal += rt.Total
	}
	out.PieLabels = append(out.PieLabels, model.OthersLabel)
	out.PieData = append(out.PieData, grandTotal-topTotal)
	return out
}

// cacheView pins one cache generation for the duration of a report call, so
// the payload it stores belongs to the generation it was computed under.
type cacheView struct {
	ctx   context.Context
	cache ReportCache
	gen   int64
	log   zerolog.Logger
}

func (s *ReportService) cacheView(ctx context.Context) cacheView {
	if s.cache == nil {
		return cacheView{}
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Report cache generation unavailable")
		return cacheView{}
	}
	return cacheView{ctx: ctx, cache: s.cache, gen: gen, log: s.log}
}

func (v cacheView) get(key string, dst any) bool {
	if v.cache == nil {
		return false
	}
	hit, err := v.cache.Get(v.ctx, v.gen, key, dst)
	if err != nil {
		v.log.Warn().Err(err).Str("key", key).Msg("Report cache read failed")
		return false
	}
	return hit
}

func (v cacheView) set(key string, value any) {
	if v.cache == nil {
		return
	}
	if err := v.cache.Set(v.ctx, v.gen, key, value); err != nil {
		v.log.Warn().Err(err).Str("key", key).Msg("Report cache write failed")
	}
}
