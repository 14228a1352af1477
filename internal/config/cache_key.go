package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ReportStatsKey returns the cache key for the global stats payload
func (r *CacheKeyStruct) ReportStatsKey() string {
	return "report:stats"
}

// ReportTrendKey returns the cache key for the yearly trend payload
func (r *CacheKeyStruct) ReportTrendKey() string {
	return "report:trend"
}

// ReportRegionalKey returns the cache key for the regional ranking payload of a given size
func (r *CacheKeyStruct) ReportRegionalKey(limit int) string {
	return fmt.Sprintf("report:regional:%d", limit)
}

// ReportKeys returns every report key that must be dropped after a write
func (r *CacheKeyStruct) ReportKeys() []string {
	return []string{r.ReportStatsKey(), r.ReportTrendKey(), r.ReportRegionalKey(RegionalRankingSize)}
}

// ReportGenerationKey returns the counter key bumped on every write
func (r *CacheKeyStruct) ReportGenerationKey() string {
	return "report:generation"
}

// Versioned returns key scoped to a cache generation
func (r *CacheKeyStruct) Versioned(key string, gen int64) string {
	return fmt.Sprintf("%s:g%d", key, gen)
}

// RegionalRankingSize is how many regions the regional view ranks.
const RegionalRankingSize = 10

var CacheKey = NewCacheKeyStruct()
