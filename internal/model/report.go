package model

// OthersLabel names the pie slice that folds every region outside the top five.
const OthersLabel = "OTHERS"

// GlobalStats summarises the whole table for the home view.
type GlobalStats struct {
	TotalCases    int64 `json:"total_cases"`
	TotalRecords  int64 `json:"total_records"`
	MinYear       *int  `json:"min_year"`
	MaxYear       *int  `json:"max_year"`
	UniqueRegions int64 `json:"unique_regions"`
}

// YearTotal is the summed case count of one year.
type YearTotal struct {
	Year  int   `json:"year"`
	Total int64 `json:"total"`
}

// RegionTotal is the summed case count of one regency.
type RegionTotal struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
}

// YearlyTrend holds the parallel series drawn by the trend chart.
type YearlyTrend struct {
	Years        []int   `json:"years"`
	CasesPerYear []int64 `json:"cases_per_year"`
}

// RegionalBreakdown holds the top-10 bar series and the top-5 + OTHERS pie series.
type RegionalBreakdown struct {
	RegionNames  []string `json:"region_names"`
	RegionTotals []int64  `json:"region_totals"`
	PieLabels    []string `json:"pie_labels"`
	PieData      []int64  `json:"pie_data"`
}
