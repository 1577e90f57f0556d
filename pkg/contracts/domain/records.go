package domain

// UnifiedRecord is one reconciled (city, quarter) row.
type UnifiedRecord struct {
	City           string    `json:"city"`
	TimePoint      TimePoint `json:"time_point"`
	Year           int       `json:"year"`
	Quarter        int       `json:"quarter"`
	EmploymentRate Value     `json:"employment_rate"`
	HourlySalary   Value     `json:"hourly_salary"`
	Population     Value     `json:"population"`
	HousingIndex   Value     `json:"housing_index"`
	MonthlySalary  Value     `json:"monthly_salary"`
	RealWage       Value     `json:"real_wage"`
}

// YearlyAggregate holds the mean of a city's non-null quarterly values for one year.
type YearlyAggregate struct {
	City           string `json:"city"`
	Year           int    `json:"year"`
	EmploymentRate Value  `json:"avg_employment_rate"`
	MonthlySalary  Value  `json:"avg_monthly_salary"`
	RealWage       Value  `json:"avg_real_wage"`
	Population     Value  `json:"avg_population"`
	HousingIndex   Value  `json:"avg_housing_index"`
}

// GrowthRecord is the year-over-year percentage change for one city and year,
// alongside that year's averages.
type GrowthRecord struct {
	YearlyAggregate
	PopulationGrowth  Value `json:"population_growth"`
	RealWageGrowth    Value `json:"real_wage_growth"`
	NominalWageGrowth Value `json:"nominal_wage_growth"`
}

// CAGRRecord is the compound annual growth rate of one city over a window.
// Span is the configured window length; FirstYear and LastYear are the
// in-window years whose averages were actually compared.
type CAGRRecord struct {
	City            string `json:"city"`
	StartYear       int    `json:"start_year"`
	EndYear         int    `json:"end_year"`
	Span            int    `json:"years"`
	FirstYear       int    `json:"first_year"`
	LastYear        int    `json:"last_year"`
	PopulationCAGR  Value  `json:"population_cagr"`
	RealWageCAGR    Value  `json:"real_wage_cagr"`
	NominalWageCAGR Value  `json:"nominal_wage_cagr"`
}

// Summary describes the extent of a compiled data set.
type Summary struct {
	TotalCities     int `json:"total_cities"`
	FirstYear       int `json:"first_year"`
	LastYear        int `json:"last_year"`
	TotalDataPoints int `json:"total_data_points"`
	TimePoints      int `json:"time_points"`
}
