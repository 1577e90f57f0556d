package config

// Application constants
const (
	AppName = "city-growth"

	// Source file names as published by INEGI and SHF.
	DefaultEmploymentFile = "Employment rate by city.xls"
	DefaultSalaryFile     = "Mean hourly salary by city.xls"
	DefaultPopulationFile = "Population by city.xls"
	DefaultHousingFile    = "Indice SHF datos abiertos 4_trim_2024(Indice SHF datos abiertos).csv"

	DefaultCAGRStartYear = 2015
	DefaultCAGREndYear   = 2020

	// Directories, relative to the base directory
	DefaultDataDir    = "data"
	DefaultReportsDir = "reports"
	DefaultLogsDir    = "logs"

	DefaultLogFileName = "app.log"

	// Report file names
	CompiledDataCSV = "city_data_compiled.csv"
	YearlyGrowthCSV = "yearly_growth_data.csv"
	CAGRDataCSV     = "cagr_data.csv"
	WorkbookXLSX    = "city_growth.xlsx"
)
