// Package config provides centralized configuration management for the city
// growth compiler. It loads configuration from multiple sources, validates
// it, and resolves the directories the compiler reads from and writes to.
//
// # Configuration Sources
//
// Configuration is layered, later sources overriding earlier ones:
//
//	1. Default values
//	2. A YAML file (CITYGROWTH_CONFIG, config.yaml or configs/config.yaml)
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern CITYGROWTH_<SECTION>_<FIELD>:
//
//	CITYGROWTH_SERVER_PORT=8080
//	CITYGROWTH_ANALYSIS_START_YEAR=2016
//	CITYGROWTH_SOURCES_HOUSING_FILE=/srv/data/shf.csv
//	CITYGROWTH_LOGGING_LEVEL=debug
//
// # Path Management
//
// Paths resolves the data, reports and logs directories against a base
// directory (the working directory unless configured):
//
//	paths, err := cfg.ResolvePaths()
//	sources := cfg.SourceFiles(paths)
//	out := paths.ReportPath(config.CompiledDataCSV)
//
// # Validation
//
// Struct tags are checked with go-playground/validator after loading, so an
// inverted CAGR window or an unknown log level fails fast.
package config
