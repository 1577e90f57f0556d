// Package exporter writes the compiled city tables to disk.
//
// Tables are built from the pipeline output by RecordsTable, GrowthTable and
// CAGRTable. Each can be written as CSV with CSVWriter, and all of them can be
// written into one XLSX workbook, one sheet per table, with WriteWorkbook.
// Null values become empty cells in both formats.
//
// Example usage:
//
//	tables := exporter.Tables(result.Records, result.Growth, result.CAGR)
//	csv := exporter.NewCSVWriter(paths)
//	for _, t := range tables {
//		if _, err := csv.WriteTable(t); err != nil {
//			return err
//		}
//	}
//	err := exporter.WriteWorkbook(paths.ReportPath(config.WorkbookXLSX), tables...)
package exporter
