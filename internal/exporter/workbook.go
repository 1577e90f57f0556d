package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/andresfortunato/mexico-city-growth-tool/internal/errors"
)

// WriteWorkbook saves the tables into a single XLSX file, one sheet per table
// in the given order. Numbers are stored as numeric cells; nulls are left
// blank.
func WriteWorkbook(path string, tables ...Table) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperrors.NewStorageError("failed to create header style", err)
	}

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
				return apperrors.NewStorageError("failed to rename sheet", err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return apperrors.NewStorageError("failed to add sheet", err).WithContext("sheet", t.Name)
		}
		if err := writeSheet(f, t, header); err != nil {
			return apperrors.NewStorageError("failed to write sheet", err).WithContext("sheet", t.Name)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err).WithContext("path", path)
	}
	return nil
}

func writeSheet(f *excelize.File, t Table, headerStyle int) error {
	for col, h := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(t.Name, cell, h); err != nil {
			return err
		}
	}
	if len(t.Headers) > 0 {
		last, _ := excelize.ColumnNumberToName(len(t.Headers))
		if err := f.SetCellStyle(t.Name, "A1", fmt.Sprintf("%s1", last), headerStyle); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		for col, c := range row {
			v, ok := cellValue(c)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(t.Name, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
