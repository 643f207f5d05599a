// Package export renders an extraction result as CSV or XLSX for
// downstream consumption.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tsawler/bomex/model"
)

// SheetName is the worksheet holding the bill of materials.
const SheetName = "BOM"

var columnTitles = []string{
	"Position", "Part Number", "Description", "Quantity", "Unit",
	"Material", "Comment", "Confidence",
}

func itemRow(item *model.BOMItem) []string {
	confidence := ""
	if item.Confidence != nil {
		confidence = fmt.Sprintf("%.4f", *item.Confidence)
	}
	quantity := ""
	if item.Quantity != nil {
		quantity = item.Quantity.String()
	}
	return []string{
		item.Position, item.PartNumber, item.Description, quantity,
		item.Unit, item.Material, item.Comment, confidence,
	}
}

// WriteCSV renders the result's items as CSV with a fixed column order.
func WriteCSV(w io.Writer, result *model.ExtractionResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columnTitles); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, item := range result.Items {
		if err := writer.Write(itemRow(item)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX renders the result's items as an XLSX workbook with one
// "BOM" sheet. Quantities and confidences are written as numbers.
func WriteXLSX(w io.Writer, result *model.ExtractionResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("prepare sheet: %w", err)
	}

	for i, title := range columnTitles {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for rowIdx, item := range result.Items {
		values := []any{
			item.Position, item.PartNumber, item.Description,
			nil, item.Unit, item.Material, item.Comment, nil,
		}
		if item.Quantity != nil {
			if item.Quantity.Exact {
				values[3] = item.Quantity.Int()
			} else {
				values[3] = item.Quantity.Value
			}
		}
		if item.Confidence != nil {
			values[7] = *item.Confidence
		}

		for colIdx, value := range values {
			if value == nil || value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return fmt.Errorf("write row %d: %w", rowIdx+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
