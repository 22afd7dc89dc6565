// Package export renders inventory reports as spreadsheets.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/foodbank/internal/ledger"
	"github.com/erazemk/foodbank/internal/model"
)

// SheetName is the worksheet holding the stock report.
const SheetName = "Stock"

// ContentType is the MIME type of XLSX workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var header = []any{"name", "category", "sku", "unit", "minimum_stock", "current_stock", "shortage"}

// StockWorkbook writes one row per item with its derived stock and shortage.
func StockWorkbook(items []model.StockedItem) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for i, item := range items {
		category := ""
		if item.Category != nil {
			category = item.Category.Name
		}
		shortage := ledger.Evaluate(item.MinimumStock, item.CurrentStock).Shortage

		row := []any{
			item.Name,
			category,
			item.SKU,
			item.UnitType,
			item.MinimumStock,
			item.CurrentStock,
			shortage,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("resolving cell: %w", err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freezing header: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
