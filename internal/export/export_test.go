package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/foodbank/internal/model"
)

func TestStockWorkbook(t *testing.T) {
	items := []model.StockedItem{
		{
			InventoryItem: model.InventoryItem{
				Name: "Rice", UnitType: "kg", MinimumStock: 100, SKU: "R-1",
				Category: &model.CategoryRef{Name: "Grains"},
			},
			CurrentStock: 50,
			LowStock:     true,
		},
		{
			InventoryItem: model.InventoryItem{Name: "Beans", UnitType: "cans", MinimumStock: 50},
			CurrentStock:  120,
		},
	}

	data, err := StockWorkbook(items)
	if err != nil {
		t.Fatalf("StockWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "name" || rows[0][6] != "shortage" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	want := []string{"Rice", "Grains", "R-1", "kg", "100", "50", "50"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("row 1 col %d: got %q, want %q", i, rows[1][i], v)
		}
	}
	if rows[2][6] != "0" {
		t.Errorf("expected zero shortage for stocked item, got %q", rows[2][6])
	}
}

func TestStockWorkbookEmpty(t *testing.T) {
	data, err := StockWorkbook(nil)
	if err != nil {
		t.Fatalf("StockWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows(SheetName)
	if len(rows) != 1 {
		t.Errorf("expected header only, got %d rows", len(rows))
	}
}
