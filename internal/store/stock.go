package store

import (
	"context"
	"fmt"

	"github.com/erazemk/foodbank/internal/ledger"
	"github.com/erazemk/foodbank/internal/model"
)

// StockedItems loads the organization's items matching filter and derives
// each one's stock from the organization's full ledger.
func StockedItems(ctx context.Context, inv InventoryRepository, orgID string, filter ItemFilter) ([]model.StockedItem, error) {
	items, byItem, err := itemsWithLedger(ctx, inv, orgID, filter)
	if err != nil {
		return nil, err
	}
	stocked := make([]model.StockedItem, 0, len(items))
	for _, item := range items {
		stocked = append(stocked, ledger.Stock(item, byItem[item.ID]))
	}
	return stocked, nil
}

// LowStockAlerts builds the organization's low-stock alert list.
func LowStockAlerts(ctx context.Context, inv InventoryRepository, orgID string) ([]model.LowStockAlert, error) {
	items, byItem, err := itemsWithLedger(ctx, inv, orgID, ItemFilter{})
	if err != nil {
		return nil, err
	}
	return ledger.BuildAlerts(items, byItem), nil
}

func itemsWithLedger(ctx context.Context, inv InventoryRepository, orgID string, filter ItemFilter) ([]model.InventoryItem, map[string][]model.InventoryTransaction, error) {
	items, err := inv.ListItems(ctx, orgID, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("loading items: %w", err)
	}
	txs, err := inv.Transactions(ctx, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading ledger: %w", err)
	}
	return items, ledger.GroupByItem(txs), nil
}
