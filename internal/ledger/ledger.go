// Package ledger derives stock positions from the append-only inventory
// transaction log and classifies items as low on stock.
//
// Stock is never stored. It is always the signed sum of an item's ledger:
// donation_in adds, distribution (or its alias distribution_out) subtracts,
// and any other type contributes nothing.
package ledger

import (
	"cmp"
	"slices"

	"github.com/erazemk/foodbank/internal/model"
)

// Normalize maps a transaction type to its canonical name.
// The second result is false for types the ledger does not recognize.
func Normalize(transactionType string) (string, bool) {
	switch transactionType {
	case model.TransactionDonationIn:
		return model.TransactionDonationIn, true
	case model.TransactionDistribution, model.DistributionAlias:
		return model.TransactionDistribution, true
	}
	return transactionType, false
}

// Direction returns +1 for inbound, -1 for outbound and 0 for unknown types.
func Direction(transactionType string) int {
	switch transactionType {
	case model.TransactionDonationIn:
		return 1
	case model.TransactionDistribution, model.DistributionAlias:
		return -1
	}
	return 0
}

// CurrentStock sums an item's transactions. The result is not clamped:
// a negative value means more was distributed than was ever received.
func CurrentStock(txs []model.InventoryTransaction) int {
	stock := 0
	for _, tx := range txs {
		stock += Direction(tx.TransactionType) * tx.Quantity
	}
	return stock
}

// Status is the low-stock classification of one item.
type Status struct {
	CurrentStock int
	Low          bool
	// Shortage is minimum - current when Low, otherwise 0.
	Shortage int
}

// Evaluate classifies stock against a minimum. An item is low only when
// its stock is strictly below the minimum; stock equal to the minimum is not low.
func Evaluate(minimum, current int) Status {
	s := Status{CurrentStock: current}
	if current < minimum {
		s.Low = true
		s.Shortage = minimum - current
	}
	return s
}

// Stock computes the derived stock for an item from its transactions.
func Stock(item model.InventoryItem, txs []model.InventoryTransaction) model.StockedItem {
	st := Evaluate(item.MinimumStock, CurrentStock(txs))
	return model.StockedItem{
		InventoryItem: item,
		CurrentStock:  st.CurrentStock,
		LowStock:      st.Low,
	}
}

// BuildAlerts returns every low item with its current stock and shortage,
// ordered by descending shortage and then by name.
// Items missing from byItem have no transactions and a stock of 0.
func BuildAlerts(items []model.InventoryItem, byItem map[string][]model.InventoryTransaction) []model.LowStockAlert {
	alerts := []model.LowStockAlert{}
	for _, item := range items {
		st := Evaluate(item.MinimumStock, CurrentStock(byItem[item.ID]))
		if !st.Low {
			continue
		}
		alerts = append(alerts, model.LowStockAlert{
			InventoryItem: item,
			CurrentStock:  st.CurrentStock,
			Shortage:      st.Shortage,
		})
	}

	slices.SortStableFunc(alerts, func(a, b model.LowStockAlert) int {
		if c := cmp.Compare(b.Shortage, a.Shortage); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return alerts
}

// GroupByItem indexes transactions by item id.
func GroupByItem(txs []model.InventoryTransaction) map[string][]model.InventoryTransaction {
	byItem := make(map[string][]model.InventoryTransaction)
	for _, tx := range txs {
		byItem[tx.ItemID] = append(byItem[tx.ItemID], tx)
	}
	return byItem
}
