package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/foodbank/internal/model"
)

type inventoryRepository struct{ base }

const itemSelect = `SELECT i.id, i.organization_id, i.category_id, i.name, i.description, i.sku, i.barcode,
	i.unit_type, i.minimum_stock, i.notes, i.created_at, i.updated_at,
	COALESCE(c.name, '') AS category_name,
	CASE WHEN img.item_id IS NULL THEN 0 ELSE 1 END AS has_image
	FROM inventory_items i
	LEFT JOIN inventory_categories c ON c.id = i.category_id AND c.organization_id = i.organization_id
	LEFT JOIN inventory_item_images img ON img.item_id = i.id`

const transactionColumns = `t.id, t.organization_id, t.item_id, t.transaction_type, t.quantity, t.notes,
	t.user_id, t.transaction_date, t.created_at`

type itemRow struct {
	model.InventoryItem
	CategoryName string `db:"category_name"`
}

func (row itemRow) item() model.InventoryItem {
	item := row.InventoryItem
	if row.CategoryName != "" {
		item.Category = &model.CategoryRef{Name: row.CategoryName}
	}
	return item
}

// ListItems returns the organization's items ordered by name.
func (r *inventoryRepository) ListItems(ctx context.Context, orgID string, filter ItemFilter) ([]model.InventoryItem, error) {
	query := itemSelect + ` WHERE i.organization_id = ?`
	args := []any{orgID}
	if filter.CategoryID != "" {
		query += ` AND i.category_id = ?`
		args = append(args, filter.CategoryID)
	}
	query += ` ORDER BY i.name`

	var rows []itemRow
	if err := r.selectRows(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	items := make([]model.InventoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.item())
	}
	return items, nil
}

// GetItem returns an item, or nil.
func (r *inventoryRepository) GetItem(ctx context.Context, orgID, id string) (*model.InventoryItem, error) {
	var row itemRow
	found, err := r.get(ctx, &row, itemSelect+` WHERE i.organization_id = ? AND i.id = ?`, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	if !found {
		return nil, nil
	}
	item := row.item()
	return &item, nil
}

// CreateItem inserts an item. The caller checks that the category belongs
// to the same organization.
func (r *inventoryRepository) CreateItem(ctx context.Context, item *model.InventoryItem) error {
	item.ID = uuid.NewString()
	item.CreatedAt = now()
	item.UpdatedAt = item.CreatedAt

	_, err := r.exec(ctx,
		`INSERT INTO inventory_items (id, organization_id, category_id, name, description, sku, barcode,
		   unit_type, minimum_stock, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.OrganizationID, item.CategoryID, item.Name, item.Description, item.SKU, item.Barcode,
		item.UnitType, item.MinimumStock, item.Notes, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating item: %w", err)
	}
	return nil
}

// UpdateItem saves an item's metadata.
func (r *inventoryRepository) UpdateItem(ctx context.Context, item *model.InventoryItem) (bool, error) {
	item.UpdatedAt = now()
	n, err := r.exec(ctx,
		`UPDATE inventory_items SET category_id = ?, name = ?, description = ?, sku = ?, barcode = ?,
		   unit_type = ?, minimum_stock = ?, notes = ?, updated_at = ?
		 WHERE organization_id = ? AND id = ?`,
		item.CategoryID, item.Name, item.Description, item.SKU, item.Barcode,
		item.UnitType, item.MinimumStock, item.Notes, item.UpdatedAt, item.OrganizationID, item.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}
	return n > 0, nil
}

// ListCategories returns the organization's categories ordered by name.
func (r *inventoryRepository) ListCategories(ctx context.Context, orgID string) ([]model.InventoryCategory, error) {
	var cats []model.InventoryCategory
	err := r.selectRows(ctx, &cats,
		`SELECT id, organization_id, name, description, created_at
		 FROM inventory_categories WHERE organization_id = ? ORDER BY name`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return cats, nil
}

// GetCategory returns a category, or nil.
func (r *inventoryRepository) GetCategory(ctx context.Context, orgID, id string) (*model.InventoryCategory, error) {
	c := &model.InventoryCategory{}
	found, err := r.get(ctx, c,
		`SELECT id, organization_id, name, description, created_at
		 FROM inventory_categories WHERE organization_id = ? AND id = ?`,
		orgID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	if !found {
		return nil, nil
	}
	return c, nil
}

// CreateCategory inserts a category. Names are unique per organization.
func (r *inventoryRepository) CreateCategory(ctx context.Context, c *model.InventoryCategory) error {
	c.ID = uuid.NewString()
	c.CreatedAt = now()

	_, err := r.exec(ctx,
		`INSERT INTO inventory_categories (id, organization_id, name, description, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.OrganizationID, c.Name, c.Description, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating category: %w", err)
	}
	return nil
}

// RecordTransaction appends an entry to the ledger. The type is stored as
// given; unrecognized types are kept and contribute nothing to stock.
func (r *inventoryRepository) RecordTransaction(ctx context.Context, tx *model.InventoryTransaction) error {
	tx.ID = uuid.NewString()
	tx.CreatedAt = now()
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = tx.CreatedAt
	}
	tx.TransactionDate = tx.TransactionDate.UTC()

	_, err := r.exec(ctx,
		`INSERT INTO inventory_transactions (id, organization_id, item_id, transaction_type, quantity, notes,
		   user_id, transaction_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.OrganizationID, tx.ItemID, tx.TransactionType, tx.Quantity, tx.Notes,
		tx.UserID, tx.TransactionDate, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording transaction: %w", err)
	}
	return nil
}

// ItemTransactions returns an item's ledger with the recording user's name, newest first.
func (r *inventoryRepository) ItemTransactions(ctx context.Context, orgID, itemID string, limit int) ([]model.InventoryTransaction, error) {
	query := `SELECT ` + transactionColumns + `,
		COALESCE(u.first_name, '') AS user_first_name, COALESCE(u.last_name, '') AS user_last_name
		FROM inventory_transactions t
		LEFT JOIN users u ON u.id = t.user_id
		WHERE t.organization_id = ? AND t.item_id = ?
		ORDER BY t.transaction_date DESC, t.created_at DESC`
	args := []any{orgID, itemID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []struct {
		model.InventoryTransaction
		UserFirstName string `db:"user_first_name"`
		UserLastName  string `db:"user_last_name"`
	}
	if err := r.selectRows(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing item transactions: %w", err)
	}

	txs := make([]model.InventoryTransaction, 0, len(rows))
	for _, row := range rows {
		tx := row.InventoryTransaction
		tx.User = &model.UserRef{FirstName: row.UserFirstName, LastName: row.UserLastName}
		txs = append(txs, tx)
	}
	return txs, nil
}

// Transactions returns every ledger entry of the organization.
func (r *inventoryRepository) Transactions(ctx context.Context, orgID string) ([]model.InventoryTransaction, error) {
	var txs []model.InventoryTransaction
	err := r.selectRows(ctx, &txs,
		`SELECT `+transactionColumns+` FROM inventory_transactions t WHERE t.organization_id = ?`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txs, nil
}

// SetItemImage stores or replaces an item's image. It reports false if the
// item does not belong to the organization.
func (r *inventoryRepository) SetItemImage(ctx context.Context, orgID, itemID string, data []byte, mime string) (bool, error) {
	item, err := r.GetItem(ctx, orgID, itemID)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, nil
	}

	_, err = r.exec(ctx,
		`INSERT INTO inventory_item_images (item_id, data, mime, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (item_id) DO UPDATE SET data = excluded.data, mime = excluded.mime, updated_at = excluded.updated_at`,
		itemID, data, mime, now(),
	)
	if err != nil {
		return false, fmt.Errorf("setting item image: %w", err)
	}
	return true, nil
}

// GetItemImage returns an item's image data and MIME type. Data is nil when
// the item has no image.
func (r *inventoryRepository) GetItemImage(ctx context.Context, orgID, itemID string) ([]byte, string, error) {
	var img struct {
		Data []byte `db:"data"`
		MIME string `db:"mime"`
	}
	found, err := r.get(ctx, &img,
		`SELECT img.data, img.mime FROM inventory_item_images img
		 JOIN inventory_items i ON i.id = img.item_id
		 WHERE i.organization_id = ? AND img.item_id = ?`,
		orgID, itemID,
	)
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	if !found {
		return nil, "", nil
	}
	return img.Data, img.MIME, nil
}
