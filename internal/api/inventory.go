package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/foodbank/internal/apperr"
	"github.com/erazemk/foodbank/internal/events"
	"github.com/erazemk/foodbank/internal/export"
	"github.com/erazemk/foodbank/internal/imaging"
	"github.com/erazemk/foodbank/internal/ledger"
	"github.com/erazemk/foodbank/internal/metrics"
	"github.com/erazemk/foodbank/internal/model"
	"github.com/erazemk/foodbank/internal/store"
)

// recentTransactions is the number of ledger entries shown with an item.
const recentTransactions = 10

// InventoryHandler handles items, categories and the transaction ledger.
type InventoryHandler struct {
	Inventory store.InventoryRepository
	Events    events.Publisher
	Metrics   *metrics.Metrics
}

type createItemRequest struct {
	CategoryID   string `json:"category_id" validate:"required"`
	Name         string `json:"name" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=1000"`
	SKU          string `json:"sku" validate:"max=100"`
	Barcode      string `json:"barcode" validate:"max=100"`
	UnitType     string `json:"unit_type" validate:"required,max=50"`
	MinimumStock int    `json:"minimum_stock" validate:"gte=0"`
	Notes        string `json:"notes"`
}

type updateItemRequest struct {
	CategoryID   *string `json:"category_id" validate:"omitempty,min=1"`
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=1000"`
	SKU          *string `json:"sku" validate:"omitempty,max=100"`
	Barcode      *string `json:"barcode" validate:"omitempty,max=100"`
	UnitType     *string `json:"unit_type" validate:"omitempty,min=1,max=50"`
	MinimumStock *int    `json:"minimum_stock" validate:"omitempty,gte=0"`
	Notes        *string `json:"notes"`
}

type createCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type transactionRequest struct {
	ItemID          string     `json:"item_id" validate:"required"`
	TransactionType string     `json:"transaction_type" validate:"required,max=50"`
	Quantity        int        `json:"quantity" validate:"required,gt=0"`
	Notes           string     `json:"notes" validate:"max=1000"`
	TransactionDate *time.Time `json:"transaction_date"`
}

type transactionResponse struct {
	model.InventoryTransaction
	CurrentStock int `json:"current_stock"`
}

// itemDetail always carries recent_transactions, even when the ledger is empty.
type itemDetail struct {
	model.StockedItem
	RecentTransactions []model.InventoryTransaction `json:"recent_transactions"`
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}

	q := r.URL.Query()
	lowOnly := false
	if v := q.Get("low_stock"); v != "" {
		if lowOnly, err = strconv.ParseBool(v); err != nil {
			return apperr.Validation("low_stock must be true or false")
		}
	}

	items, err := store.StockedItems(r.Context(), h.Inventory, p.OrganizationID, store.ItemFilter{CategoryID: q.Get("category_id")})
	if err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to list inventory")
	}

	if lowOnly {
		low := make([]model.StockedItem, 0, len(items))
		for _, item := range items {
			if item.LowStock {
				low = append(low, item)
			}
		}
		items = low
	}
	jsonResponse(w, http.StatusOK, items)
	return nil
}

// Get handles GET /api/inventory/{id}.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	ctx := r.Context()

	item, err := h.Inventory.GetItem(ctx, p.OrganizationID, r.PathValue("id"))
	if err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to load inventory item")
	}
	if item == nil {
		return apperr.NotFound("Inventory item not found")
	}

	txs, err := h.Inventory.ItemTransactions(ctx, p.OrganizationID, item.ID, 0)
	if err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to load inventory item")
	}

	recent := txs[:min(recentTransactions, len(txs))]
	jsonResponse(w, http.StatusOK, itemDetail{
		StockedItem:        ledger.Stock(*item, txs),
		RecentTransactions: recent,
	})
	return nil
}

// Create handles POST /api/inventory.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	req := bodyFrom[createItemRequest](r)
	ctx := r.Context()

	if err := h.checkCategory(ctx, p.OrganizationID, req.CategoryID, http.StatusInternalServerError); err != nil {
		return err
	}

	item := &model.InventoryItem{
		OrganizationID: p.OrganizationID,
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Description:    req.Description,
		SKU:            req.SKU,
		Barcode:        req.Barcode,
		UnitType:       req.UnitType,
		MinimumStock:   req.MinimumStock,
		Notes:          req.Notes,
	}
	if err := h.Inventory.CreateItem(ctx, item); err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to create inventory item")
	}

	// Reload to pick up the category name.
	if created, err := h.Inventory.GetItem(ctx, p.OrganizationID, item.ID); err == nil && created != nil {
		item = created
	}

	slog.Info("inventory item created", "user", p.Email, "item", item.Name)
	jsonResponse(w, http.StatusCreated, ledger.Stock(*item, nil))
	return nil
}

// Update handles PUT /api/inventory/{id}.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	req := bodyFrom[updateItemRequest](r)
	ctx := r.Context()

	item, err := h.Inventory.GetItem(ctx, p.OrganizationID, r.PathValue("id"))
	if err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to update inventory item")
	}
	if item == nil {
		return apperr.NotFound("Inventory item not found")
	}

	if req.CategoryID != nil && *req.CategoryID != item.CategoryID {
		if err := h.checkCategory(ctx, p.OrganizationID, *req.CategoryID, http.StatusBadRequest); err != nil {
			return err
		}
	}

	setIfPresent(&item.CategoryID, req.CategoryID)
	setIfPresent(&item.Name, req.Name)
	setIfPresent(&item.Description, req.Description)
	setIfPresent(&item.SKU, req.SKU)
	setIfPresent(&item.Barcode, req.Barcode)
	setIfPresent(&item.UnitType, req.UnitType)
	setIfPresent(&item.MinimumStock, req.MinimumStock)
	setIfPresent(&item.Notes, req.Notes)

	ok, err := h.Inventory.UpdateItem(ctx, item)
	if err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to update inventory item")
	}
	if !ok {
		return apperr.NotFound("Inventory item not found")
	}

	if updated, err := h.Inventory.GetItem(ctx, p.OrganizationID, item.ID); err == nil && updated != nil {
		item = updated
	}

	slog.Info("inventory item updated", "user", p.Email, "item", item.Name)
	jsonResponse(w, http.StatusOK, item)
	return nil
}

// ListCategories handles GET /api/inventory/categories.
func (h *InventoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}

	categories, err := h.Inventory.ListCategories(r.Context(), p.OrganizationID)
	if err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to list categories")
	}
	if categories == nil {
		categories = []model.InventoryCategory{}
	}
	jsonResponse(w, http.StatusOK, categories)
	return nil
}

// CreateCategory handles POST /api/inventory/categories.
func (h *InventoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	req := bodyFrom[createCategoryRequest](r)

	c := &model.InventoryCategory{
		OrganizationID: p.OrganizationID,
		Name:           req.Name,
		Description:    req.Description,
	}
	if err := h.Inventory.CreateCategory(r.Context(), c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return apperr.Conflict("A category with this name already exists")
		}
		return apperr.Store(err, http.StatusBadRequest, "Failed to create category")
	}

	slog.Info("inventory category created", "user", p.Email, "category", c.Name)
	jsonResponse(w, http.StatusCreated, c)
	return nil
}

// RecordTransaction handles POST /api/inventory/transaction.
func (h *InventoryHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	req := bodyFrom[transactionRequest](r)
	ctx := r.Context()

	item, err := h.Inventory.GetItem(ctx, p.OrganizationID, req.ItemID)
	if err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to record transaction")
	}
	if item == nil {
		return apperr.NotFound("Inventory item not found")
	}

	// Unrecognized types are stored as given and contribute nothing to stock.
	transactionType, known := ledger.Normalize(req.TransactionType)
	tx := &model.InventoryTransaction{
		OrganizationID:  p.OrganizationID,
		ItemID:          item.ID,
		TransactionType: transactionType,
		Quantity:        req.Quantity,
		Notes:           req.Notes,
		UserID:          p.ID,
	}
	if req.TransactionDate != nil {
		tx.TransactionDate = *req.TransactionDate
	}
	if err := h.Inventory.RecordTransaction(ctx, tx); err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to record transaction")
	}
	if known {
		h.Metrics.TransactionRecorded(transactionType)
	} else {
		h.Metrics.TransactionRecorded("other")
	}

	txs, err := h.Inventory.ItemTransactions(ctx, p.OrganizationID, item.ID, 0)
	if err != nil {
		// The entry is stored; only the follow-up stock read failed.
		slog.Error("failed to compute stock after transaction", "item", item.ID, "error", err)
		jsonResponse(w, http.StatusCreated, tx)
		return nil
	}
	stocked := ledger.Stock(*item, txs)

	slog.Info("inventory transaction recorded",
		"user", p.Email,
		"item", item.Name,
		"type", transactionType,
		"quantity", tx.Quantity,
		"current_stock", stocked.CurrentStock,
	)
	if stocked.CurrentStock < 0 {
		slog.Warn("negative stock", "organization", p.OrganizationID, "item", item.ID, "current_stock", stocked.CurrentStock)
	}

	h.publish(ctx, events.TransactionRecorded, transactionResponse{InventoryTransaction: *tx, CurrentStock: stocked.CurrentStock})
	if stocked.LowStock {
		st := ledger.Evaluate(item.MinimumStock, stocked.CurrentStock)
		h.publish(ctx, events.LowStock, []model.LowStockAlert{{
			InventoryItem: *item,
			CurrentStock:  st.CurrentStock,
			Shortage:      st.Shortage,
		}})
	}

	jsonResponse(w, http.StatusCreated, transactionResponse{InventoryTransaction: *tx, CurrentStock: stocked.CurrentStock})
	return nil
}

// ItemTransactions handles GET /api/inventory/{id}/transactions.
func (h *InventoryHandler) ItemTransactions(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}
	ctx := r.Context()

	item, err := h.Inventory.GetItem(ctx, p.OrganizationID, r.PathValue("id"))
	if err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to load transactions")
	}
	if item == nil {
		return apperr.NotFound("Inventory item not found")
	}

	txs, err := h.Inventory.ItemTransactions(ctx, p.OrganizationID, item.ID, 0)
	if err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to load transactions")
	}
	if txs == nil {
		txs = []model.InventoryTransaction{}
	}
	jsonResponse(w, http.StatusOK, txs)
	return nil
}

// LowStockAlerts handles GET /api/inventory/alerts/low-stock.
func (h *InventoryHandler) LowStockAlerts(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}

	alerts, err := store.LowStockAlerts(r.Context(), h.Inventory, p.OrganizationID)
	if err != nil {
		return apperr.Store(err, http.StatusBadRequest, "Failed to load low stock alerts")
	}
	jsonResponse(w, http.StatusOK, alerts)
	return nil
}

// Export handles GET /api/inventory/export.
func (h *InventoryHandler) Export(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}

	items, err := store.StockedItems(r.Context(), h.Inventory, p.OrganizationID, store.ItemFilter{})
	if err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to export inventory")
	}

	data, err := export.StockWorkbook(items)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("inventory-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	return nil
}

// UploadImage handles PUT /api/inventory/{id}/image.
func (h *InventoryHandler) UploadImage(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}

	// Leave headroom for the multipart envelope.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		return apperr.Validation("file too large or invalid multipart form")
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		return apperr.Validation("image file required")
	}
	defer file.Close()

	photo, err := imaging.Normalize(file)
	if errors.Is(err, imaging.ErrUnsupportedFormat) {
		return apperr.Validation("image must be JPEG, PNG, or WebP")
	}
	if err != nil {
		return apperr.Validation("invalid image")
	}

	ok, err := h.Inventory.SetItemImage(r.Context(), p.OrganizationID, r.PathValue("id"), photo.Data, photo.MIME)
	if err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to save image")
	}
	if !ok {
		return apperr.NotFound("Inventory item not found")
	}

	jsonResponse(w, http.StatusOK, map[string]any{"message": "image uploaded", "width": photo.Width, "height": photo.Height})
	return nil
}

// GetImage handles GET /api/inventory/{id}/image.
func (h *InventoryHandler) GetImage(w http.ResponseWriter, r *http.Request) error {
	p, err := principal(r)
	if err != nil {
		return err
	}

	data, mime, err := h.Inventory.GetItemImage(r.Context(), p.OrganizationID, r.PathValue("id"))
	if err != nil {
		return apperr.Store(err, http.StatusInternalServerError, "Failed to load image")
	}
	if data == nil {
		return apperr.NotFound("no image")
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = w.Write(data)
	return nil
}

// checkCategory rejects category ids that do not belong to the organization.
func (h *InventoryHandler) checkCategory(ctx context.Context, orgID, categoryID string, storeStatus int) error {
	c, err := h.Inventory.GetCategory(ctx, orgID, categoryID)
	if err != nil {
		return apperr.Store(err, storeStatus, "Failed to verify category")
	}
	if c == nil {
		return apperr.Validation("Unknown category")
	}
	return nil
}

// publish sends an event. Broker failures are logged and never fail the request.
func (h *InventoryHandler) publish(ctx context.Context, eventType string, payload any) {
	if h.Events == nil {
		return
	}
	if err := h.Events.Publish(ctx, eventType, payload); err != nil {
		slog.Warn("failed to publish event", "type", eventType, "error", err)
	}
}
