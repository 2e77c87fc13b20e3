package testutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"storepulse/internal/domain"
	apperrors "storepulse/internal/errors"
	"storepulse/internal/infrastructure/mysql"
)

// MemStore is an in-memory stand-in for the MySQL repositories and the
// transaction manager. Transactions are serialized and restored from a
// snapshot when fn fails, which is enough to observe atomicity and lost
// updates in service tests.
type MemStore struct {
	mu        sync.RWMutex
	products  map[string]domain.Product
	inventory map[string]domain.InventoryRecord
	sales     []domain.Sale

	// TxErr, when set, is consulted before each transaction attempt.
	TxErr func() error
	txs   int
}

func NewMemStore() *MemStore {
	return &MemStore{
		products:  map[string]domain.Product{},
		inventory: map[string]domain.InventoryRecord{},
	}
}

type memTx struct{}

var errNotSQL = errors.New("memstore: raw SQL is not supported")

func (memTx) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errNotSQL
}

func (memTx) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errNotSQL
}

func (memTx) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func mustTx(tx mysql.DBTX) {
	if _, ok := tx.(memTx); !ok {
		panic("memstore: write outside WithinTx")
	}
}

func (s *MemStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx mysql.DBTX) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.TxErr != nil {
		if err := s.TxErr(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs++

	products := make(map[string]domain.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	inventory := make(map[string]domain.InventoryRecord, len(s.inventory))
	for k, v := range s.inventory {
		inventory[k] = v
	}
	sales := append([]domain.Sale(nil), s.sales...)

	if err := fn(ctx, memTx{}); err != nil {
		s.products, s.inventory, s.sales = products, inventory, sales
		return err
	}
	return nil
}

// Transactions reports how many transactions were started.
func (s *MemStore) Transactions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.txs
}

// Seed stores a product with an inventory record holding stock units.
func (s *MemStore) Seed(p domain.Product, stock, reorderLevel int) domain.InventoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
		p.UpdatedAt = p.CreatedAt
	}
	s.products[p.ID] = p

	rec := domain.NewInventoryRecord("inv-"+p.ID, p.ID)
	rec.CurrentStock = stock
	rec.ReorderLevel = reorderLevel
	rec.CreatedAt = p.CreatedAt
	rec.UpdatedAt = p.CreatedAt
	rec.Recompute()
	s.inventory[p.ID] = rec
	return rec
}

// SeedSale appends a sale as if it had been committed.
func (s *MemStore) SeedSale(sale domain.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, sale)
}

func (s *MemStore) Record(productID string) (domain.InventoryRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.inventory[productID]
	return rec, ok
}

func (s *MemStore) SaleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sales)
}

func (s *MemStore) Products() *MemProducts   { return &MemProducts{s} }
func (s *MemStore) Inventory() *MemInventory { return &MemInventory{s} }
func (s *MemStore) Sales() *MemSales         { return &MemSales{s} }

type MemProducts struct{ s *MemStore }

func (r *MemProducts) Insert(ctx context.Context, tx mysql.DBTX, p domain.Product) error {
	mustTx(tx)
	for _, existing := range r.s.products {
		if existing.SKU == p.SKU {
			return apperrors.NewConflictError(fmt.Sprintf("product with sku %s already exists", p.SKU))
		}
	}
	r.s.products[p.ID] = p
	return nil
}

func (r *MemProducts) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product with id %s not found", id))
	}
	return &p, nil
}

func (r *MemProducts) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var all []domain.Product
	for _, p := range r.s.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	return page(all, f.Offset, f.Limit), len(all), nil
}

func (r *MemProducts) Deactivate(ctx context.Context, tx mysql.DBTX, id string) error {
	mustTx(tx)
	p, ok := r.s.products[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("product with id %s not found", id))
	}
	p.IsActive = false
	r.s.products[id] = p
	return nil
}

type MemInventory struct{ s *MemStore }

func (r *MemInventory) Insert(ctx context.Context, tx mysql.DBTX, rec domain.InventoryRecord) error {
	mustTx(tx)
	if _, ok := r.s.inventory[rec.ProductID]; ok {
		return apperrors.NewConflictError(fmt.Sprintf("inventory for product %s already exists", rec.ProductID))
	}
	r.s.inventory[rec.ProductID] = rec
	return nil
}

func (r *MemInventory) FindByProductIDForUpdate(ctx context.Context, tx mysql.DBTX, productID string) (*domain.InventoryRecord, error) {
	mustTx(tx)
	rec, ok := r.s.inventory[productID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("inventory for product %s not found", productID))
	}
	return &rec, nil
}

func (r *MemInventory) Update(ctx context.Context, tx mysql.DBTX, rec domain.InventoryRecord) error {
	mustTx(tx)
	if _, ok := r.s.inventory[rec.ProductID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("inventory %s not found", rec.ID))
	}
	if rec.CurrentStock < 0 || rec.ReservedStock < 0 {
		return fmt.Errorf("check constraint violated for inventory %s", rec.ID)
	}
	r.s.inventory[rec.ProductID] = rec
	return nil
}

func (r *MemInventory) FindByProductID(ctx context.Context, productID string) (*domain.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.inventory[productID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("inventory for product %s not found", productID))
	}
	item := r.item(rec)
	return &item, nil
}

func (r *MemInventory) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	return r.list(func(domain.InventoryRecord) bool { return true }), nil
}

func (r *MemInventory) ListLowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	return r.list(func(rec domain.InventoryRecord) bool { return rec.IsLowStock }), nil
}

func (r *MemInventory) list(keep func(domain.InventoryRecord) bool) []domain.InventoryItem {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := []domain.InventoryItem{}
	for _, rec := range r.s.inventory {
		if keep(rec) {
			items = append(items, r.item(rec))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Record.ProductID < items[j].Record.ProductID })
	return items
}

func (r *MemInventory) item(rec domain.InventoryRecord) domain.InventoryItem {
	p := r.s.products[rec.ProductID]
	return domain.InventoryItem{Record: rec, SKU: p.SKU, ProductName: p.Name, Price: p.Price}
}

type MemSales struct{ s *MemStore }

func (r *MemSales) Insert(ctx context.Context, tx mysql.DBTX, sale domain.Sale) error {
	mustTx(tx)
	if _, ok := r.s.products[sale.ProductID]; !ok {
		return fmt.Errorf("foreign key violated: product %s", sale.ProductID)
	}
	r.s.sales = append(r.s.sales, sale)
	return nil
}

func (r *MemSales) FindByID(ctx context.Context, id string) (*domain.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, sale := range r.s.sales {
		if sale.ID == id {
			out := r.withName(sale)
			return &out, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("sale with id %s not found", id))
}

func (r *MemSales) List(ctx context.Context, offset, limit int) ([]domain.Sale, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.named(r.s.sales)
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].SaleDate.Equal(all[j].SaleDate) {
			return all[i].SaleDate.After(all[j].SaleDate)
		}
		return all[i].ID > all[j].ID
	})
	return page(all, offset, limit), len(all), nil
}

func (r *MemSales) FindBetween(ctx context.Context, start, end time.Time) ([]domain.Sale, error) {
	return r.between(start, end, true), nil
}

func (r *MemSales) SumRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, sale := range r.between(from, to, false) {
		total = total.Add(sale.TotalAmount)
	}
	return total, nil
}

func (r *MemSales) DailyTotals(ctx context.Context, from, to time.Time) ([]domain.DailySales, error) {
	byDate := map[string]*domain.DailySales{}
	var dates []string
	for _, sale := range r.between(from, to, true) {
		d := sale.SaleDate.UTC().Format("2006-01-02")
		row, ok := byDate[d]
		if !ok {
			row = &domain.DailySales{Date: d, Revenue: decimal.Zero}
			byDate[d] = row
			dates = append(dates, d)
		}
		row.Sales++
		row.Revenue = row.Revenue.Add(sale.TotalAmount)
	}
	sort.Strings(dates)

	out := make([]domain.DailySales, 0, len(dates))
	for _, d := range dates {
		out = append(out, *byDate[d])
	}
	return out, nil
}

func (r *MemSales) RevenueByChannel(ctx context.Context, from, to time.Time) ([]domain.ChannelRevenue, error) {
	totals := map[string]decimal.Decimal{}
	var channels []string
	for _, sale := range r.between(from, to, true) {
		ch := "unknown"
		if sale.Channel != nil && *sale.Channel != "" {
			ch = *sale.Channel
		}
		if _, ok := totals[ch]; !ok {
			channels = append(channels, ch)
			totals[ch] = decimal.Zero
		}
		totals[ch] = totals[ch].Add(sale.TotalAmount)
	}

	out := make([]domain.ChannelRevenue, 0, len(channels))
	for _, ch := range channels {
		out = append(out, domain.ChannelRevenue{Channel: ch, Revenue: totals[ch]})
	}
	return out, nil
}

func (r *MemSales) FindByCustomerEmail(ctx context.Context, email string) ([]domain.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.Sale{}
	for _, sale := range r.s.sales {
		if sale.CustomerEmail != nil && strings.EqualFold(*sale.CustomerEmail, email) {
			out = append(out, r.withName(sale))
		}
	}
	sortByDate(out)
	return out, nil
}

func (r *MemSales) AnonymizeCustomer(ctx context.Context, tx mysql.DBTX, email string) (int, error) {
	mustTx(tx)
	n := 0
	for i, sale := range r.s.sales {
		if sale.CustomerEmail != nil && strings.EqualFold(*sale.CustomerEmail, email) {
			r.s.sales[i].CustomerEmail = nil
			r.s.sales[i].CustomerID = nil
			n++
		}
	}
	return n, nil
}

// between returns sales in [from, to] (or [from, to) when inclusive is
// false), ordered by sale date then id.
func (r *MemSales) between(from, to time.Time, inclusive bool) []domain.Sale {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Sale
	for _, sale := range r.s.sales {
		if sale.SaleDate.Before(from) {
			continue
		}
		if sale.SaleDate.After(to) || (!inclusive && sale.SaleDate.Equal(to)) {
			continue
		}
		out = append(out, r.withName(sale))
	}
	sortByDate(out)
	return out
}

func (r *MemSales) named(sales []domain.Sale) []domain.Sale {
	out := make([]domain.Sale, 0, len(sales))
	for _, sale := range sales {
		out = append(out, r.withName(sale))
	}
	return out
}

func (r *MemSales) withName(sale domain.Sale) domain.Sale {
	sale.ProductName = r.s.products[sale.ProductID].Name
	return sale
}

func sortByDate(sales []domain.Sale) {
	sort.SliceStable(sales, func(i, j int) bool {
		if !sales[i].SaleDate.Equal(sales[j].SaleDate) {
			return sales[i].SaleDate.Before(sales[j].SaleDate)
		}
		return sales[i].ID < sales[j].ID
	})
}

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
