package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storepulse/internal/domain"
	apperrors "storepulse/internal/errors"
	"storepulse/internal/testutil"
)

// Unit Tests

func TestNewMySQLRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestDeref(t *testing.T) {
	assert.True(t, deref(nil).IsZero())

	d := decimal.RequireFromString("4.20")
	assert.True(t, deref(&d).Equal(d))
}

// Integration Tests

func newProduct(id, sku, name, category string) domain.Product {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	return domain.Product{
		ID:        id,
		SKU:       sku,
		Name:      name,
		Price:     decimal.RequireFromString("12.50"),
		Category:  category,
		Tags:      []string{"new"},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func insert(t *testing.T, db *sql.DB, repo *MySQLRepository, p domain.Product) error {
	t.Helper()
	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	if err := repo.Insert(context.Background(), tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

func TestRepository_InsertAndFindByID_AllFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLRepository(db)

	p := newProduct("1f0e2d3c-4b5a-4968-8776-a5b4c3d2e1f0", "MUG-001", "Mug", "kitchen")
	cost := decimal.RequireFromString("4.75")
	brand := "Acme"
	p.CostPrice = &cost
	p.Brand = &brand
	p.Description = "Ceramic mug"
	require.NoError(t, insert(t, db, repo, p))

	found, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "MUG-001", found.SKU)
	assert.Equal(t, "Ceramic mug", found.Description)
	assert.True(t, found.Price.Equal(p.Price))
	require.NotNil(t, found.CostPrice)
	assert.True(t, found.CostPrice.Equal(cost))
	assert.Equal(t, "Acme", *found.Brand)
	assert.Nil(t, found.Subcategory)
	assert.Equal(t, []string{"new"}, found.Tags)
	assert.True(t, found.IsActive)
	assert.Equal(t, p.CreatedAt, found.CreatedAt.UTC())
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	_, err := NewMySQLRepository(db).FindByID(context.Background(), "missing")

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestRepository_Insert_DuplicateSKU(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLRepository(db)
	require.NoError(t, insert(t, db, repo, newProduct("1f0e2d3c-4b5a-4968-8776-a5b4c3d2e1f1", "DUP", "First", "a")))

	err := insert(t, db, repo, newProduct("1f0e2d3c-4b5a-4968-8776-a5b4c3d2e1f2", "DUP", "Second", "a"))

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestRepository_List_FiltersAndPaginates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLRepository(db)
	require.NoError(t, insert(t, db, repo, newProduct("1f0e2d3c-4b5a-4968-8776-a5b4c3d2e1a1", "S1", "Cup", "kitchen")))
	require.NoError(t, insert(t, db, repo, newProduct("1f0e2d3c-4b5a-4968-8776-a5b4c3d2e1a2", "S2", "Bowl", "kitchen")))
	inactive := newProduct("1f0e2d3c-4b5a-4968-8776-a5b4c3d2e1a3", "S3", "Apron", "kitchen")
	inactive.IsActive = false
	require.NoError(t, insert(t, db, repo, inactive))
	require.NoError(t, insert(t, db, repo, newProduct("1f0e2d3c-4b5a-4968-8776-a5b4c3d2e1a4", "S4", "Lamp", "living")))

	products, total, err := repo.List(context.Background(), domain.ProductFilter{Category: "kitchen", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, products, 3)
	assert.Equal(t, "Apron", products[0].Name)
	assert.Equal(t, "Bowl", products[1].Name)

	products, total, err = repo.List(context.Background(), domain.ProductFilter{Category: "kitchen", ActiveOnly: true, Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, products, 1)
	assert.Equal(t, "Cup", products[0].Name)
}

func TestRepository_Deactivate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLRepository(db)
	p := newProduct("1f0e2d3c-4b5a-4968-8776-a5b4c3d2e1b1", "D1", "Old", "misc")
	require.NoError(t, insert(t, db, repo, p))

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.Deactivate(context.Background(), tx, p.ID))
	require.NoError(t, tx.Commit())

	found, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func TestRepository_Deactivate_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	err = NewMySQLRepository(db).Deactivate(context.Background(), tx, "missing")

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
