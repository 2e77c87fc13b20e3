package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int {
	return &i
}

func TestNewInventoryRecord_Defaults(t *testing.T) {
	rec := NewInventoryRecord("inv-1", "p-1")

	assert.Equal(t, 0, rec.CurrentStock)
	assert.Equal(t, DefaultReorderLevel, rec.ReorderLevel)
	assert.Equal(t, DefaultReorderQuantity, rec.ReorderQuantity)
	assert.True(t, rec.IsLowStock)
}

func TestInventoryRecord_AvailableStock(t *testing.T) {
	rec := InventoryRecord{CurrentStock: 20, ReservedStock: 7}
	assert.Equal(t, 13, rec.AvailableStock())
}

func TestInventoryRecord_Recompute(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		reorder  int
		expected bool
	}{
		{name: "above threshold", current: 11, reorder: 10, expected: false},
		{name: "at threshold", current: 10, reorder: 10, expected: true},
		{name: "below threshold", current: 3, reorder: 10, expected: true},
		{name: "zero threshold empty", current: 0, reorder: 0, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := InventoryRecord{CurrentStock: tt.current, ReorderLevel: tt.reorder, IsLowStock: !tt.expected}
			rec.Recompute()
			assert.Equal(t, tt.expected, rec.IsLowStock)
		})
	}
}

func TestInventoryRecord_Apply(t *testing.T) {
	rec := InventoryRecord{CurrentStock: 50, ReorderLevel: 10}
	rec.Recompute()
	assert.False(t, rec.IsLowStock)

	loc := "aisle 4"
	rec.Apply(InventoryPatch{ReorderLevel: intPtr(60), Location: &loc})

	assert.Equal(t, 50, rec.CurrentStock)
	assert.Equal(t, 60, rec.ReorderLevel)
	assert.Equal(t, "aisle 4", *rec.Location)
	assert.True(t, rec.IsLowStock)
}

func TestStockChange_CrossedIntoLowStock(t *testing.T) {
	notLow := InventoryRecord{CurrentStock: 15, ReorderLevel: 10}
	low := InventoryRecord{CurrentStock: 9, ReorderLevel: 10, IsLowStock: true}
	lower := InventoryRecord{CurrentStock: 4, ReorderLevel: 10, IsLowStock: true}

	assert.True(t, StockChange{Before: notLow, After: low}.CrossedIntoLowStock())
	assert.False(t, StockChange{Before: low, After: lower}.CrossedIntoLowStock())
	assert.False(t, StockChange{Before: low, After: notLow}.CrossedIntoLowStock())
}
