package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storepulse/internal/dto"
	apperrors "storepulse/internal/errors"
)

func TestStruct_Valid(t *testing.T) {
	req := dto.CreateSaleRequest{
		ProductID: "1b4e28ba-2fa1-11d2-883f-0016d3cca427",
		Quantity:  2,
		UnitPrice: decimal.RequireFromString("9.99"),
	}

	assert.NoError(t, Struct(req))
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	email := "not-an-email"
	req := dto.CreateSaleRequest{
		ProductID:     "abc",
		Quantity:      0,
		UnitPrice:     decimal.RequireFromString("-1"),
		CustomerEmail: &email,
	}

	err := Struct(req)
	require.Error(t, err)

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)

	fields := map[string]string{}
	for _, d := range ve.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "must be a valid UUID", fields["productId"])
	assert.Equal(t, "is required", fields["quantity"])
	assert.Equal(t, "must be greater than or equal to 0", fields["unitPrice"])
	assert.Equal(t, "must be a valid email address", fields["customerEmail"])
}

func TestStruct_OptionalPointersSkippedWhenNil(t *testing.T) {
	req := dto.UpdateInventoryRequest{}
	assert.NoError(t, Struct(req))

	zero := 0
	req.ReorderQuantity = &zero
	err := Struct(req)
	require.Error(t, err)

	ve, _ := apperrors.IsValidationError(err)
	require.Len(t, ve.Details, 1)
	assert.Equal(t, "reorderQuantity", ve.Details[0].Field)
	assert.Equal(t, "must be at least 1", ve.Details[0].Message)
}

func TestStruct_ProductCostPrice(t *testing.T) {
	negative := decimal.RequireFromString("-0.01")
	req := dto.CreateProductRequest{
		SKU:       "SKU-1",
		Name:      "Mug",
		Price:     decimal.RequireFromString("12.50"),
		CostPrice: &negative,
		Category:  "kitchen",
	}

	err := Struct(req)
	require.Error(t, err)
	ve, _ := apperrors.IsValidationError(err)
	require.Len(t, ve.Details, 1)
	assert.Equal(t, "costPrice", ve.Details[0].Field)
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("email", "buyer@example.com", "required,email"))

	err := Var("email", "not-an-email", "required,email")
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	require.Len(t, ve.Details, 1)
	assert.Equal(t, "email", ve.Details[0].Field)
	assert.Equal(t, "must be a valid email address", ve.Details[0].Message)
}

func TestStruct_SaleUnitPriceMustFitMoneyColumn(t *testing.T) {
	tests := []struct {
		name  string
		price string
		want  string
	}{
		{"sub-cent", "10.005", "must have at most 2 decimal places"},
		{"too large", "100000000.00", "must be less than or equal to 99999999.99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(dto.CreateSaleRequest{
				ProductID: "1b4e28ba-2fa1-11d2-883f-0016d3cca427",
				Quantity:  3,
				UnitPrice: decimal.RequireFromString(tt.price),
			})

			ve, ok := apperrors.IsValidationError(err)
			require.True(t, ok)
			require.Len(t, ve.Details, 1)
			assert.Equal(t, "unitPrice", ve.Details[0].Field)
			assert.Equal(t, tt.want, ve.Details[0].Message)
		})
	}

	assert.NoError(t, Struct(dto.CreateSaleRequest{
		ProductID: "1b4e28ba-2fa1-11d2-883f-0016d3cca427",
		Quantity:  1,
		UnitPrice: decimal.RequireFromString("0.29"),
	}))
}
