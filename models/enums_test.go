package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEnumText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pending", "PENDING"},
		{" po sent ", "PO_SENT"},
		{"Yard-Located", "YARD_LOCATED"},
		{"30 days", "30_DAYS"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEnumText(tt.in))
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("po confirmed")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPOConfirmed, status)

	_, err = ParseOrderStatus("teleported")
	require.Error(t, err)
	var enumErr *EnumError
	require.ErrorAs(t, err, &enumErr)
	assert.Equal(t, "status", enumErr.Field)
	assert.Equal(t, "teleported", enumErr.Value)
}

func TestParseAddressTypeAndWarranty(t *testing.T) {
	addressType, err := ParseAddressType("commercial")
	require.NoError(t, err)
	assert.Equal(t, AddressTypeCommercial, addressType)

	warranty, err := ParseWarranty("6 months")
	require.NoError(t, err)
	assert.Equal(t, Warranty6Months, warranty)

	_, err = ParseWarranty("forever")
	assert.Error(t, err)
}

func TestParseProblemTypeAndRequest(t *testing.T) {
	pt, err := ParseProblemType("wrong product")
	require.NoError(t, err)
	assert.Equal(t, ProblemTypeWrongProduct, pt)

	req, err := ParseCustomerRequest("REPLACEMENT")
	require.NoError(t, err)
	assert.Equal(t, CustomerRequestReplacement, req)

	req, err = ParseCustomerRequest("refund")
	require.NoError(t, err)
	assert.Equal(t, CustomerRequestRefund, req)

	_, err = ParseCustomerRequest("store credit")
	assert.Error(t, err)
}

func TestReplacementRecomputeTotalBuy(t *testing.T) {
	r := ProblematicPartReplacement{
		ReplacementPrice: decimal.RequireFromString("250.00"),
		Taxes:            decimal.RequireFromString("20.50"),
		Handling:         decimal.RequireFromString("15"),
		CorePrice:        decimal.RequireFromString("50"),
		YardCost:         decimal.RequireFromString("120.25"),
	}
	r.RecomputeTotalBuy()
	assert.True(t, decimal.RequireFromString("455.75").Equal(r.TotalBuy), "got %s", r.TotalBuy)
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "customers", Customer{}.TableName())
	assert.Equal(t, "orders", Order{}.TableName())
	assert.Equal(t, "order_items", OrderItem{}.TableName())
	assert.Equal(t, "yard_histories", YardHistory{}.TableName())
	assert.Equal(t, "problematic_part_replacements", ProblematicPartReplacement{}.TableName())
	assert.Len(t, All(), 18)
}
