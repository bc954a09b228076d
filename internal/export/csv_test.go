package export

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"medmarket/internal/domain"
)

func TestUnitPrice(t *testing.T) {
	for _, tc := range []struct {
		total    string
		quantity int
		want     string
	}{
		{"500", 4, "125.00"},
		{"90.00", 500, "0.18"},
		{"10", 3, "3.33"}, // Rounded to cents
		{"99.99", 1, "99.99"},
		{"100", 0, "0.00"}, // Guard against division by zero
	} {
		require.Equal(t, tc.want, UnitPrice(decimal.RequireFromString(tc.total), tc.quantity),
			"%s / %d", tc.total, tc.quantity)
	}
}

func TestOrderCSV(t *testing.T) {
	order := domain.Order{
		OrderNumber:    "ORD-01ARZ3NDEKTSV4RRFFQ69G5FAV",
		VendorName:     "Acme Medical",
		ProductName:    "Nitrile gloves; Face shields",
		Quantity:       4,
		TotalAmount:    decimal.RequireFromString("500"),
		Status:         domain.OrderStatusShipped,
		TrackingNumber: "1Z999AA10123456784",
		CreatedAt:      time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC).UnixMilli(),
	}
	out, err := OrderCSV(order)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, strings.Join(orderHeader, ","), lines[0])
	require.Contains(t, lines[1], "ORD-01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.Contains(t, lines[1], "2025-03-14")
	require.Contains(t, lines[1], "125.00") // Unit price derived from total / quantity
	require.Contains(t, lines[1], "500.00")
	require.Contains(t, lines[1], "shipped")
}

func TestOrdersCSVOneRowPerOrder(t *testing.T) {
	orders := []domain.Order{
		{OrderNumber: "ORD-A", Quantity: 1, TotalAmount: decimal.RequireFromString("10")},
		{OrderNumber: "ORD-B", Quantity: 2, TotalAmount: decimal.RequireFromString("30")},
	}
	out, err := OrdersCSV(orders)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[1], "ORD-A")
	require.Contains(t, lines[2], "ORD-B")
	require.Contains(t, lines[2], "15.00") // 30 / 2
}

func TestRFQCSVWithQuotations(t *testing.T) {
	rfq := domain.RFQ{
		Reference: "RFQ-01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Items: []domain.RFQItem{
			{ProductName: "Syringes", Quantity: 1000},
			{ProductName: "Gauze", Quantity: 200},
		},
		Quotations: []domain.Quotation{
			{VendorName: "Acme Medical", Price: decimal.RequireFromString("0.15"), PaymentTerms: "Net 30", DeliveryTime: "1 week"},
			{VendorName: "Globex Supplies", Price: decimal.RequireFromString("0.12"), PaymentTerms: "Net 60", DeliveryTime: "3 weeks"},
		},
	}
	out, err := RFQCSV(rfq)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5, "header plus items x quotations")
	require.Equal(t, strings.Join(rfqHeader, ","), lines[0])
	require.Contains(t, lines[1], "Acme Medical")
	require.Contains(t, lines[2], "Globex Supplies")
	require.Contains(t, out, "0.15")
	require.Contains(t, out, "Net 60")
	require.NotContains(t, out, "Pending")
}

func TestRFQCSVWithoutQuotations(t *testing.T) {
	rfq := domain.RFQ{
		Reference: "RFQ-EMPTY",
		Items:     []domain.RFQItem{{ProductName: "Masks", Quantity: 100}},
	}
	out, err := RFQCSV(rfq)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], "Pending")
	require.True(t, strings.HasSuffix(lines[1], ",,,"), "price and terms columns stay empty")
}

func TestCSVQuoting(t *testing.T) {
	order := domain.Order{
		OrderNumber: "ORD-X",
		ProductName: `Gloves, nitrile "powder-free"`,
		Quantity:    1,
		TotalAmount: decimal.RequireFromString("5"),
	}
	out, err := OrderCSV(order)
	require.NoError(t, err)
	// encoding/csv quotes fields containing commas or quotes
	require.Contains(t, out, `"Gloves, nitrile ""powder-free"""`)
}
