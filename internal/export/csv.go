// Package export builds the CSV documents offered for download from the
// orders and RFQ screens.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/shopspring/decimal" // Exact money math

	"medmarket/internal/domain"
)

// Column headers are fixed; consumers import these files into spreadsheets.
var (
	orderHeader = []string{"Order Number", "Date", "Vendor", "Product", "Quantity", "Unit Price", "Total Amount", "Status", "Tracking Number"}
	rfqHeader   = []string{"RFQ Reference", "Date", "Product", "Quantity", "Vendor", "Price", "Payment Terms", "Delivery Time"}
)

// UnitPrice derives the per-unit price from the stored total. The unit price
// is never stored; both order exports must round it identically, so this is
// the only place the division happens.
func UnitPrice(total decimal.Decimal, quantity int) string {
	if quantity <= 0 {
		return decimal.Zero.StringFixed(2)
	}
	return total.Div(decimal.NewFromInt(int64(quantity))).StringFixed(2)
}

// formatDate renders a millisecond timestamp as a calendar date.
func formatDate(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}

func orderRow(o domain.Order) []string {
	return []string{
		o.OrderNumber,
		formatDate(o.CreatedAt),
		o.VendorName,
		o.ProductName,
		strconv.Itoa(o.Quantity),
		UnitPrice(o.TotalAmount, o.Quantity),
		o.TotalAmount.StringFixed(2),
		string(o.Status),
		o.TrackingNumber,
	}
}

// OrderCSV renders a single order as a CSV document.
func OrderCSV(o domain.Order) (string, error) {
	return writeCSV(orderHeader, [][]string{orderRow(o)})
}

// OrdersCSV renders many orders as one CSV document, one row per order.
func OrdersCSV(orders []domain.Order) (string, error) {
	rows := make([][]string, len(orders))
	for i, o := range orders {
		rows[i] = orderRow(o)
	}
	return writeCSV(orderHeader, rows)
}

// RFQCSV renders an RFQ with its quotations. Each item appears once per
// quotation; an RFQ with no quotations still emits one row per item with
// "Pending" in the vendor column and the price/terms columns empty.
func RFQCSV(rfq domain.RFQ) (string, error) {
	var rows [][]string
	for _, item := range rfq.Items {
		if len(rfq.Quotations) == 0 {
			rows = append(rows, []string{
				rfq.Reference,
				formatDate(rfq.CreatedAt),
				item.ProductName,
				strconv.Itoa(item.Quantity),
				"Pending", // No vendor has quoted yet
				"", "", "",
			})
			continue
		}
		for _, q := range rfq.Quotations {
			rows = append(rows, []string{
				rfq.Reference,
				formatDate(rfq.CreatedAt),
				item.ProductName,
				strconv.Itoa(item.Quantity),
				q.VendorName,
				q.Price.StringFixed(2),
				q.PaymentTerms,
				q.DeliveryTime,
			})
		}
	}
	return writeCSV(rfqHeader, rows)
}

// writeCSV renders header + rows with standard quoting.
func writeCSV(header []string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
