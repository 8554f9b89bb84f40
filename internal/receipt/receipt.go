// Package receipt renders order receipts as PDF documents.
package receipt

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"cafe-frontdesk/internal/models"

	"github.com/go-pdf/fpdf"
)

// RowsPerPage is how many item rows fit on one page of the items table.
const RowsPerPage = 20

const (
	shopName = "Cafe Front Desk"
	currency = "INR"
)

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Item", 80, "L"},
	{"Qty", 20, "C"},
	{"Price", 35, "R"},
	{"Subtotal", 35, "R"},
}

// Render writes a receipt for o and returns the number of pages produced:
// one or more pages of items followed by a summary page.
func Render(w io.Writer, o models.Order) (int, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Receipt for order #%d", o.ID), false)
	pdf.SetAuthor(shopName, false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	chunks := chunkItems(o.Items, RowsPerPage)
	for i, chunk := range chunks {
		pdf.AddPage()
		header(pdf, tr, o, i+1, len(chunks))
		if i == 0 {
			metadata(pdf, tr, o)
		}
		itemsTable(pdf, tr, chunk)
	}

	pdf.AddPage()
	header(pdf, tr, o, 0, 0)
	summary(pdf, tr, o)

	if err := pdf.Output(w); err != nil {
		return 0, fmt.Errorf("receipt.Render: %w", err)
	}
	return pdf.PageNo(), nil
}

// Bytes is Render into memory, for attachments.
func Bytes(o models.Order) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := Render(&buf, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename is the download name for an order's receipt.
func Filename(o models.Order) string {
	return fmt.Sprintf("receipt-order-%d.pdf", o.ID)
}

// chunkItems always yields at least one chunk so an empty order still gets an
// (empty) items page.
func chunkItems(items []models.OrderItem, size int) [][]models.OrderItem {
	if len(items) == 0 {
		return [][]models.OrderItem{nil}
	}
	var out [][]models.OrderItem
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}

func header(pdf *fpdf.Fpdf, tr func(string) string, o models.Order, page, pages int) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(shopName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	label := fmt.Sprintf("Receipt - Order #%d", o.ID)
	if pages > 1 {
		label += fmt.Sprintf(" (items page %d of %d)", page, pages)
	}
	pdf.CellFormat(0, 7, tr(label), "B", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func metadata(pdf *fpdf.Fpdf, tr func(string) string, o models.Order) {
	rows := [][2]string{
		{"Customer", o.CustomerName},
		{"Phone", o.CustomerPhone},
		{"Email", deref(o.CustomerEmail, "-")},
		{"Order date", formatTime(o.OrderDate)},
	}
	if o.OrderInstructions != nil {
		rows = append(rows, [2]string{"Instructions", *o.OrderInstructions})
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(35, 6, tr(r[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr(r[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func itemsTable(pdf *fpdf.Fpdf, tr func(string) string, items []models.OrderItem) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for _, col := range columns {
		pdf.CellFormat(col.width, 8, col.title, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range items {
		name := it.ItemName
		if it.SpecialInstructions != nil {
			name += " (" + *it.SpecialInstructions + ")"
		}
		cells := []string{
			truncate(name, 48),
			fmt.Sprintf("%d", it.Quantity),
			it.Price.StringFixed(2),
			it.Subtotal.StringFixed(2),
		}
		for i, col := range columns {
			pdf.CellFormat(col.width, 7, tr(cells[i]), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func summary(pdf *fpdf.Fpdf, tr func(string) string, o models.Order) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)

	method := "-"
	if o.PaymentMethod != nil {
		method = strings.ToUpper(string(*o.PaymentMethod))
	}
	rows := [][2]string{
		{"Items", fmt.Sprintf("%d", len(o.Items))},
		{"Total", fmt.Sprintf("%s %s", currency, o.TotalAmount.StringFixed(2))},
		{"Payment status", string(o.PaymentStatus)},
		{"Payment method", method},
		{"Order status", string(o.OrderStatus)},
	}
	if o.CancellationReason != nil {
		rows = append(rows, [2]string{"Cancelled", *o.CancellationReason})
	}
	for _, r := range rows {
		pdf.CellFormat(50, 8, tr(r[0]), "B", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, tr(r[1]), "B", 1, "R", false, 0, "")
	}
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Thank you for visiting!", "", 1, "C", false, 0, "")
}

func deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006 15:04")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
