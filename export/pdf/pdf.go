// Package pdf renders bills and statistics reports as PDF documents.
package pdf

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/xraph/khata/plugin"
	"github.com/xraph/khata/report"
)

// Format is the export format name this package registers.
const Format = "pdf"

// ContentType is the MIME type of the rendered documents.
const ContentType = "application/pdf"

// Compile-time interface checks.
var (
	_ plugin.BillFormatter       = (*Formatter)(nil)
	_ plugin.StatisticsFormatter = (*Formatter)(nil)
)

const (
	font       = "Helvetica"
	lineHeight = 7.0
)

// Formatter writes A4 PDF documents.
type Formatter struct {
	// Title heads every document. Defaults to "Khata".
	Title string
}

// New returns a PDF formatter.
func New() *Formatter { return &Formatter{Title: "Khata"} }

func (f *Formatter) Name() string        { return "khata-pdf" }
func (f *Formatter) Format() string      { return Format }
func (f *Formatter) ContentType() string { return ContentType }

// RenderBill writes one bill with its items and totals.
func (f *Formatter) RenderBill(_ context.Context, doc *report.BillDocument, w io.Writer) error {
	b := doc.Bill
	pdf := f.newDocument("Bill " + b.Number)

	shopName := ""
	if doc.Shop != nil {
		shopName = doc.Shop.Name
	}
	field(pdf, "Bill Number", b.Number)
	field(pdf, "Bill Date", b.BillDate.String())
	field(pdf, "Shop", shopName)
	if b.Notes != "" {
		field(pdf, "Notes", b.Notes)
	}
	pdf.Ln(lineHeight)

	cols := []float64{12, 22, 34, 34, 44, 44}
	table(pdf, cols, []string{"#", "Bags", "Weight (kg)", "Rate / kg", "Total Price", "Gunny Cost"}, true)
	for _, it := range b.Items {
		table(pdf, cols, []string{
			strconv.Itoa(it.Line),
			strconv.Itoa(it.NumberOfBags),
			it.WeightKg.String(),
			it.RatePerKg.String(),
			it.TotalPrice.String(),
			it.GunnyCost.String(),
		}, false)
	}
	pdf.Ln(lineHeight)

	field(pdf, "Subtotal", b.Subtotal.String())
	field(pdf, "Gunny Bag Cost", b.GunnyBagCost.String())
	pdf.SetFont(font, "B", 12)
	field(pdf, "Total Amount", b.TotalAmount.String())

	return output(pdf, w)
}

// RenderStatistics writes the range summary, the shops with bills and the
// daily series.
func (f *Formatter) RenderStatistics(_ context.Context, stats *report.Statistics, w io.Writer) error {
	pdf := f.newDocument(fmt.Sprintf("Statistics %s to %s", stats.From, stats.To))

	field(pdf, "Bills", strconv.Itoa(stats.BillCount))
	field(pdf, "Total Amount", stats.TotalAmount.String())
	field(pdf, "Gunny Cost", stats.TotalGunnyCost.String())
	pdf.Ln(lineHeight)

	cols := []float64{90, 30, 50}
	table(pdf, cols, []string{"Shop", "Bills", "Total Amount"}, true)
	for _, st := range stats.ShopsWithBills() {
		table(pdf, cols, []string{st.Shop.Name, strconv.Itoa(st.BillCount), st.TotalAmount.String()}, false)
	}
	pdf.Ln(lineHeight)

	table(pdf, cols, []string{"Date", "Bills", "Amount"}, true)
	for _, d := range stats.Daily {
		if d.BillCount == 0 {
			continue
		}
		table(pdf, cols, []string{d.Date.String(), strconv.Itoa(d.BillCount), d.TotalAmount.String()}, false)
	}

	return output(pdf, w)
}

func (f *Formatter) newDocument(heading string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(heading, true)
	pdf.AddPage()

	title := f.Title
	if title == "" {
		title = "Khata"
	}
	pdf.SetFont(font, "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont(font, "", 12)
	pdf.CellFormat(0, lineHeight, heading, "", 1, "C", false, 0, "")
	pdf.Ln(lineHeight)
	pdf.SetFont(font, "", 10)
	return pdf
}

func field(pdf *fpdf.Fpdf, label, value string) {
	pdf.CellFormat(45, lineHeight, label+":", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, value, "", 1, "L", false, 0, "")
}

func table(pdf *fpdf.Fpdf, widths []float64, cells []string, header bool) {
	style := ""
	if header {
		style = "B"
		pdf.SetFillColor(230, 230, 230)
	}
	pdf.SetFont(font, style, 10)
	for i, c := range cells {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], lineHeight, c, "1", 0, align, header, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(font, "", 10)
}

func output(pdf *fpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return nil
}
