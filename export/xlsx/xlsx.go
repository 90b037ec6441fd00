// Package xlsx renders bills and statistics reports as Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/xraph/khata/plugin"
	"github.com/xraph/khata/report"
	"github.com/xraph/khata/types"
)

// Format is the export format name this package registers.
const Format = "xlsx"

// ContentType is the MIME type of the rendered workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Compile-time interface checks.
var (
	_ plugin.BillFormatter       = (*Formatter)(nil)
	_ plugin.StatisticsFormatter = (*Formatter)(nil)
)

// Formatter writes .xlsx documents.
type Formatter struct{}

// New returns an xlsx formatter.
func New() *Formatter { return &Formatter{} }

func (f *Formatter) Name() string        { return "khata-xlsx" }
func (f *Formatter) Format() string      { return Format }
func (f *Formatter) ContentType() string { return ContentType }

// RenderBill writes one bill with its items and totals.
func (f *Formatter) RenderBill(_ context.Context, doc *report.BillDocument, w io.Writer) error {
	b := doc.Bill
	wb, err := newWorkbook("Bill")
	if err != nil {
		return err
	}
	defer wb.close()

	shopName := ""
	if doc.Shop != nil {
		shopName = doc.Shop.Name
	}
	wb.row("Bill Number", b.Number)
	wb.row("Bill Date", b.BillDate.String())
	wb.row("Shop", shopName)
	if b.Notes != "" {
		wb.row("Notes", b.Notes)
	}
	wb.skip()

	wb.header("#", "Bags", "Weight (kg)", "Rate / kg", "Total Price", "Gunny Cost")
	for _, it := range b.Items {
		wb.row(it.Line, it.NumberOfBags, it.WeightKg.InexactFloat64(),
			amount(it.RatePerKg), amount(it.TotalPrice), amount(it.GunnyCost))
	}
	wb.skip()

	wb.row("Subtotal", amount(b.Subtotal))
	wb.row("Gunny Bag Cost", amount(b.GunnyBagCost))
	wb.total("Total Amount", amount(b.TotalAmount))

	return wb.write(w)
}

// RenderStatistics writes the summary, the per-shop breakdown and the daily
// series on separate sheets.
func (f *Formatter) RenderStatistics(_ context.Context, stats *report.Statistics, w io.Writer) error {
	wb, err := newWorkbook("Summary")
	if err != nil {
		return err
	}
	defer wb.close()

	wb.row("From", stats.From.String())
	wb.row("To", stats.To.String())
	wb.row("Bills", stats.BillCount)
	wb.row("Gunny Cost", amount(stats.TotalGunnyCost))
	wb.total("Total Amount", amount(stats.TotalAmount))

	if err := wb.sheet("Shops"); err != nil {
		return err
	}
	wb.header("Shop", "Bills", "Total Amount")
	for _, st := range stats.ShopsWithBills() {
		wb.row(st.Shop.Name, st.BillCount, amount(st.TotalAmount))
	}

	if err := wb.sheet("Daily"); err != nil {
		return err
	}
	wb.header("Date", "Bills", "Amount")
	for _, d := range stats.Daily {
		wb.row(d.Date.String(), d.BillCount, amount(d.TotalAmount))
	}

	return wb.write(w)
}

// amount converts Money to a spreadsheet number.
func amount(m types.Money) float64 {
	return m.Decimal().InexactFloat64()
}

// workbook appends rows to the current sheet and keeps the first error.
type workbook struct {
	f       *excelize.File
	current string
	next    int
	bold    int
	money   int
	err     error
}

func newWorkbook(first string) (*workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", first); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4}) // #,##0.00
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: %w", err)
	}

	wb := &workbook{f: f, current: first, next: 1, bold: bold, money: money}
	wb.widen()
	return wb, nil
}

func (wb *workbook) sheet(name string) error {
	if _, err := wb.f.NewSheet(name); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	wb.current = name
	wb.next = 1
	wb.widen()
	return nil
}

func (wb *workbook) widen() {
	if wb.err == nil {
		wb.err = wb.f.SetColWidth(wb.current, "A", "F", 16)
	}
}

func (wb *workbook) row(values ...any) {
	if wb.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, wb.next)
	if err != nil {
		wb.err = err
		return
	}
	wb.err = wb.f.SetSheetRow(wb.current, cell, &values)
	wb.next++
}

func (wb *workbook) header(titles ...string) {
	values := make([]any, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	wb.row(values...)
	wb.style(wb.bold, len(titles))
}

func (wb *workbook) total(label string, value float64) {
	wb.row(label, value)
	wb.style(wb.money, 2)
}

// style applies id to the first cols cells of the last written row.
func (wb *workbook) style(id, cols int) {
	if wb.err != nil {
		return
	}
	first, err := excelize.CoordinatesToCellName(1, wb.next-1)
	if err != nil {
		wb.err = err
		return
	}
	last, err := excelize.CoordinatesToCellName(cols, wb.next-1)
	if err != nil {
		wb.err = err
		return
	}
	wb.err = wb.f.SetCellStyle(wb.current, first, last, id)
}

func (wb *workbook) skip() { wb.next++ }

func (wb *workbook) write(w io.Writer) error {
	if wb.err != nil {
		return fmt.Errorf("xlsx: %w", wb.err)
	}
	if err := wb.f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func (wb *workbook) close() { _ = wb.f.Close() }
