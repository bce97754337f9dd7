package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/zombor/receipt-ocr/internal/extraction"
)

// SheetName is the worksheet that holds one row per receipt
const SheetName = "Receipts"

var headers = []string{
	"File",
	"Merchant",
	"Date",
	"Subtotal",
	"Total",
	"Items",
	"Confidence",
	"Error",
}

// Row is one processed receipt; Err is set when the receipt could not be read
type Row struct {
	Source string
	Result *extraction.Result
	Err    error
}

// ResultsXLSX returns an XLSX workbook (as bytes) with one row per receipt.
// Amounts and confidence are written as numbers; absent fields are left blank.
func ResultsXLSX(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}

		write(1, filepath.Base(r.Source))
		if r.Err != nil {
			write(8, r.Err.Error())
			continue
		}

		res := r.Result
		if res.Merchant != nil {
			write(2, *res.Merchant)
		}
		if res.Date != nil {
			write(3, *res.Date)
		}
		if res.Subtotal != nil {
			write(4, res.Subtotal.InexactFloat64())
		}
		if res.Total != nil {
			write(5, res.Total.InexactFloat64())
		}
		write(6, len(res.Items))
		write(7, res.Confidence.InexactFloat64())
	}

	_ = f.SetColWidth(SheetName, "A", "A", 32) // file
	_ = f.SetColWidth(SheetName, "B", "B", 24) // merchant
	_ = f.SetColWidth(SheetName, "C", "C", 12) // date
	_ = f.SetColWidth(SheetName, "D", "G", 12) // numbers
	_ = f.SetColWidth(SheetName, "H", "H", 48) // error

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	slog.Info("Results exported",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}
