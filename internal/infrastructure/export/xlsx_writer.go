// Package export renders ledger reports as downloadable documents.
package export

import (
	"fmt"

	"github.com/erp/ledger/internal/domain/accounting"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	trialBalanceSheet = "Trial Balance"
	headerRow         = 3
)

var trialBalanceHeadings = []string{"Code", "Account", "Type", "Debit", "Credit"}

// XLSXWriter renders reports as Excel workbooks
type XLSXWriter struct{}

// NewXLSXWriter creates a new XLSXWriter
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

// ContentType returns the MIME type of the generated workbook
func (w *XLSXWriter) ContentType() string {
	return xlsxContentType
}

// Extension returns the file extension without the dot
func (w *XLSXWriter) Extension() string {
	return "xlsx"
}

// WriteTrialBalance lays out one row per account with its balance in the
// Debit or Credit column, followed by a totals row.
func (w *XLSXWriter) WriteTrialBalance(tb *accounting.TrialBalance) ([]byte, error) {
	if tb == nil {
		return nil, fmt.Errorf("trial balance is required")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", trialBalanceSheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}
	totalAmount, err := f.NewStyle(&excelize.Style{NumFmt: 4, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	sw := sheetWriter{f: f, sheet: trialBalanceSheet}
	sw.set(1, 1, "Trial Balance as of "+tb.AsOf.Format("2006-01-02"))
	for i, h := range trialBalanceHeadings {
		sw.set(i+1, headerRow, h)
	}
	sw.style(1, 1, 1, 1, bold)
	sw.style(1, headerRow, len(trialBalanceHeadings), headerRow, bold)

	row := headerRow + 1
	for _, r := range tb.Rows {
		sw.set(1, row, r.Code)
		sw.set(2, row, r.Name)
		sw.set(3, row, r.AccountType.String())
		if r.BalanceSide == accounting.BalanceSideCredit {
			sw.set(5, row, r.Balance.InexactFloat64())
		} else {
			sw.set(4, row, r.Balance.InexactFloat64())
		}
		row++
	}
	if row > headerRow+1 {
		sw.style(4, headerRow+1, 5, row-1, amount)
	}

	sw.set(1, row, "Total")
	sw.set(4, row, tb.TotalDebit.InexactFloat64())
	sw.set(5, row, tb.TotalCredit.InexactFloat64())
	sw.style(1, row, 3, row, bold)
	sw.style(4, row, 5, row, totalAmount)

	if !tb.IsBalanced() {
		sw.set(1, row+1, "Difference")
		sw.set(4, row+1, tb.Difference.InexactFloat64())
		sw.style(4, row+1, 4, row+1, amount)
	}

	if sw.err != nil {
		return nil, sw.err
	}
	if err := f.SetColWidth(trialBalanceSheet, "B", "B", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(trialBalanceSheet, "D", "E", 16); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error so cell writes can be chained
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (s *sheetWriter) set(col, row int, value any) {
	if s.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetCellValue(s.sheet, cell, value)
}

func (s *sheetWriter) style(fromCol, fromRow, toCol, toRow, styleID int) {
	if s.err != nil {
		return
	}
	from, err := excelize.CoordinatesToCellName(fromCol, fromRow)
	if err != nil {
		s.err = err
		return
	}
	to, err := excelize.CoordinatesToCellName(toCol, toRow)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetCellStyle(s.sheet, from, to, styleID)
}
