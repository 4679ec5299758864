package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/game-station/internal/model"
)

// exportHeader is the fixed column order consumers of the export depend on.
var exportHeader = []string{"Date", "Device", "Customer", "Duration", "Cost", "Status", "Payment"}

const exportTimeLayout = "2006-01-02 15:04"

// WriteCSV streams completed sessions to w as CSV in the fixed export
// column order.
func WriteCSV(w io.Writer, sessions []model.CompletedSession) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, s := range sessions {
		if err := cw.Write(exportRow(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX renders the same export as a single-sheet workbook.  The first
// row is frozen and bolded so the file opens ready to scroll.
func WriteXLSX(w io.Writer, sessions []model.CompletedSession) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Sessions"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for i, h := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, bold)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	for rowIdx, s := range sessions {
		for colIdx, v := range exportRow(s) {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func exportRow(s model.CompletedSession) []string {
	return []string{
		s.StartedAt.Format(exportTimeLayout),
		s.ResourceName,
		s.Customer,
		FormatDuration(s.Duration),
		s.Cost.StringFixed(2),
		string(s.Status),
		s.PaymentMethod,
	}
}

// FormatDuration renders a duration as HH:MM:SS, the form used on receipts
// and exports (90 minutes prints as "01:30:00").
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
