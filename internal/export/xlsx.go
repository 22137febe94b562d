// Package export renders attendance reports as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

const reportSheet = "Attendance"

// ReportHeader is the first row of an exported report.
var ReportHeader = []string{
	"Date",
	"Tag ID",
	"Name",
	"Employee ID",
	"Department",
	"Designation",
	"First In",
	"Last Out",
	"Check-ins",
	"Check-outs",
	"Working Hours",
	"Hours (decimal)",
}

var columnWidths = []float64{12, 14, 24, 14, 18, 18, 10, 10, 10, 10, 14, 14}

// WriteReportXLSX writes rep as a single-sheet workbook. Undefined durations
// leave the decimal hours cell empty.
func WriteReportXLSX(w io.Writer, rep types.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reportSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeRow(f, 1, headerRow()); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(ReportHeader), 1)
	if err := f.SetCellStyle(reportSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("set header style: %w", err)
	}

	for i, row := range rep.Rows {
		if err := writeRow(f, i+2, reportRow(row)); err != nil {
			return err
		}
	}

	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(reportSheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	if err := f.SetPanes(reportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func headerRow() []any {
	out := make([]any, len(ReportHeader))
	for i, h := range ReportHeader {
		out[i] = h
	}
	return out
}

func reportRow(r types.ReportRow) []any {
	var hours any
	if r.WorkingHoursRaw != nil {
		hours = *r.WorkingHoursRaw
	}
	return []any{
		r.Date,
		r.TagID,
		r.Name,
		r.EmployeeID,
		r.Department,
		r.Designation,
		r.FirstIn,
		r.LastOut,
		r.CheckinCount,
		r.CheckoutCount,
		r.WorkingHours,
		hours,
	}
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("convert coordinates: %w", err)
	}
	if err := f.SetSheetRow(reportSheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
