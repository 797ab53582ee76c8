package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"hostel-portal/internal/domain"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FeeLedgerHeader is the column order of the fee ledger export.
var FeeLedgerHeader = []string{
	"Application Number",
	"Name",
	"Branch",
	"Room",
	"Mess Fee / Month",
	"Months Due",
	"Amount Due",
	"Status",
	"Due Date",
	"Overdue",
}

// RoomOccupancyHeader is the column order of the room occupancy export.
var RoomOccupancyHeader = []string{
	"Room Number",
	"Type",
	"Capacity",
	"Occupied",
	"Free Beds",
	"Status",
}

// GenerateFeeLedgerExport renders the ledger of approved applications with a
// totals row. now decides the Overdue column.
func GenerateFeeLedgerExport(list []*domain.Application, now time.Time) ([]byte, error) {
	rows := make([][]any, 0, len(list)+1)
	total := 0
	for _, a := range list {
		a.RefreshDerived(now)
		room := ""
		if a.Housed() {
			room = *a.RoomAllotted
		}
		due := ""
		if a.FeeDueDate != nil {
			due = a.FeeDueDate.UTC().Format("2006-01-02")
		}
		rows = append(rows, []any{
			a.ApplicationNumber,
			a.Name,
			a.Branch,
			room,
			a.MessFeePerMonth,
			a.MonthsDue,
			a.FeeAmountDue,
			string(a.FeeStatus),
			due,
			yesNo(a.IsOverdue),
		})
		total += a.FeeAmountDue
	}
	rows = append(rows, []any{"Total", "", "", "", "", "", total, "", "", ""})
	return generateSheet("Fee Ledger", FeeLedgerHeader, []float64{20, 24, 20, 10, 16, 12, 14, 10, 12, 10}, rows)
}

// GenerateRoomOccupancyExport renders one row per room.
func GenerateRoomOccupancyExport(rooms []*domain.Room) ([]byte, error) {
	rows := make([][]any, 0, len(rooms))
	for _, r := range rooms {
		rows = append(rows, []any{
			r.RoomNumber,
			string(r.Type),
			r.Capacity,
			r.OccupiedCount,
			r.FreeBeds(),
			string(r.Status),
		})
	}
	return generateSheet("Room Occupancy", RoomOccupancyHeader, []float64{14, 10, 10, 10, 10, 14}, rows)
}

func generateSheet(sheetName string, headers []string, widths []float64, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range headers {
		if err := setCellValue(f, sheetName, col+1, 1, header); err != nil {
			return nil, fmt.Errorf("failed to set header %s: %w", header, err)
		}
		if col < len(widths) {
			name, err := excelize.ColumnNumberToName(col + 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetColWidth(sheetName, name, name, widths[col]); err != nil {
				return nil, fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, row := range rows {
		for j, v := range row {
			if v == nil || v == "" {
				continue
			}
			if err := setCellValue(f, sheetName, j+1, i+2, v); err != nil {
				return nil, fmt.Errorf("failed to set cell at row %d, col %d: %w", i+2, j+1, err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCellValue(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func writeXLSX(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
