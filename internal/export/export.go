// Package export generates report files entirely client-side: CSV, a tabular
// PDF and a spreadsheet workbook. Every exporter operates on the rows it is
// handed, which is always the currently filtered table contents.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"pmadmin/internal/models"
)

// ReportHeaders is the column order shared by all three report exports.
var ReportHeaders = []string{
	"Project Name", "Project Status", "Total Tasks",
	"Completed Tasks", "Pending Tasks", "Completion (%)",
}

// ReportRows flattens report records into export cells.
func ReportRows(reports []models.Report) [][]string {
	rows := make([][]string, len(reports))
	for i, r := range reports {
		rows[i] = []string{
			r.ProjectName,
			r.ProjectStatus,
			fmt.Sprintf("%d", r.TotalTasks),
			fmt.Sprintf("%d", r.CompletedTasks),
			fmt.Sprintf("%d", r.PendingTasks),
			fmt.Sprintf("%g", r.CompletionPercentage),
		}
	}
	return rows
}

// CSV writes literal comma-joined lines. Cells are emitted as-is, without
// quoting; the report fields never contain commas.
func CSV(w io.Writer, headers []string, rows [][]string) error {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(headers, ","))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, ","))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// PDF renders a titled table, paginating automatically.
func PDF(w io.Writer, title string, headers []string, rows [][]string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	colWidth := 190.0 / float64(len(headers))

	pdf.SetFont("Arial", "B", 9)
	for _, h := range headers {
		pdf.CellFormat(colWidth, 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		for _, cell := range row {
			pdf.CellFormat(colWidth, 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

// Workbook writes a single-sheet spreadsheet.
func Workbook(w io.Writer, sheet string, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	for c, h := range headers {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	_, err := f.WriteTo(w)
	return err
}
