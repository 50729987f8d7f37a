package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// Formats supported by Write.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Table is a titled grid of cells ready to be written in any format.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// Footer lines are printed below the grid in PDF output only.
	Footer []string
}

// WriteCSV writes the header row followed by every data row.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// WriteExcel writes a single-sheet workbook named after the table title
// with a bold gray header row.
func WriteExcel(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(t.Title)
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, header := range t.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	for rowIdx, row := range t.Rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, value)
		}
	}
	if len(t.Headers) > 0 {
		last, _ := excelize.ColumnNumberToName(len(t.Headers))
		f.SetColWidth(sheet, "A", last, 15)
	}
	if sheet != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WritePDF renders the table on landscape A4 pages.
func WritePDF(w io.Writer, t Table) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, t.Title)
	pdf.Ln(12)

	width := 277.0
	if n := len(t.Headers); n > 0 {
		width = width / float64(n)
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(211, 211, 211)
	for _, h := range t.Headers {
		pdf.CellFormat(width, 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range t.Rows {
		for _, v := range row {
			pdf.CellFormat(width, 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(t.Footer) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		for _, line := range t.Footer {
			pdf.Cell(0, 6, line)
			pdf.Ln(6)
		}
	}
	return pdf.Output(w)
}

// Write renders t in format into w and returns the content type.
func Write(w io.Writer, format string, t Table) (string, error) {
	switch format {
	case FormatCSV:
		return "text/csv", WriteCSV(w, t)
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", WriteExcel(w, t)
	case FormatPDF:
		return "application/pdf", WritePDF(w, t)
	}
	return "", fmt.Errorf("unsupported export format %q", format)
}

// Serve renders t and sends it as an attachment named filename.format. The
// file is built in memory first so a failure can still produce a 500.
func Serve(w http.ResponseWriter, format, filename string, t Table) error {
	var buf bytes.Buffer
	contentType, err := Write(&buf, format, t)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", filename, format))
	_, err = buf.WriteTo(w)
	return err
}

// sheetName trims a title to Excel's 31 character limit and strips the
// characters sheet names may not contain.
func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, title)
	if name == "" {
		return "Sheet1"
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}
