package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render writes the title on the first row, headers on the second and the
// rows below them. sheet defaults to Sheet1.
func (e *XLSXExporter) Render(data Dataset, title, sheet string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	if sheet == "" {
		sheet = defaultSheet
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	row := 1
	if title != "" {
		if err := f.SetCellValue(sheet, cell(1, row), title); err != nil {
			return nil, err
		}
		lastCol := cell(len(data.Headers), row)
		if err := f.MergeCell(sheet, cell(1, row), lastCol); err != nil {
			return nil, fmt.Errorf("merge title: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell(1, row), lastCol, headerStyle); err != nil {
			return nil, err
		}
		row++
	}

	for i, header := range data.Headers {
		if err := f.SetCellValue(sheet, cell(i+1, row), header); err != nil {
			return nil, err
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, 20); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheet, cell(1, row), cell(len(data.Headers), row), headerStyle); err != nil {
		return nil, err
	}
	row++

	for _, values := range data.Rows {
		for i, value := range data.Record(values) {
			if err := f.SetCellValue(sheet, cell(i+1, row), value); err != nil {
				return nil, err
			}
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
