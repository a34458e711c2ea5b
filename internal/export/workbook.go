// Package export renders projected search rows as xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Workbook streams rows into a single-sheet xlsx file. The header row holds
// the column keys; every appended row is laid out in the same order.
type Workbook struct {
	file    *excelize.File
	stream  *excelize.StreamWriter
	columns []string
	next    int
}

// NewWorkbook creates a workbook whose only sheet is named after sheet and
// whose first row lists columns.
func NewWorkbook(sheet string, columns []string) (*Workbook, error) {
	f := excelize.NewFile()
	if sheet != "" && sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	} else {
		sheet = defaultSheet
	}

	stream, err := f.NewStreamWriter(sheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open sheet stream: %w", err)
	}

	wb := &Workbook{file: f, stream: stream, columns: append([]string(nil), columns...), next: 1}

	header := make([]any, len(columns))
	for i, column := range columns {
		header[i] = column
	}
	if err := wb.writeRow(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return wb, nil
}

// Append writes rows below the ones already present. Missing keys stay blank.
func (wb *Workbook) Append(rows []map[string]any) error {
	for _, row := range rows {
		cells := make([]any, len(wb.columns))
		for i, column := range wb.columns {
			cells[i] = row[column]
		}
		if err := wb.writeRow(cells); err != nil {
			return fmt.Errorf("write row %d: %w", wb.next-1, err)
		}
	}
	return nil
}

// Rows reports how many data rows were written, header excluded.
func (wb *Workbook) Rows() int {
	return wb.next - 2
}

// WriteTo flushes the sheet and serializes the workbook to w. Nothing can be
// appended afterwards.
func (wb *Workbook) WriteTo(w io.Writer) (int64, error) {
	if err := wb.stream.Flush(); err != nil {
		return 0, fmt.Errorf("flush sheet: %w", err)
	}
	return wb.file.WriteTo(w)
}

// Close releases the temporary files held by the workbook.
func (wb *Workbook) Close() error {
	return wb.file.Close()
}

func (wb *Workbook) writeRow(cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, wb.next)
	if err != nil {
		return err
	}
	if err := wb.stream.SetRow(cell, cells); err != nil {
		return err
	}
	wb.next++
	return nil
}
