// Package export renders employee listings as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/locvowork/employee_directory/internal/domain"
)

const SheetName = "Employees"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type column struct {
	header string
	width  float64
	value  func(e *domain.Employee) interface{}
}

var columns = []column{
	{"ID", 38, func(e *domain.Employee) interface{} { return e.ID }},
	{"Name", 24, func(e *domain.Employee) interface{} { return e.Name }},
	{"Email", 32, func(e *domain.Employee) interface{} { return e.Email }},
	{"Age", 8, func(e *domain.Employee) interface{} { return e.Age }},
	{"Class", 16, func(e *domain.Employee) interface{} { return e.Class }},
	{"Subjects", 32, func(e *domain.Employee) interface{} { return strings.Join(e.Subjects, "; ") }},
	{"Attendance", 12, func(e *domain.Employee) interface{} { return e.Attendance }},
	{"Position", 20, func(e *domain.Employee) interface{} { return e.Position }},
	{"Salary", 12, func(e *domain.Employee) interface{} { return e.Salary }},
	{"Phone", 14, func(e *domain.Employee) interface{} { return deref(e.Phone) }},
	{"Address", 28, func(e *domain.Employee) interface{} { return deref(e.Address) }},
	{"Hire Date", 12, func(e *domain.Employee) interface{} { return formatDate(e.HireDate) }},
	{"Active", 8, func(e *domain.Employee) interface{} { return e.IsActive }},
	{"Flagged", 8, func(e *domain.Employee) interface{} { return e.Flagged }},
	{"Created At", 22, func(e *domain.Employee) interface{} { return formatTime(e.CreatedAt) }},
	{"Updated At", 22, func(e *domain.Employee) interface{} { return formatTime(e.UpdatedAt) }},
}

// Headers returns the column titles in sheet order.
func Headers() []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = col.header
	}
	return out
}

// WriteEmployees streams employees into a single-sheet workbook written to w.
func WriteEmployees(w io.Writer, employees []domain.Employee) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"305496"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	headers := make([]interface{}, len(columns))
	for i, col := range columns {
		if err := sw.SetColWidth(i+1, i+1, col.width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
		headers[i] = excelize.Cell{Value: col.header, StyleID: headerStyle}
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range employees {
		row := make([]interface{}, len(columns))
		for j, col := range columns {
			row[j] = col.value(&employees[i])
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush stream: %w", err)
	}
	_, err = f.WriteTo(w)
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDate(d domain.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
