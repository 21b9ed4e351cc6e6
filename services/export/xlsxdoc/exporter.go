// Package xlsxdoc renders reports as a spreadsheet.
package xlsxdoc

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/masdens1250/appamine/core/report"
	"github.com/masdens1250/appamine/services/export"
)

const (
	sheetName  = "التقرير"
	a4Paper    = 9
	lastColumn = "E"
)

type Exporter struct{}

var _ report.Exporter = Exporter{}

func New() Exporter {
	return Exporter{}
}

func (Exporter) Format() string { return "xlsx" }
func (Exporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (Exporter) Extension() string { return ".xlsx" }

func (Exporter) Export(w io.Writer, r report.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sb := &sheetBuilder{f: f, sheet: sheetName}
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	sb.layout()
	sb.styles()
	sb.write(export.NewPage(r))
	if sb.err != nil {
		return errors.Wrap(sb.err, "building spreadsheet")
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing spreadsheet")
	}
	return nil
}

// sheetBuilder keeps the first error, the following calls are no-ops.
type sheetBuilder struct {
	f     *excelize.File
	sheet string
	row   int
	err   error

	title, bold, header, cell, number int
}

func (sb *sheetBuilder) do(fn func() error) {
	if sb.err == nil {
		sb.err = fn()
	}
}

func (sb *sheetBuilder) style(s *excelize.Style) int {
	var id int
	sb.do(func() (err error) {
		id, err = sb.f.NewStyle(s)
		return err
	})
	return id
}

func (sb *sheetBuilder) layout() {
	rtl, size, orientation := true, a4Paper, "portrait"
	sb.do(func() error {
		return sb.f.SetSheetView(sb.sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl})
	})
	sb.do(func() error {
		return sb.f.SetPageLayout(sb.sheet, &excelize.PageLayoutOptions{Size: &size, Orientation: &orientation})
	})
	sb.do(func() error { return sb.f.SetColWidth(sb.sheet, "A", "D", 16) })
	sb.do(func() error { return sb.f.SetColWidth(sb.sheet, lastColumn, lastColumn, 40) })
}

func (sb *sheetBuilder) styles() {
	border := []excelize.Border{
		{Type: "left", Color: "999999", Style: 1},
		{Type: "right", Color: "999999", Style: 1},
		{Type: "top", Color: "999999", Style: 1},
		{Type: "bottom", Color: "999999", Style: 1},
	}
	sb.title = sb.style(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Underline: "single", Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	sb.bold = sb.style(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Underline: "single"},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	sb.header = sb.style(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F5F5F5"}},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	sb.cell = sb.style(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "right", Vertical: "top", WrapText: true},
		Border:    border,
	})
	sb.number = sb.style(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    border,
	})
}

func (sb *sheetBuilder) cellName(col int) string {
	name, err := excelize.CoordinatesToCellName(col, sb.row)
	if err != nil && sb.err == nil {
		sb.err = err
	}
	return name
}

func (sb *sheetBuilder) set(col int, value interface{}, style int) {
	cell := sb.cellName(col)
	sb.do(func() error { return sb.f.SetCellValue(sb.sheet, cell, value) })
	if style != 0 {
		sb.do(func() error { return sb.f.SetCellStyle(sb.sheet, cell, cell, style) })
	}
}

// line writes value across the whole row.
func (sb *sheetBuilder) line(value string, style int) {
	sb.row++
	first, last := sb.cellName(1), sb.cellName(len(export.Columns))
	sb.set(1, value, style)
	sb.do(func() error { return sb.f.MergeCell(sb.sheet, first, last) })
}

func (sb *sheetBuilder) pair(label, value string) {
	sb.row++
	sb.set(1, label, sb.bold)
	sb.set(2, value, 0)
}

func (sb *sheetBuilder) write(p export.Page) {
	sb.line(export.Republic, sb.title)
	sb.row++
	sb.set(1, export.Directorate, 0)
	sb.set(4, export.Center, 0)

	sb.row++
	sb.pair(export.SchoolLabel, p.School)
	sb.set(4, export.YearLabel, sb.bold)
	sb.set(5, p.AcademicYear, 0)
	sb.pair(export.CounselorLabel, p.Counselor)

	sb.row++
	sb.line(export.Title, sb.title)
	sb.line(export.Term, 0)
	sb.row++
	sb.pair(export.LevelLabel, p.Level)

	sb.row++
	sb.line(export.EnrolmentHeading, sb.bold)
	sb.row++
	sb.set(1, export.GroupsLabel, sb.header)
	sb.set(2, p.GroupCount, sb.number)
	sb.row++
	sb.set(1, export.TotalLabel, sb.header)
	sb.set(2, p.TotalStudents, sb.number)

	sb.row++
	sb.line(export.CoverageHeading, sb.bold)
	sb.row++
	for i, col := range export.Columns {
		sb.set(i+1, col, sb.header)
	}
	for _, row := range p.Rows {
		sb.row++
		sb.set(1, row.Group, sb.number)
		sb.set(2, row.StudentCount, sb.number)
		sb.set(3, row.Date, sb.number)
		sb.set(4, row.Coverage, sb.number)
		sb.set(5, row.Objectives, sb.cell)
	}

	sb.row++
	sb.line(export.ObservationsHeading, sb.bold)
	sb.line(p.Observations, sb.cell)
	sb.do(func() error { return sb.f.SetRowHeight(sb.sheet, sb.row, 90) })

	sb.row += 2
	sb.set(1, export.CounselorSignature, sb.bold)
	sb.set(4, export.PrincipalSignature, sb.bold)
}
