package report

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/masdens1250/appamine/core"
)

const (
	DefaultAcademicYear = "2024/2025"
	DefaultLevel        = "السنة الأولى متوسط"
	DefaultGroupCount   = 4

	// FilenameBase is the fixed name of every exported document (the extension depends on the exporter).
	FilenameBase = "تقرير_التوجيه"
)

// RowField is an editable column of a CoverageRow. The group number is not editable.
type RowField string

const (
	FieldStudentCount RowField = "studentCount"
	FieldDate         RowField = "date"
	FieldCoverage     RowField = "coverage"
	FieldObjectives   RowField = "objectives"
)

// TextField is a free text field of the report header or footer.
type TextField string

const (
	FieldSchool       TextField = "school"
	FieldCounselor    TextField = "counselor"
	FieldAcademicYear TextField = "academicYear"
	FieldLevel        TextField = "level"
	FieldObservations TextField = "observations"
)

var rowFieldAliases = map[string]RowField{
	"studentcount":  FieldStudentCount,
	"student_count": FieldStudentCount,
	"date":          FieldDate,
	"coverage":      FieldCoverage,
	"objectives":    FieldObjectives,
}

// ParseRowField accepts both the camelCase and the snake_case spelling of a row field.
func ParseRowField(s string) (RowField, bool) {
	f, ok := rowFieldAliases[strings.ToLower(strings.TrimSpace(s))]
	return f, ok
}

// TotalPolicy decides when Report.TotalStudents is recomputed.
type TotalPolicy int

const (
	// TotalOnStudentEdit recomputes the total only when a row's student count is edited.
	// Shrinking the group count leaves the total stale until the next student count edit.
	TotalOnStudentEdit TotalPolicy = iota
	// TotalOnRowChange recomputes the total after every mutation of the row list.
	TotalOnRowChange
)

// CoverageRow holds the figures of one group.
type CoverageRow struct {
	Group        int    `json:"group"`
	StudentCount int    `json:"student_count"`
	Date         string `json:"date"` // YYYY-MM-DD or empty
	Coverage     int    `json:"coverage"`
	Objectives   string `json:"objectives"`
}

func newRow(group int) CoverageRow {
	return CoverageRow{Group: group}
}

// RawValue is a form input as typed by the user. JSON numbers are accepted as well.
type RawValue string

func (v *RawValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = RawValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("expected a string or a number")
	}
	*v = RawValue(n.String())
	return nil
}

// UpdateReport is a partial update of the report form. Nil fields are left untouched.
// GroupCount is the raw input, coerced by Report.SetGroupCount.
type UpdateReport struct {
	School       *string   `json:"school" validate:"omitempty,max=200"`
	Counselor    *string   `json:"counselor" validate:"omitempty,max=200"`
	AcademicYear *string   `json:"academic_year" validate:"omitempty,max=50"`
	Level        *string   `json:"level" validate:"omitempty,max=200"`
	Observations *string   `json:"observations" validate:"omitempty,max=10000"`
	GroupCount   *RawValue `json:"group_count"`
}

func (ur *UpdateReport) Validate(validate *validator.Validate) error {
	if ur.IsEmpty() {
		return core.NewValidationError(ErrEmptyUpdate)
	}
	return validate.Struct(ur)
}

func (ur UpdateReport) IsEmpty() bool {
	return ur.School == nil && ur.Counselor == nil && ur.AcademicYear == nil &&
		ur.Level == nil && ur.Observations == nil && ur.GroupCount == nil
}

// EditRow is one cell edit of the coverage table.
type EditRow struct {
	Field string   `json:"field" validate:"required,notblank"`
	Value RawValue `json:"value"`
}

func (er *EditRow) Validate(validate *validator.Validate) error {
	return validate.Struct(er)
}

// Document is an exported report ready for download.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}
