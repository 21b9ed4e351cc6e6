package report

import (
	"github.com/pkg/errors"

	"github.com/masdens1250/appamine/core/settings"
)

var (
	// errors
	ErrRowOutOfRange = errors.New("coverage row index out of range")
	ErrUnknownField  = errors.New("unknown report field")
)

// Report is the coverage report form of one open view.
// It is not safe for concurrent use: callers serialise access (see Repository.UpdateReport).
type Report struct {
	ID             string        `json:"id"`
	School         string        `json:"school"`
	Counselor      string        `json:"counselor"`
	AcademicYear   string        `json:"academic_year"`
	Level          string        `json:"level"`
	GroupCount     int           `json:"group_count"`
	TotalStudents  int           `json:"total_students"`
	CoverageRows   []CoverageRow `json:"coverage_rows"`
	Observations   string        `json:"observations"`
	PreviewOpen    bool          `json:"preview_open"`
	SettingsLoaded bool          `json:"settings_loaded"`

	policy         TotalPolicy
	schoolDirty    bool
	counselorDirty bool
}

// New returns a report form with its defaults, as displayed when the view is mounted.
func New(id string, policy TotalPolicy) *Report {
	r := &Report{
		ID:           id,
		AcademicYear: DefaultAcademicYear,
		Level:        DefaultLevel,
		policy:       policy,
	}
	r.resize(DefaultGroupCount)
	return r
}

// SetGroupCount coerces raw into a group count >= 1 and resizes the coverage rows to match.
// Rows within the previous length are kept as they are, new rows start blank and
// trailing rows are dropped.
func (r *Report) SetGroupCount(raw string) {
	r.resize(ParseGroupCount(raw))
	if r.policy == TotalOnRowChange {
		r.recomputeTotal()
	}
}

func (r *Report) resize(n int) {
	rows := make([]CoverageRow, n)
	for i := range rows {
		if i < len(r.CoverageRows) {
			rows[i] = r.CoverageRows[i]
		} else {
			rows[i] = newRow(i + 1)
		}
		rows[i].Group = i + 1
	}
	r.GroupCount = n
	r.CoverageRows = rows
}

// EditCoverageRow replaces one field of the row at index with the coerced raw value.
func (r *Report) EditCoverageRow(index int, field RowField, raw string) error {
	if index < 0 || index >= len(r.CoverageRows) {
		return errors.Wrapf(ErrRowOutOfRange, "index %d of %d rows", index, len(r.CoverageRows))
	}

	row := &r.CoverageRows[index]
	switch field {
	case FieldStudentCount:
		row.StudentCount = ParseCount(raw)
		r.recomputeTotal()
	case FieldCoverage:
		row.Coverage = ParseCount(raw)
	case FieldDate:
		row.Date = ParseDate(raw)
	case FieldObjectives:
		row.Objectives = raw
	default:
		return errors.Wrapf(ErrUnknownField, "row field %q", field)
	}
	return nil
}

func (r *Report) recomputeTotal() {
	total := 0
	for _, row := range r.CoverageRows {
		total += row.StudentCount
	}
	r.TotalStudents = total
}

// SetField sets one of the free text fields. School and counselor become user owned,
// the settings prefill will not overwrite them anymore.
func (r *Report) SetField(field TextField, value string) error {
	switch field {
	case FieldSchool:
		r.School = value
		r.schoolDirty = true
	case FieldCounselor:
		r.Counselor = value
		r.counselorDirty = true
	case FieldAcademicYear:
		r.AcademicYear = value
	case FieldLevel:
		r.Level = value
	case FieldObservations:
		r.Observations = value
	default:
		return errors.Wrapf(ErrUnknownField, "text field %q", field)
	}
	return nil
}

// Apply runs a partial update. Text fields are set before the group count.
func (r *Report) Apply(ur UpdateReport) {
	set := func(field TextField, v *string) {
		if v != nil {
			_ = r.SetField(field, *v)
		}
	}
	set(FieldSchool, ur.School)
	set(FieldCounselor, ur.Counselor)
	set(FieldAcademicYear, ur.AcademicYear)
	set(FieldLevel, ur.Level)
	set(FieldObservations, ur.Observations)
	if ur.GroupCount != nil {
		r.SetGroupCount(string(*ur.GroupCount))
	}
}

// ApplySettings merges the loaded settings into the school and counselor fields
// the user has not edited yet.
func (r *Report) ApplySettings(s settings.Settings) {
	if !r.schoolDirty {
		r.School = s.SchoolName
	}
	if !r.counselorDirty {
		r.Counselor = s.CounselorName
	}
	r.SettingsLoaded = true
}

// Normalize brings a report decoded from outside (admin CLI) back within its invariants:
// one row per group numbered from 1, no negative value and a fresh total.
func (r *Report) Normalize() {
	n := r.GroupCount
	if n < 1 {
		n = 1
	}
	r.resize(n)
	for i := range r.CoverageRows {
		row := &r.CoverageRows[i]
		if row.StudentCount < 0 {
			row.StudentCount = 0
		}
		if row.Coverage < 0 {
			row.Coverage = 0
		}
		row.Date = ParseDate(row.Date)
	}
	r.recomputeTotal()
}

func (r *Report) OpenPreview()  { r.PreviewOpen = true }
func (r *Report) ClosePreview() { r.PreviewOpen = false }

// Snapshot returns a deep copy of the report, safe to read while the original keeps changing.
func (r *Report) Snapshot() Report {
	c := *r
	c.CoverageRows = make([]CoverageRow, len(r.CoverageRows))
	copy(c.CoverageRows, r.CoverageRows)
	return c
}
