// Package export holds what the report document renditions share: the fixed headings of the
// printed form and the view model built from a report.
package export

import "github.com/masdens1250/appamine/core/report"

// Field labels end in Label, section headings in Heading.
const (
	Republic    = "الجمهورية الجزائرية الديمقراطية الشعبية"
	Directorate = "مديرية التربية لولاية مستغانم"
	Center      = "مركز التوجيه و الإرشاد المدرسي و المهني"
	Title       = "تقرير عملية الإعلام"
	Term        = "( الفصل الأول )"

	SchoolLabel    = "متوسطة"
	YearLabel      = "السنة الدراسية"
	CounselorLabel = "مستشار التوجيه"
	LevelLabel     = "المستوى"
	GroupsLabel    = "عدد الأفواج"
	TotalLabel     = "العدد الإجمالي للتلاميذ"

	EnrolmentHeading    = "التعداد الإجمالي في المستوى:"
	CoverageHeading     = "التغطية الإعلامية:"
	ObservationsHeading = "الملاحظات المستخلصة:"

	CounselorSignature = "مستشار التوجيه و الإرشاد م.م"
	PrincipalSignature = "مدير المتوسطة"
)

// Columns are the coverage table headers, in display order.
var Columns = []string{"الأفواج", "عدد التلاميذ", "تاريخ التدخل", "نسبة التغطية", "الأهداف"}

// Row is one coverage row of a Page.
type Row struct {
	Group        int
	StudentCount int
	Date         string
	Coverage     int
	Objectives   string
}

// Page is the report as laid out on the printed form.
type Page struct {
	School        string
	Counselor     string
	AcademicYear  string
	Level         string
	GroupCount    int
	TotalStudents int
	Rows          []Row
	Observations  string
}

func NewPage(r report.Report) Page {
	p := Page{
		School:        r.School,
		Counselor:     r.Counselor,
		AcademicYear:  r.AcademicYear,
		Level:         r.Level,
		GroupCount:    r.GroupCount,
		TotalStudents: r.TotalStudents,
		Rows:          make([]Row, 0, len(r.CoverageRows)),
		Observations:  r.Observations,
	}
	for _, row := range r.CoverageRows {
		p.Rows = append(p.Rows, Row{
			Group:        row.Group,
			StudentCount: row.StudentCount,
			Date:         row.Date,
			Coverage:     row.Coverage,
			Objectives:   row.Objectives,
		})
	}
	return p
}
