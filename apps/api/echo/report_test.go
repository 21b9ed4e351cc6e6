package echoapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masdens1250/appamine/core/report"
)

type failingExporter struct{}

func (failingExporter) Format() string      { return "broken" }
func (failingExporter) ContentType() string { return "text/plain" }
func (failingExporter) Extension() string   { return ".txt" }

func (failingExporter) Export(io.Writer, report.Report) error {
	return errors.New("printer on fire")
}

func openReport(t *testing.T, app *testApp) report.Report {
	t.Helper()
	var r report.Report
	code := do(t, app, http.MethodPost, "/v1/reports", nil, &r)
	require.Equal(t, http.StatusCreated, code)
	app.reportSvc.WaitPending()
	return r
}

func Test_reportApi_open(t *testing.T) {
	app := setup(t)
	r := openReport(t, app)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, 4, r.GroupCount)
	assert.Len(t, r.CoverageRows, 4)
	assert.Equal(t, "2024/2025", r.AcademicYear)

	var got report.Report
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/v1/reports/"+r.ID, nil, &got))
	assert.Equal(t, "متوسطة النجاح", got.School)
	assert.Equal(t, "م. أمين", got.Counselor)
	assert.True(t, got.SettingsLoaded)
}

func Test_reportApi_errors(t *testing.T) {
	app := setup(t)
	r := openReport(t, app)
	path := "/v1/reports/" + r.ID

	runHTTPTests(t, app, []httpTest{
		{
			name: "unknown report", method: http.MethodGet, path: "/v1/reports/nope", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "getting report: report not found"}),
		},
		{
			name: "row index not a number", method: http.MethodPut, path: path + "/rows/first",
			body: []byte(`{"field":"coverage","value":"1"}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"index":"must be an integer"}`),
		},
		{
			name: "row index out of range", method: http.MethodPut, path: path + "/rows/4",
			body: []byte(`{"field":"coverage","value":"1"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "editing coverage row: index 4 of 4 rows: coverage row index out of range"}),
		},
		{
			name: "missing field", method: http.MethodPut, path: path + "/rows/0",
			body: []byte(`{"value":"1"}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"field":"this field is required"}`),
		},
		{
			name: "blank field", method: http.MethodPut, path: path + "/rows/0",
			body: []byte(`{"field":"  ","value":"1"}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"field":"this field cannot be blank"}`),
		},
		{
			name: "unknown field", method: http.MethodPut, path: path + "/rows/0",
			body: []byte(`{"field":"group","value":"1"}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"field":"invalid value"}`),
		},
		{
			name: "unknown format", method: http.MethodGet, path: path + "/export?format=pdf",
			wantCode: http.StatusBadRequest, wantData: []byte(`{"format":"invalid value"}`),
		},
		{
			name: "text too long", method: http.MethodPatch, path: path,
			body: []byte(`{"academic_year":"` + strings.Repeat("9", 51) + `"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "empty update", method: http.MethodPatch, path: path,
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "nothing to update"}),
		},
	})
}

func Test_reportApi_update(t *testing.T) {
	app := setup(t)
	r := openReport(t, app)
	path := "/v1/reports/" + r.ID

	tests := []struct {
		name       string
		body       string
		wantGroups int
	}{
		{name: "string", body: `{"group_count":"6"}`, wantGroups: 6},
		{name: "number", body: `{"group_count":3}`, wantGroups: 3},
		{name: "garbage", body: `{"group_count":"abc"}`, wantGroups: 1},
		{name: "zero", body: `{"group_count":"0"}`, wantGroups: 1},
		{name: "capped", body: `{"group_count":"100000"}`, wantGroups: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPatch, path, []byte(tt.body))
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var got report.Report
			require.NoError(t, jsonUnmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantGroups, got.GroupCount)
			assert.Len(t, got.CoverageRows, tt.wantGroups)
		})
	}

	t.Run("school edit survives", func(t *testing.T) {
		var got report.Report
		code := do(t, app, http.MethodPatch, path, map[string]string{"school": "مدرستي", "observations": "تفاعل"}, &got)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "مدرستي", got.School)
		assert.Equal(t, "م. أمين", got.Counselor)
		assert.Equal(t, "تفاعل", got.Observations)
	})
}

func Test_reportApi_rowsAndTotal(t *testing.T) {
	app := setup(t)
	r := openReport(t, app)
	path := "/v1/reports/" + r.ID

	var got report.Report
	for i, v := range []string{"30", "28", "31", "25"} {
		code := do(t, app, http.MethodPut, path+"/rows/"+strconv.Itoa(i), report.EditRow{Field: "student_count", Value: report.RawValue(v)}, &got)
		require.Equal(t, http.StatusOK, code)
	}
	assert.Equal(t, 114, got.TotalStudents)

	require.Equal(t, http.StatusOK, do(t, app, http.MethodPut, path+"/rows/1", map[string]interface{}{"field": "coverage", "value": 95}, &got))
	assert.Equal(t, 95, got.CoverageRows[1].Coverage)
	require.Equal(t, http.StatusOK, do(t, app, http.MethodPut, path+"/rows/1", report.EditRow{Field: "date", Value: "2024-10-20"}, &got))
	assert.Equal(t, "2024-10-20", got.CoverageRows[1].Date)

	// shrinking keeps the previous total until the next student count edit
	require.Equal(t, http.StatusOK, do(t, app, http.MethodPatch, path, map[string]string{"group_count": "2"}, &got))
	assert.Equal(t, 114, got.TotalStudents)
	require.Equal(t, http.StatusOK, do(t, app, http.MethodPut, path+"/rows/0", report.EditRow{Field: "studentCount", Value: "30"}, &got))
	assert.Equal(t, 58, got.TotalStudents)
}

func Test_reportApi_preview(t *testing.T) {
	app := setup(t)
	r := openReport(t, app)
	path := "/v1/reports/" + r.ID + "/preview"

	var got report.Report
	require.Equal(t, http.StatusOK, do(t, app, http.MethodPost, path, nil, &got))
	assert.True(t, got.PreviewOpen)
	require.Equal(t, http.StatusOK, do(t, app, http.MethodDelete, path, nil, &got))
	assert.False(t, got.PreviewOpen)
}

func Test_reportApi_export(t *testing.T) {
	app := setup(t, withExporter(failingExporter{}))
	r := openReport(t, app)
	path := "/v1/reports/" + r.ID

	t.Run("html", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, path+"/export")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename*=utf-8''%D8%AA%D9%82%D8%B1%D9%8A%D8%B1_%D8%A7%D9%84%D8%AA%D9%88%D8%AC%D9%8A%D9%87.html",
			rec.Header().Get("Content-Disposition"))
		assert.Contains(t, rec.Body.String(), "متوسطة النجاح")
	})

	t.Run("xlsx", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, path+"/export?format=xlsx")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "PK", rec.Body.String()[:2])
	})

	t.Run("failure answers no content", func(t *testing.T) {
		var before, after report.Report
		require.Equal(t, http.StatusOK, do(t, app, http.MethodPost, path+"/preview", nil, &before))

		req, rec := newRequest(http.MethodGet, path+"/export?format=broken")
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.Bytes())
		assert.Equal(t, 1, app.logger.ErrorCount())

		require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, path, nil, &after))
		assert.Equal(t, before, after)
	})
}

func Test_reportApi_close(t *testing.T) {
	app := setup(t)
	r := openReport(t, app)
	path := "/v1/reports/" + r.ID

	runHTTPTests(t, app, []httpTest{
		{name: "close", method: http.MethodDelete, path: path, wantCode: http.StatusNoContent},
		{name: "gone", method: http.MethodGet, path: path, wantCode: http.StatusNotFound},
		{name: "close twice", method: http.MethodDelete, path: path, wantCode: http.StatusNotFound},
	})
}
