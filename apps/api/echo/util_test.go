package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/masdens1250/appamine/core"
	"github.com/masdens1250/appamine/core/report"
	"github.com/masdens1250/appamine/core/schedule"
	"github.com/masdens1250/appamine/core/settings"
	"github.com/masdens1250/appamine/services/export/htmldoc"
	"github.com/masdens1250/appamine/services/export/xlsxdoc"
	"github.com/masdens1250/appamine/storage/database/inmem"
	"github.com/masdens1250/appamine/tests"
)

type testApp struct {
	Server
	reportSvc *report.Service
	logger    *testutil.Logger
	settings  *testutil.SettingsStore
}

type appOption func(conf *core.Config, exporters *[]report.Exporter)

func withExporter(exp report.Exporter) appOption {
	return func(_ *core.Config, exporters *[]report.Exporter) { *exporters = append(*exporters, exp) }
}

func withConflictPolicy(p string) appOption {
	return func(conf *core.Config, _ *[]report.Exporter) { conf.Schedule.ConflictPolicy = p }
}

func setup(t *testing.T, opts ...appOption) *testApp {
	t.Helper()

	conf := &core.Config{
		Env:      "TEST",
		TestMode: true,
		AppName:  "Appamine",
		Report:   core.ReportConfig{MaxGroupCount: 50},
	}
	exporters := []report.Exporter{htmldoc.New(), xlsxdoc.New()}
	for _, opt := range opts {
		opt(conf, &exporters)
	}
	policy, err := schedule.ParseConflictPolicy(conf.Schedule.ConflictPolicy)
	if err != nil {
		t.Fatalf("setup(): %v", err)
	}

	// set up DB & repos
	db := inmemdb.Open()
	store := testutil.NewSettingsStore(&settings.Settings{SchoolName: "متوسطة النجاح", CounselorName: "م. أمين"})
	logger := &testutil.Logger{}

	// set up services
	settingsSvc := settings.NewService(store)
	reportSvc := report.NewService(inmemdb.NewReportRepository(db), settingsSvc, logger, report.TotalOnStudentEdit, exporters...)
	scheduleSvc := schedule.NewService(inmemdb.NewScheduleRepository(db), logger, policy)
	t.Cleanup(reportSvc.WaitPending)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)

	// set up server
	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		ReportSvc:      reportSvc,
		ScheduleSvc:    scheduleSvc,
		SettingsSvc:    settingsSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return &testApp{Server: server, reportSvc: reportSvc, logger: logger, settings: store}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

// do runs a request and decodes the JSON answer into out (when not nil).
func do(t *testing.T, app http.Handler, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var data []byte
	if body != nil {
		data = marchallObj(t, body)
	}
	req, rec := newRequest(method, path, data)
	app.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("do(%s %s): %v; body %s", method, path, err, rec.Body.String())
		}
	}
	return rec.Code
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app http.Handler, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func jsonUnmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
