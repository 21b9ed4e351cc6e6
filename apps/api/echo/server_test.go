package echoapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masdens1250/appamine/core"
)

func Test_home(t *testing.T) {
	app := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Appamine API!", rec.Body.String())
}

func Test_settingsApi(t *testing.T) {
	app := setup(t)
	runHTTPTests(t, app, []httpTest{
		{
			name: "retrieve", method: http.MethodGet, path: "/v1/settings", wantCode: http.StatusOK,
			wantData: []byte(`{"school_name":"متوسطة النجاح","counselor_name":"م. أمين"}`),
		},
		{name: "read only", method: http.MethodPut, path: "/v1/settings", body: []byte(`{}`), wantCode: http.StatusMethodNotAllowed},
	})
}

func Test_settingsApi_failures(t *testing.T) {
	t.Run("store error", func(t *testing.T) {
		app := setup(t)
		app.settings.Err = errors.New("disk full")
		assert.Equal(t, http.StatusInternalServerError, do(t, app, http.MethodGet, "/v1/settings", nil, nil))
		select {
		case <-app.ShutdownSignal():
			t.Fatal("unexpected shutdown signal")
		default:
		}
	})

	t.Run("store unreachable", func(t *testing.T) {
		app := setup(t)
		app.settings.Err = core.NewShutdownError("settings database unreachable")
		assert.Equal(t, http.StatusInternalServerError, do(t, app, http.MethodGet, "/v1/settings", nil, nil))
		select {
		case <-app.ShutdownSignal():
		case <-time.After(time.Second):
			t.Fatal("no shutdown signal")
		}
	})
}

func Test_vocabulary(t *testing.T) {
	app := setup(t)
	var vocab Vocabulary
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/v1/vocabulary", nil, &vocab))
	assert.Equal(t, []string{"الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس"}, vocab.Weekdays)
	assert.Equal(t, []string{"08:00", "09:30", "11:00", "13:30", "15:00"}, vocab.TimeSlots)
	require.Len(t, vocab.SessionTypes, 2)
	assert.Equal(t, "جلسة فردية", vocab.SessionTypes[0].Label)
	assert.ElementsMatch(t, []string{"html", "xlsx"}, vocab.ExportFormats)
	assert.Equal(t, "reject", vocab.ConflictPolicy)

	app = setup(t, withConflictPolicy("swap"))
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/v1/vocabulary", nil, &vocab))
	assert.Equal(t, "swap", vocab.ConflictPolicy)
}
