package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masdens1250/appamine/core"
	"github.com/masdens1250/appamine/core/report"
	"github.com/masdens1250/appamine/core/settings"
	"github.com/masdens1250/appamine/services/export/htmldoc"
	"github.com/masdens1250/appamine/services/export/xlsxdoc"
	"github.com/masdens1250/appamine/storage/database/inmem"
	"github.com/masdens1250/appamine/tests"
)

type testCLI struct {
	*commandLine
	out   *bytes.Buffer
	store *testutil.SettingsStore
}

func setup(t *testing.T, initial *settings.Settings) *testCLI {
	t.Helper()
	store := testutil.NewSettingsStore(initial)
	settingsSvc := settings.NewService(store)
	out := &bytes.Buffer{}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	conf := &core.Config{
		Database: core.DatabaseConfig{Engine: "sqlite", DSN: "file:" + filepath.Join(t.TempDir(), "admin.db")},
	}
	reportSvc := report.NewService(inmemdb.NewReportRepository(inmemdb.Open()), settingsSvc, &testutil.Logger{},
		report.TotalOnStudentEdit, htmldoc.New(), xlsxdoc.New())

	cli := &commandLine{
		conf:        conf,
		settingsSvc: settingsSvc,
		reportSvc:   reportSvc,
		validate:    validate,
		translator:  translator,
		out:         out,
	}
	return &testCLI{commandLine: cli, out: out, store: store}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *testCLI, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
			case err != nil:
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli := setup(t, nil)
	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "settings without subcommand", args: []string{"settings"}, wantErr: errHelp},
		{name: "unknown settings subcommand", args: []string{"settings", "drop"}, wantErr: errHelp},
		{name: "set without flags", args: []string{"settings", "set"}, wantErr: errHelp},
		{name: "help flag", args: []string{"settings", "set", "-h"}, wantErr: errHelp},
		{name: "export without input", args: []string{"export"}, wantErr: errHelp},
	})
	assert.Contains(t, cli.out.String(), "Usage:")
}

func Test_commandLine_settings(t *testing.T) {
	cli := setup(t, &settings.Settings{SchoolName: "متوسطة الأمير", CounselorName: "أ. كريم"})

	require.NoError(t, cli.run([]string{"admin", "settings", "show"}))
	assert.Equal(t, "school_name: متوسطة الأمير\ncounselor_name: أ. كريم\n", cli.out.String())

	cli.out.Reset()
	require.NoError(t, cli.run([]string{"admin", "settings", "set", "-counselor", "  أ. ليلى "}))
	assert.Equal(t, "school_name: متوسطة الأمير\ncounselor_name: أ. ليلى\n", cli.out.String())

	err := cli.run([]string{"admin", "settings", "set", "-school", strings.Repeat("م", 201)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "school_name: ")

	runCLITests(t, cli, []cliTest{
		{name: "unknown flag", args: []string{"settings", "set", "-city", "x"}, wantErrStr: "flag provided but not defined: -city"},
	})

	// an explicit empty value clears the name, the other one is kept
	cli.out.Reset()
	require.NoError(t, cli.run([]string{"admin", "settings", "set", "-school", "   "}))
	assert.Equal(t, "school_name: \"\"\ncounselor_name: أ. ليلى\n", cli.out.String())
}

func Test_commandLine_settings_empty(t *testing.T) {
	cli := setup(t, nil)
	require.NoError(t, cli.run([]string{"admin", "settings", "show"}))
	assert.Equal(t, "school_name: \"\"\ncounselor_name: \"\"\n", cli.out.String())
}

func writeReport(t *testing.T, r report.Report) string {
	t.Helper()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func Test_commandLine_export(t *testing.T) {
	cli := setup(t, &settings.Settings{SchoolName: "متوسطة الأمير", CounselorName: "أ. كريم"})
	in := writeReport(t, report.Report{
		Counselor:    "أ. سعاد",
		AcademicYear: "2025/2026",
		GroupCount:   2,
		CoverageRows: []report.CoverageRow{{Group: 1, StudentCount: 31}},
		Observations: "ملاحظة",
	})
	isTerminalFunc = func(io.Writer) bool { return false }
	t.Cleanup(func() { isTerminalFunc = isTerminal })

	t.Run("html to stdout", func(t *testing.T) {
		cli.out.Reset()
		require.NoError(t, cli.run([]string{"admin", "export", "-in", in}))
		body := cli.out.String()
		// empty school prefilled, counselor kept
		assert.Contains(t, body, "متوسطة الأمير")
		assert.Contains(t, body, "أ. سعاد")
		assert.NotContains(t, body, "أ. كريم")
		assert.Contains(t, body, "2025/2026")
	})

	t.Run("no prefill", func(t *testing.T) {
		cli.out.Reset()
		require.NoError(t, cli.run([]string{"admin", "export", "-in", in, "-prefill=false"}))
		assert.NotContains(t, cli.out.String(), "متوسطة الأمير")
	})

	t.Run("xlsx to file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "report.xlsx")
		require.NoError(t, cli.run([]string{"admin", "export", "-in", in, "-format", "xlsx", "-out", out}))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "PK", string(data[:2]))
	})

	t.Run("xlsx to a terminal", func(t *testing.T) {
		isTerminalFunc = func(io.Writer) bool { return true }
		defer func() { isTerminalFunc = func(io.Writer) bool { return false } }()

		err := cli.run([]string{"admin", "export", "-in", in, "-format", "xlsx"})
		require.Error(t, err)
		assert.Equal(t, "refusing to write xlsx to a terminal, use -out", err.Error())
	})

	runCLITests(t, cli, []cliTest{
		{name: "unknown format", args: []string{"export", "-in", in, "-format", "pdf"}, wantErr: report.ErrUnknownFormat},
	})
}

func Test_commandLine_export_badInput(t *testing.T) {
	cli := setup(t, nil)
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	err := cli.run([]string{"admin", "export", "-in", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding")

	err = cli.run([]string{"admin", "export", "-in", filepath.Join(t.TempDir(), "nope.json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading report")
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t, nil)
	require.NoError(t, cli.run([]string{"admin", "migrate"}))
	assert.Equal(t, "sqlite database is up to date\n", cli.out.String())

	// twice is fine
	require.NoError(t, cli.run([]string{"admin", "migrate"}))

	cli.conf.Database.Engine = "oracle"
	assert.Error(t, cli.run([]string{"admin", "migrate"}))
}
