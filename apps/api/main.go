package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	prom "github.com/prometheus/client_golang/prometheus"

	echoapi "github.com/masdens1250/appamine/apps/api/echo"
	"github.com/masdens1250/appamine/core"
	"github.com/masdens1250/appamine/core/report"
	"github.com/masdens1250/appamine/core/schedule"
	"github.com/masdens1250/appamine/core/settings"
	"github.com/masdens1250/appamine/services/export/htmldoc"
	"github.com/masdens1250/appamine/services/export/xlsxdoc"
	"github.com/masdens1250/appamine/services/janitor"
	logsvc "github.com/masdens1250/appamine/services/logger"
	"github.com/masdens1250/appamine/services/metrics"
	"github.com/masdens1250/appamine/storage"
	"github.com/masdens1250/appamine/storage/database/inmem"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	defer logger.Close()

	totalPolicy := report.TotalOnStudentEdit
	if conf.Report.RecomputeTotalOnResize {
		totalPolicy = report.TotalOnRowChange
	}
	conflictPolicy, err := schedule.ParseConflictPolicy(conf.Schedule.ConflictPolicy)
	if err != nil {
		logger.Fatal(fmt.Sprintf("reading schedule config: %v", err), err)
	}

	// set up stores
	memDB := inmemdb.Open()
	settingsRepo, settingsCloser, err := storage.OpenSettingsRepository(context.Background(), conf, memDB)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up settings store: %v", err), err)
	}
	defer func() {
		if err = settingsCloser.Close(); err != nil {
			logger.Error("closing settings store", err)
		}
	}()

	// set up services
	recorder := metrics.NewRecorder(prom.NewRegistry())
	settingsSvc := settings.NewService(settingsRepo)
	reportSvc := report.NewService(
		inmemdb.NewReportRepository(memDB),
		settingsSvc,
		logger,
		totalPolicy,
		htmldoc.New(),
		xlsxdoc.New(),
	)
	reportSvc.SetRecorder(recorder)
	scheduleSvc := schedule.NewService(inmemdb.NewScheduleRepository(memDB), logger, conflictPolicy)
	scheduleSvc.SetRecorder(recorder)
	recorder.WatchViews("report", reportSvc)
	recorder.WatchViews("schedule", scheduleSvc)

	jan, err := janitor.New(memDB, recorder, logger, conf.Views)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up views janitor: %v", err), err)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)

	jan.Start()
	defer func() {
		if err = jan.Stop(); err != nil {
			logger.Error("stopping views janitor", err)
		}
	}()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("settings_backend").Set(conf.Settings.Backend)
	expvar.NewString("conflict_policy").Set(conflictPolicy.String())

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			ReportSvc:   reportSvc,
			ScheduleSvc: scheduleSvc,
			SettingsSvc: settingsSvc,
			Metrics:     recorder.Handler(),
			Validate:    validate,
			Translator:  translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
		// let pending settings loads land before the stores close
		reportSvc.WaitPending()
	}
}
