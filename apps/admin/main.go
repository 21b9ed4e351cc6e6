package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/masdens1250/appamine/core"
	"github.com/masdens1250/appamine/core/report"
	"github.com/masdens1250/appamine/core/settings"
	"github.com/masdens1250/appamine/services/export/htmldoc"
	"github.com/masdens1250/appamine/services/export/xlsxdoc"
	logsvc "github.com/masdens1250/appamine/services/logger"
	"github.com/masdens1250/appamine/storage"
	"github.com/masdens1250/appamine/storage/database/inmem"
)

func main() {
	conf := core.NewConfig()

	// diagnostics go to stderr, stdout may carry a document
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up stores
	memDB := inmemdb.Open()
	settingsRepo, closer, err := storage.OpenSettingsRepository(context.Background(), conf, memDB)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}

	totalPolicy := report.TotalOnStudentEdit
	if conf.Report.RecomputeTotalOnResize {
		totalPolicy = report.TotalOnRowChange
	}
	settingsSvc := settings.NewService(settingsRepo)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		conf:        conf,
		settingsSvc: settingsSvc,
		reportSvc:   report.NewService(inmemdb.NewReportRepository(memDB), settingsSvc, logger, totalPolicy, htmldoc.New(), xlsxdoc.New()),
		validate:    validate,
		translator:  translator,
		out:         os.Stdout,
	}
	err = cli.run(os.Args)
	if err != nil && err != errHelp {
		logger.Error("admin command failed", err)
	}
	_ = closer.Close()
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}
