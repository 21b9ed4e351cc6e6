package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string
		RollbarToken string
		WorkDir      string

		Server   ServerConfig
		Settings SettingsConfig
		Database DatabaseConfig
		Report   ReportConfig
		Schedule ScheduleConfig
		Views    ViewsConfig
	}

	ServerConfig struct {
		Host            string
		Address         string
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	SettingsConfig struct {
		Backend string // file (default), sql, memory
		File    string
	}

	DatabaseConfig struct {
		Engine string // postgres, sqlite
		DSN    string
	}

	ReportConfig struct {
		RecomputeTotalOnResize bool
		MaxGroupCount          int
	}

	ScheduleConfig struct {
		ConflictPolicy string // reject (default), overwrite, swap
	}

	ViewsConfig struct {
		TTL           time.Duration
		SweepInterval time.Duration
	}
)

func newViper() (*viper.Viper, string) {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Appamine")
	conf.SetDefault("build", "develop")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("settings.backend", "file")
	conf.SetDefault("settings.file", filepath.Join("config", "settings.yaml"))
	conf.SetDefault("database.engine", "sqlite")
	conf.SetDefault("database.dsn", "file:appamine.db?cache=shared")
	conf.SetDefault("report.recomputeTotalOnResize", false)
	conf.SetDefault("report.maxGroupCount", 200)
	conf.SetDefault("schedule.conflictPolicy", "reject")
	conf.SetDefault("views.ttl", 12*time.Hour)
	conf.SetDefault("views.sweepInterval", 10*time.Minute)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return conf, env
}

// NewConfig loads the configuration from defaults, the optional `config/.env.<env>` file and the environment.
func NewConfig() *Config {
	conf, env := newViper()
	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	settingsFile := conf.GetString("settings.file")
	if !filepath.IsAbs(settingsFile) {
		settingsFile = filepath.Join(wd, settingsFile)
	}

	return &Config{
		Env:          env,
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		RollbarToken: conf.GetString("rollbarToken"),
		WorkDir:      wd,
		Server: ServerConfig{
			Host:            conf.GetString("server.host"),
			Address:         conf.GetString("server.address"),
			DebugHost:       conf.GetString("server.debugHost"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
		},
		Settings: SettingsConfig{
			Backend: strings.ToLower(conf.GetString("settings.backend")),
			File:    settingsFile,
		},
		Database: DatabaseConfig{
			Engine: strings.ToLower(conf.GetString("database.engine")),
			DSN:    conf.GetString("database.dsn"),
		},
		Report: ReportConfig{
			RecomputeTotalOnResize: conf.GetBool("report.recomputeTotalOnResize"),
			MaxGroupCount:          conf.GetInt("report.maxGroupCount"),
		},
		Schedule: ScheduleConfig{
			ConflictPolicy: strings.ToLower(conf.GetString("schedule.conflictPolicy")),
		},
		Views: ViewsConfig{
			TTL:           conf.GetDuration("views.ttl"),
			SweepInterval: conf.GetDuration("views.sweepInterval"),
		},
	}
}
