package inmemdb

import (
	"sync"
	"time"

	"github.com/masdens1250/appamine/core/report"
	"github.com/masdens1250/appamine/core/schedule"
	"github.com/masdens1250/appamine/core/settings"
)

var nowFunc = time.Now

type (
	// DB holds the open views and, for the memory backend, the settings.
	// Nothing survives the process.
	DB struct {
		report   *reportTable
		schedule *scheduleTable
		settings *settingsTable
	}

	reportTable struct {
		t     map[string]*reportEntry
		mutex sync.RWMutex
	}

	reportEntry struct {
		report    *report.Report
		touchedAt time.Time
	}

	scheduleTable struct {
		t     map[string]*gridEntry
		mutex sync.RWMutex
	}

	gridEntry struct {
		grid      *schedule.Grid
		touchedAt time.Time
	}

	settingsTable struct {
		s     *settings.Settings
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		report:   &reportTable{t: make(map[string]*reportEntry)},
		schedule: &scheduleTable{t: make(map[string]*gridEntry)},
		settings: &settingsTable{},
	}
}

// Sweep drops the views nobody touched for ttl and returns how many were dropped.
func (db *DB) Sweep(ttl time.Duration) int {
	deadline := nowFunc().Add(-ttl)
	n := 0

	db.report.mutex.Lock()
	for id, e := range db.report.t {
		if e.touchedAt.Before(deadline) {
			delete(db.report.t, id)
			n++
		}
	}
	db.report.mutex.Unlock()

	db.schedule.mutex.Lock()
	for id, e := range db.schedule.t {
		if e.touchedAt.Before(deadline) {
			delete(db.schedule.t, id)
			n++
		}
	}
	db.schedule.mutex.Unlock()

	return n
}
