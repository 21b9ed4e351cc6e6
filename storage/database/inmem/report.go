package inmemdb

import (
	"context"

	"github.com/masdens1250/appamine/core/report"
)

type reportRepository struct {
	db *reportTable
}

func NewReportRepository(db *DB) report.Repository {
	return &reportRepository{db: db.report}
}

func (repo *reportRepository) CreateReport(_ context.Context, r *report.Report) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	snap := r.Snapshot()
	repo.db.t[r.ID] = &reportEntry{report: &snap, touchedAt: nowFunc()}
	return nil
}

func (repo *reportRepository) GetReport(_ context.Context, id string) (report.Report, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if e, ok := repo.db.t[id]; ok {
		return e.report.Snapshot(), nil
	}
	return report.Report{}, report.ErrNotFound
}

// UpdateReport runs fn on a copy and stores it only when fn succeeds.
func (repo *reportRepository) UpdateReport(_ context.Context, id string, fn func(r *report.Report) error) (report.Report, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	e, ok := repo.db.t[id]
	if !ok {
		return report.Report{}, report.ErrNotFound
	}
	r := e.report.Snapshot()
	if err := fn(&r); err != nil {
		return report.Report{}, err
	}
	e.report = &r
	e.touchedAt = nowFunc()
	return r.Snapshot(), nil
}

func (repo *reportRepository) DeleteReport(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.t[id]; !ok {
		return report.ErrNotFound
	}
	delete(repo.db.t, id)
	return nil
}

func (repo *reportRepository) CountReports(_ context.Context) int {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.t)
}
