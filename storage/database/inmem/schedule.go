package inmemdb

import (
	"context"

	"github.com/masdens1250/appamine/core/schedule"
)

type scheduleRepository struct {
	db *scheduleTable
}

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db.schedule}
}

func (repo *scheduleRepository) CreateGrid(_ context.Context, g *schedule.Grid) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.t[g.ID()] = &gridEntry{grid: g.Clone(), touchedAt: nowFunc()}
	return nil
}

func (repo *scheduleRepository) GetGrid(_ context.Context, id string) (*schedule.Grid, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if e, ok := repo.db.t[id]; ok {
		return e.grid.Clone(), nil
	}
	return nil, schedule.ErrNotFound
}

// UpdateGrid runs fn on a copy and stores it only when fn succeeds.
func (repo *scheduleRepository) UpdateGrid(_ context.Context, id string, fn func(g *schedule.Grid) error) (*schedule.Grid, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	e, ok := repo.db.t[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	g := e.grid.Clone()
	if err := fn(g); err != nil {
		return nil, err
	}
	e.grid = g
	e.touchedAt = nowFunc()
	return g.Clone(), nil
}

func (repo *scheduleRepository) DeleteGrid(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.t[id]; !ok {
		return schedule.ErrNotFound
	}
	delete(repo.db.t, id)
	return nil
}

func (repo *scheduleRepository) CountGrids(_ context.Context) int {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.t)
}
