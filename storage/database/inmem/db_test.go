package inmemdb

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masdens1250/appamine/core/report"
	"github.com/masdens1250/appamine/core/schedule"
)

func TestDB_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	db := Open()
	reports := NewReportRepository(db)
	grids := NewScheduleRepository(db)

	require.NoError(t, reports.CreateReport(ctx, report.New("old", report.TotalOnStudentEdit)))
	require.NoError(t, grids.CreateGrid(ctx, schedule.NewGrid("old", schedule.ConflictReject)))

	now = now.Add(2 * time.Hour)
	require.NoError(t, reports.CreateReport(ctx, report.New("new", report.TotalOnStudentEdit)))
	require.NoError(t, grids.CreateGrid(ctx, schedule.NewGrid("touched", schedule.ConflictReject)))
	require.NoError(t, grids.CreateGrid(ctx, schedule.NewGrid("new", schedule.ConflictReject)))

	now = now.Add(30 * time.Minute)
	_, err := grids.UpdateGrid(ctx, "touched", func(g *schedule.Grid) error { return nil })
	require.NoError(t, err)

	now = now.Add(time.Hour)
	assert.Equal(t, 2, db.Sweep(90*time.Minute)) // both "old", and "new" created 1h30 ago stays

	_, err = reports.GetReport(ctx, "old")
	assert.Equal(t, report.ErrNotFound, err)
	_, err = grids.GetGrid(ctx, "old")
	assert.Equal(t, schedule.ErrNotFound, err)
	assert.Equal(t, 1, reports.CountReports(ctx))
	assert.Equal(t, 2, grids.CountGrids(ctx))
}

func TestReportRepository_UpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository(Open())
	require.NoError(t, repo.CreateReport(ctx, report.New("r", report.TotalOnStudentEdit)))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpdateReport(ctx, "r", func(r *report.Report) error {
				return r.EditCoverageRow(0, report.FieldStudentCount, itoa(r.CoverageRows[0].StudentCount+1))
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	r, err := repo.GetReport(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, 50, r.TotalStudents)
}

func TestReportRepository_FailedUpdateIsDiscarded(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository(Open())
	require.NoError(t, repo.CreateReport(ctx, report.New("r", report.TotalOnStudentEdit)))

	_, err := repo.UpdateReport(ctx, "r", func(r *report.Report) error {
		r.Observations = "half done"
		return errors.New("nope")
	})
	require.Error(t, err)

	r, err := repo.GetReport(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, "", r.Observations)
}

func TestReportRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository(Open())
	require.NoError(t, repo.CreateReport(ctx, report.New("r", report.TotalOnStudentEdit)))

	r, err := repo.GetReport(ctx, "r")
	require.NoError(t, err)
	r.CoverageRows[0].Objectives = "mutated outside"

	r, err = repo.GetReport(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, "", r.CoverageRows[0].Objectives)
}

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(Open())

	_, err := repo.GetSettings(ctx)
	assert.Error(t, err)

	require.NoError(t, repo.SaveSettings(ctx, settingsFixture))
	s, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settingsFixture, s)
}
