// Package janitor periodically drops the views nobody used for a while.
package janitor

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"

	"github.com/masdens1250/appamine/core"
)

type (
	// Sweeper drops the views idle for longer than ttl and returns how many it dropped.
	Sweeper interface {
		Sweep(ttl time.Duration) int
	}

	// Recorder receives the number of dropped views (metrics).
	Recorder interface {
		AddExpired(n int)
	}

	Janitor struct {
		scheduler gocron.Scheduler
		sweeper   Sweeper
		recorder  Recorder
		logger    core.Logger
		ttl       time.Duration
	}
)

func New(sweeper Sweeper, rec Recorder, logger core.Logger, conf core.ViewsConfig) (*Janitor, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.Wrap(err, "creating scheduler")
	}
	j := &Janitor{
		scheduler: s,
		sweeper:   sweeper,
		recorder:  rec,
		logger:    logger,
		ttl:       conf.TTL,
	}
	_, err = s.NewJob(
		gocron.DurationJob(conf.SweepInterval),
		gocron.NewTask(j.Sweep),
		gocron.WithName("views-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, errors.Wrap(err, "scheduling views sweep")
	}
	return j, nil
}

func (j *Janitor) Start() {
	j.scheduler.Start()
}

func (j *Janitor) Stop() error {
	return j.scheduler.Shutdown()
}

// Sweep runs one pass.
func (j *Janitor) Sweep() int {
	n := j.sweeper.Sweep(j.ttl)
	if n > 0 {
		j.logger.Info(fmt.Sprintf("dropped %d idle views", n))
	}
	if j.recorder != nil {
		j.recorder.AddExpired(n)
	}
	return n
}
