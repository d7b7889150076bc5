package service

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// SchedulerService drives background jobs such as the demo reset. A job
// never overlaps a still-running run of itself; panics are logged.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	logger := cron.PrintfLogger(log.StandardLogger())
	return &SchedulerService{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ScheduleInterval runs job every interval, rounded down to whole seconds
// with a floor of one second. The first run is one interval after Start.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("schedule: interval must be positive, got %s", interval)
	}
	return s.cron.Schedule(cron.Every(interval), cron.FuncJob(job)), nil
}

// Entries reports the registered jobs and their next run times.
func (s *SchedulerService) Entries() []cron.Entry {
	return s.cron.Entries()
}
