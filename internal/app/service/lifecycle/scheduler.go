package lifecycle

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/roadfile/compliance/pkg/config"
)

// Scheduler triggers the three daily jobs on independent cron entries. Each
// trigger is fire-and-forget: an error or panic inside one job is logged and
// never blocks the other jobs' future runs.
type Scheduler struct {
	cron *cron.Cron
	svc  *Service
	log  *zap.SugaredLogger
	cfg  *config.Config
}

func NewScheduler(svc *Service, cfg *config.Config, log *zap.SugaredLogger) *Scheduler {
	c := cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(zap.NewStdLog(log.Desugar())))))
	return &Scheduler{cron: c, svc: svc, log: log, cfg: cfg}
}

// Start registers the job entries and starts the cron loop.
func (s *Scheduler) Start() {
	entries := []struct {
		name string
		spec string
	}{
		{JobSweep, s.cfg.Schedules.Sweep},
		{JobNotifier, s.cfg.Schedules.Notifier},
		{JobRenewer, s.cfg.Schedules.Renewer},
	}
	for _, e := range entries {
		name := e.name
		if _, err := s.cron.AddFunc(e.spec, func() { s.runJob(name) }); err != nil {
			s.log.Errorw("failed to schedule job", "job", name, "spec", e.spec, "err", err)
			continue
		}
		s.log.Infow("scheduled job", "job", name, "spec", e.spec)
	}
	s.cron.Start()
}

func (s *Scheduler) runJob(name string) {
	s.log.Infow("job starting", "job", name)
	if err := s.svc.RunJob(context.Background(), name); err != nil {
		s.log.Errorw("job failed", "job", name, "err", err)
		return
	}
	s.log.Infow("job finished", "job", name)
}

// Stop halts the cron loop; the returned context completes once running jobs
// drain.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
