// Package scheduler triggers the daily pipeline run.
//
// One cron entry, one job. Ticks never overlap: if a run is still in flight
// when the next tick fires (clock skew, very slow webhook), the tick is
// skipped and logged rather than queued.
package scheduler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "bdaybot/pkg/logx"
)

// defaultSpec posts at 08:00 local time.
const defaultSpec = "0 8 * * *"

type Config struct {
	Cron     string
	Timezone string
}

type Service struct {
	cfg    Config
	log    logx.Logger
	job    func(ctx context.Context)
	parser cron.Parser

	mu      sync.Mutex
	c       *cron.Cron
	runCtx  context.Context
	cancel  context.CancelFunc
	running sync.Mutex // held while a job runs; TryLock gates overlap
}

func New(cfg Config, job func(ctx context.Context), log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg: cfg,
		log: log,
		job: job,
		// SecondOptional allows both 5-field and 6-field (with seconds) cron specs.
		parser: cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

// Spec returns the effective cron spec.
func (s *Service) Spec() string {
	if spec := strings.TrimSpace(s.cfg.Cron); spec != "" {
		return spec
	}
	return defaultSpec
}

// Location resolves the configured timezone, falling back to local time on
// an unknown zone (logged, not fatal).
func (s *Service) Location() *time.Location {
	tz := strings.TrimSpace(s.cfg.Timezone)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.log.Warn("unknown timezone, using local", logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}

	spec := s.Spec()
	loc := s.Location()
	s.runCtx, s.cancel = context.WithCancel(ctx)
	runCtx := s.runCtx

	c := cron.New(cron.WithParser(s.parser), cron.WithLocation(loc))
	if _, err := c.AddFunc(spec, func() { s.tick(runCtx) }); err != nil {
		s.cancel()
		s.runCtx, s.cancel = nil, nil
		return err
	}
	s.c = c
	c.Start()
	s.log.Info("scheduler started", logx.String("spec", spec), logx.String("tz", loc.String()))
	return nil
}

func (s *Service) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if !s.running.TryLock() {
		s.log.Warn("previous run still in progress, skipping tick")
		return
	}
	defer s.running.Unlock()
	s.job(ctx)
}

func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	cancel := s.cancel
	s.c, s.runCtx, s.cancel = nil, nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
	s.log.Info("scheduler stopped")
}
