// Package app wires the pipeline together: config, logging, roster source,
// message builder, delivery core, run journal, status server and scheduler.
package app

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	logx "bdaybot/pkg/logx"

	"bdaybot/internal/config"
	"bdaybot/internal/delivery"
	"bdaybot/internal/history"
	"bdaybot/internal/message"
	"bdaybot/internal/roster"
	"bdaybot/internal/scheduler"
	"bdaybot/internal/status"
)

// webhookEnvVar supplies the webhook URL when the config file omits it.
const webhookEnvVar = "SLACK_WEBHOOK_URL"

type App struct {
	mgr    *config.Manager
	logSvc *logx.Service
	log    logx.Logger

	// mu guards the members swapped on config reload.
	mu      sync.Mutex
	source  roster.Source
	cols    roster.Columns
	builder *message.Builder

	sender    *delivery.Sender
	store     history.Store
	metrics   *status.Metrics
	statusSrv *status.Server
	sched     *scheduler.Service

	cfgCh     chan *config.Config
	watchDone chan struct{}
}

func New(cfgPath string) (*App, error) {
	a := &App{}

	a.mgr = config.NewManager(cfgPath)
	cfg, err := a.mgr.Load()
	if err != nil {
		return nil, err
	}

	a.logSvc, a.log = logx.New(loggingConfig(cfg))
	a.mgr.SetLogger(a.log.With(logx.String("comp", "config")))
	a.log.Info("bot starting", logx.String("config", cfgPath))

	webhook := resolveWebhook(cfg)
	if webhook == "" {
		// Not fatal: runs degrade to skipped until the config is fixed.
		a.log.Error("webhook url missing (config slack.webhook_url or env " + webhookEnvVar + ")")
	}
	a.sender = delivery.NewSender(deliveryConfig(cfg, webhook), a.log.With(logx.String("comp", "delivery")))

	a.applyRoster(cfg)

	a.store, err = history.Open(historyConfig(cfg), a.log.With(logx.String("comp", "history")))
	if err != nil {
		// The journal is optional plumbing; run without it.
		a.log.Error("history store unavailable", logx.Err(err))
		a.store = nil
	}

	reg := prometheus.NewRegistry()
	a.metrics = status.NewMetrics(reg)
	a.sender.OnAttempt = a.metrics.ObserveAttempt
	a.statusSrv = status.NewServer(status.Config{
		Enabled: cfg.Status.Enabled,
		Addr:    cfg.Status.Addr,
	}, reg, a.snapshot, a.log.With(logx.String("comp", "status")))

	a.sched = scheduler.New(scheduler.Config{
		Cron:     cfg.Schedule.Cron,
		Timezone: cfg.Schedule.Timezone,
	}, a.runJob, a.log.With(logx.String("comp", "scheduler")))

	return a, nil
}

// applyRoster (re)builds the roster source and message builder from config.
func (a *App) applyRoster(cfg *config.Config) {
	timeout, _ := config.ParseDurationField("roster.timeout", cfg.Roster.Timeout)
	source := roster.NewCSVSource(cfg.Roster.CSVURL, timeout, a.log.With(logx.String("comp", "roster")))
	if cfg.Roster.CSVURL == "" {
		a.log.Error("roster csv url missing (config roster.csv_url); runs will find no data")
	}
	tpl := message.LoadTemplates(cfg.Templates.Dir, a.log.With(logx.String("comp", "templates")))
	builder := message.NewBuilder(tpl, a.log.With(logx.String("comp", "builder")))

	a.mu.Lock()
	a.source = source
	a.cols = roster.Columns{
		Name:     cfg.Roster.NameColumn,
		Birthday: cfg.Roster.BirthdayColumn,
		HireDate: cfg.Roster.HireDateColumn,
	}
	a.builder = builder
	a.mu.Unlock()
}

func (a *App) Start(ctx context.Context) error {
	a.statusSrv.Start()
	if err := a.sched.Start(ctx); err != nil {
		return err
	}

	// Hot reload: watch the config file and re-apply on change.
	a.cfgCh = a.mgr.Subscribe(1)
	a.watchDone = make(chan struct{})
	go func() {
		if err := a.mgr.Watch(ctx); err != nil {
			a.log.Warn("config watch unavailable", logx.Err(err))
		}
	}()
	go func() {
		defer close(a.watchDone)
		for {
			select {
			case <-ctx.Done():
				return
			case cfg, ok := <-a.cfgCh:
				if !ok {
					return
				}
				a.applyConfig(cfg)
			}
		}
	}()
	return nil
}

func (a *App) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	a.logSvc.Apply(loggingConfig(cfg))
	a.sender.Apply(deliveryConfig(cfg, resolveWebhook(cfg)))
	a.applyRoster(cfg)
	// Schedule and storage changes need a restart; say so instead of
	// silently ignoring the edit.
	a.log.Info("config applied (schedule/storage changes take effect on restart)")
}

func (a *App) Stop(ctx context.Context) error {
	a.sched.Stop(ctx)
	a.statusSrv.Stop(ctx)
	if a.cfgCh != nil {
		a.mgr.Unsubscribe(a.cfgCh)
	}
	if a.watchDone != nil {
		select {
		case <-a.watchDone:
		case <-ctx.Done():
		}
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	a.log.Info("bot stopped")
	return a.logSvc.Close()
}

func (a *App) snapshot(ctx context.Context) status.Snapshot {
	snap := status.Snapshot{Breaker: a.sender.Breaker().State()}
	if a.store != nil {
		runs, err := a.store.Recent(ctx, 20)
		if err != nil {
			a.log.Warn("history read failed", logx.Err(err))
		} else {
			snap.Runs = runs
		}
	}
	return snap
}

// ---- config mapping ----

func resolveWebhook(cfg *config.Config) string {
	if cfg.Slack.WebhookURL != "" {
		return cfg.Slack.WebhookURL
	}
	return os.Getenv(webhookEnvVar)
}

func loggingConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func deliveryConfig(cfg *config.Config, webhook string) delivery.Config {
	// Durations were validated at load; parse errors degrade to defaults.
	cooldown, _ := config.ParseDurationField("delivery.breaker_cooldown", cfg.Delivery.BreakerCooldown)
	base, _ := config.ParseDurationField("delivery.retry_base", cfg.Delivery.RetryBase)
	timeout, _ := config.ParseDurationField("delivery.timeout", cfg.Delivery.Timeout)
	return delivery.Config{
		WebhookURL:        webhook,
		RetryMax:          cfg.Delivery.RetryMax,
		RetryBase:         base,
		RetryableStatuses: cfg.Delivery.RetryableStatuses,
		Timeout:           timeout,
		RatePerSec:        cfg.Delivery.RatePerSec,
		BreakerThreshold:  cfg.Delivery.BreakerThreshold,
		BreakerCooldown:   cooldown,
		MaxTextLen:        cfg.Delivery.MaxTextLen,
	}
}

func historyConfig(cfg *config.Config) history.Config {
	if cfg.Storage == nil {
		return history.Config{}
	}
	busy, _ := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	return history.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busy,
	}
}

// runJob adapts RunOnce for the scheduler; each tick is bounded so a hung
// webhook can never wedge the daily loop.
func (a *App) runJob(ctx context.Context) {
	rctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	a.RunOnce(rctx)
}
