package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	logx "bdaybot/pkg/logx"

	"bdaybot/internal/delivery"
	"bdaybot/internal/history"
	"bdaybot/internal/roster"
)

// RunOnce executes one full pipeline pass: fetch roster, match today's
// dates, build the payload, send it, record the outcome.
//
// Every external-boundary failure inside the pass is caught, logged and
// converted into a neutral result; the universal fallback for anything going
// wrong is silence (no message today), never a crash.
func (a *App) RunOnce(ctx context.Context) delivery.Outcome {
	runID := uuid.NewString()
	log := a.log.With(logx.String("run_id", runID))
	start := time.Now()

	a.mu.Lock()
	source := a.source
	cols := a.cols
	builder := a.builder
	a.mu.Unlock()

	today := start.In(a.sched.Location())
	log.Info("run started", logx.Time("today", today))

	table, err := source.Fetch(ctx)
	if err != nil {
		// Treated as "no data": the run continues and finds nothing.
		log.Error("roster unavailable", logx.Err(err))
		table = roster.Table{}
	}
	people := roster.People(table, cols, log)
	matches := roster.MatchDay(people, today)
	log.Info("roster matched",
		logx.Int("people", len(people)),
		logx.Int("birthdays", len(matches.Birthdays)),
		logx.Int("anniversaries", len(matches.Anniversaries)))
	a.metrics.Matches.WithLabelValues("birthday").Add(float64(len(matches.Birthdays)))
	a.metrics.Matches.WithLabelValues("anniversary").Add(float64(len(matches.Anniversaries)))

	payload := builder.Build(matches)
	outcome := a.sender.Send(ctx, payload)

	a.metrics.Runs.WithLabelValues(outcome.Status.String(), string(outcome.Reason)).Inc()
	switch outcome.Status {
	case delivery.StatusFailed:
		log.Error("run finished",
			logx.String("outcome", outcome.Status.String()),
			logx.String("reason", string(outcome.Reason)),
			logx.String("detail", outcome.Detail),
			logx.Duration("took", time.Since(start)))
	default:
		log.Info("run finished",
			logx.String("outcome", outcome.Status.String()),
			logx.String("reason", string(outcome.Reason)),
			logx.Duration("took", time.Since(start)))
	}

	a.record(history.Entry{
		RunID:         runID,
		At:            start,
		Status:        outcome.Status.String(),
		Reason:        string(outcome.Reason),
		Detail:        outcome.Detail,
		Birthdays:     len(matches.Birthdays),
		Anniversaries: len(matches.Anniversaries),
	})
	return outcome
}

// record journals the run, best-effort.
func (a *App) record(e history.Entry) {
	if a.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.store.Append(ctx, e); err != nil {
		a.log.Warn("history write failed", logx.Err(err))
	}
}
