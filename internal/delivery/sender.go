package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	logx "bdaybot/pkg/logx"

	"bdaybot/internal/message"
)

// Config controls the send path policy.
//
// Defaults (applied when fields are zero):
//   - RetryMax: 2 (3 total attempts)
//   - RetryBase: 1s (doubled per attempt)
//   - RetryableStatuses: 500, 502, 503, 504
//   - Timeout: 10s
//   - RatePerSec: 1
//   - BreakerThreshold: 5
//   - BreakerCooldown: 5m
//   - MaxTextLen: 500
type Config struct {
	WebhookURL        string
	RetryMax          int
	RetryBase         time.Duration
	RetryableStatuses []int
	Timeout           time.Duration
	RatePerSec        int
	BreakerThreshold  int
	BreakerCooldown   time.Duration
	MaxTextLen        int
}

func (c Config) withDefaults() Config {
	if c.RetryMax < 0 {
		c.RetryMax = 0
	} else if c.RetryMax == 0 {
		c.RetryMax = 2
	}
	if c.RetryBase <= 0 {
		c.RetryBase = time.Second
	}
	if len(c.RetryableStatuses) == 0 {
		c.RetryableStatuses = []int{500, 502, 503, 504}
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.RatePerSec <= 0 {
		c.RatePerSec = 1
	}
	return c
}

// Sender issues the one logical POST per run, guarded by the breaker and the
// validator and padded with bounded retries.
//
// Safe for concurrent use; the daily schedule only ever runs one send at a
// time, but config reloads and the status server touch it from other
// goroutines.
type Sender struct {
	mu      sync.Mutex
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter

	breaker   *Breaker
	validator *Validator
	log       logx.Logger

	// OnAttempt, when set, observes every HTTP attempt (metrics hook).
	// status is 0 for network-level errors.
	OnAttempt func(status int, err error)

	// sleep is injectable so tests don't wait out real backoff.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewSender(cfg Config, log logx.Logger) *Sender {
	if log.IsZero() {
		log = logx.Nop()
	}
	cfg = cfg.withDefaults()
	s := &Sender{
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
		breaker:   NewBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown),
		validator: NewValidator(cfg.MaxTextLen, log),
		log:       log,
		sleep:     sleepCtx,
	}
	return s
}

// Apply updates the send policy at runtime. The breaker keeps its failure
// count across reloads.
func (s *Sender) Apply(cfg Config) {
	cfg = cfg.withDefaults()
	s.mu.Lock()
	s.cfg = cfg
	s.client = &http.Client{Timeout: cfg.Timeout}
	s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
	s.validator = NewValidator(cfg.MaxTextLen, s.log)
	s.mu.Unlock()
	s.breaker.Configure(cfg.BreakerThreshold, cfg.BreakerCooldown)
}

// Breaker exposes the breaker for status snapshots.
func (s *Sender) Breaker() *Breaker { return s.breaker }

// Send delivers the payload, whole or not at all.
//
// Gate order is fixed: breaker, absence, validation, POST. A failed outcome
// is never re-queued; the next scheduled day is the only retry at this level.
func (s *Sender) Send(ctx context.Context, p *message.Payload) Outcome {
	s.mu.Lock()
	cfg := s.cfg
	client := s.client
	lim := s.limiter
	validator := s.validator
	s.mu.Unlock()

	if s.breaker.IsOpen() {
		s.log.Error("circuit breaker open, skipping message")
		return Skipped(ReasonCircuitOpen)
	}
	if p == nil {
		s.log.Info("nothing to report today")
		return Skipped(ReasonNothingToReport)
	}
	if !validator.Validate(p) {
		return Skipped(ReasonValidationFailed)
	}
	if strings.TrimSpace(cfg.WebhookURL) == "" {
		s.log.Error("webhook url not configured, skipping message")
		return Skipped(ReasonNotConfigured)
	}

	body, err := json.Marshal(p)
	if err != nil {
		// Payloads are plain structs; this only fires on programmer error.
		s.log.Error("payload marshal failed", logx.Err(err))
		return Failed(ReasonNetworkError, err.Error())
	}

	attempts := 1 + cfg.RetryMax
	var (
		lastStatus int
		lastDetail string
		lastErr    error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := lim.Wait(ctx); err != nil {
			s.breaker.RecordFailure()
			return Failed(ReasonNetworkError, err.Error())
		}

		status, detail, err := s.post(ctx, client, cfg.WebhookURL, body)
		if s.OnAttempt != nil {
			s.OnAttempt(status, err)
		}

		if err == nil && status >= 200 && status < 300 {
			s.breaker.Reset()
			s.log.Info("message sent", logx.Int("status", status), logx.Int("attempt", attempt))
			return Sent()
		}

		lastStatus, lastDetail, lastErr = status, detail, err
		retryable := err != nil || containsStatus(cfg.RetryableStatuses, status)
		if !retryable || attempt == attempts {
			break
		}

		// Exponential backoff, factor 2.
		delay := cfg.RetryBase << (attempt - 1)
		s.log.Warn("send attempt failed, retrying",
			logx.Int("status", status), logx.Err(err),
			logx.Int("attempt", attempt), logx.Duration("backoff", delay))
		if err := s.sleep(ctx, delay); err != nil {
			s.breaker.RecordFailure()
			return Failed(ReasonNetworkError, err.Error())
		}
	}

	// One logical send, one breaker failure, no matter how many sub-attempts.
	s.breaker.RecordFailure()
	if lastErr != nil {
		s.log.Error("network error sending message", logx.Err(lastErr))
		return Failed(ReasonNetworkError, lastErr.Error())
	}
	detail := fmt.Sprintf("status %d: %s", lastStatus, lastDetail)
	s.log.Error("http error sending message",
		logx.Int("status", lastStatus), logx.String("response", lastDetail))
	return Failed(ReasonHTTPError, detail)
}

// post issues a single attempt. The response body is captured (bounded) for
// logging on failure.
func (s *Sender) post(ctx context.Context, client *http.Client, url string, body []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return resp.StatusCode, strings.TrimSpace(string(b)), nil
}

func containsStatus(set []int, status int) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
