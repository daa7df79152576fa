package delivery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	logx "bdaybot/pkg/logx"
)

func newTestSender(url string) *Sender {
	s := NewSender(Config{
		WebhookURL: url,
		RetryBase:  time.Millisecond,
		RatePerSec: 1000,
	}, logx.Nop())
	s.sleep = func(context.Context, time.Duration) error { return nil }
	return s
}

func TestSendSuccessResetsBreaker(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := newTestSender(srv.URL)
	s.Breaker().RecordFailure()
	s.Breaker().RecordFailure()

	got := s.Send(context.Background(), sectionPayload("Amina"))
	if got.Status != StatusSent {
		t.Fatalf("outcome = %+v, want sent", got)
	}
	if n := s.Breaker().State().Failures; n != 0 {
		t.Fatalf("breaker failures = %d after success, want 0", n)
	}
}

func TestSendRetriesThenFailsOn503(t *testing.T) {
	t.Parallel()
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := newTestSender(srv.URL)
	got := s.Send(context.Background(), sectionPayload("Amina"))

	if got.Status != StatusFailed || got.Reason != ReasonHTTPError {
		t.Fatalf("outcome = %+v, want failed/http_error", got)
	}
	if n := requests.Load(); n != 3 {
		t.Fatalf("requests = %d, want 3 (one logical send, three attempts)", n)
	}
	// HTTP retries are sub-attempts of one logical send: one breaker failure.
	if n := s.Breaker().State().Failures; n != 1 {
		t.Fatalf("breaker failures = %d, want 1", n)
	}
}

func TestSendRecoversMidRetry(t *testing.T) {
	t.Parallel()
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) < 3 {
			http.Error(w, "unavailable", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := newTestSender(srv.URL)
	got := s.Send(context.Background(), sectionPayload("Amina"))
	if got.Status != StatusSent {
		t.Fatalf("outcome = %+v, want sent on third attempt", got)
	}
	if n := requests.Load(); n != 3 {
		t.Fatalf("requests = %d, want 3", n)
	}
}

func TestSendDoesNotRetryNonRetryableStatus(t *testing.T) {
	t.Parallel()
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		http.Error(w, "no_service", http.StatusNotFound)
	}))
	defer srv.Close()

	s := newTestSender(srv.URL)
	got := s.Send(context.Background(), sectionPayload("Amina"))
	if got.Status != StatusFailed || got.Reason != ReasonHTTPError {
		t.Fatalf("outcome = %+v, want failed/http_error", got)
	}
	if n := requests.Load(); n != 1 {
		t.Fatalf("requests = %d, want 1", n)
	}
}

func TestSendSkipsWhenBreakerOpen(t *testing.T) {
	t.Parallel()
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	s := NewSender(Config{
		WebhookURL:       srv.URL,
		BreakerThreshold: 1,
		RetryBase:        time.Millisecond,
		RatePerSec:       1000,
	}, logx.Nop())
	s.Breaker().RecordFailure()

	got := s.Send(context.Background(), sectionPayload("Amina"))
	if got.Status != StatusSkipped || got.Reason != ReasonCircuitOpen {
		t.Fatalf("outcome = %+v, want skipped/circuit_open", got)
	}
	if n := requests.Load(); n != 0 {
		t.Fatalf("requests = %d with open breaker, want 0", n)
	}
}

func TestSendSkipsAbsentPayload(t *testing.T) {
	t.Parallel()
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	s := newTestSender(srv.URL)
	got := s.Send(context.Background(), nil)
	if got.Status != StatusSkipped || got.Reason != ReasonNothingToReport {
		t.Fatalf("outcome = %+v, want skipped/nothing_to_report", got)
	}
	if n := requests.Load(); n != 0 {
		t.Fatalf("requests = %d for absent payload, want 0", n)
	}
}

func TestSendSkipsInvalidPayload(t *testing.T) {
	t.Parallel()
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	s := newTestSender(srv.URL)
	got := s.Send(context.Background(), sectionPayload("see www.evil.example"))
	if got.Status != StatusSkipped || got.Reason != ReasonValidationFailed {
		t.Fatalf("outcome = %+v, want skipped/validation_failed", got)
	}
	if n := requests.Load(); n != 0 {
		t.Fatalf("requests = %d for invalid payload, want 0", n)
	}
}

func TestSendSkipsWithoutWebhook(t *testing.T) {
	t.Parallel()
	s := newTestSender("")
	got := s.Send(context.Background(), sectionPayload("Amina"))
	if got.Status != StatusSkipped || got.Reason != ReasonNotConfigured {
		t.Fatalf("outcome = %+v, want skipped/not_configured", got)
	}
}

func TestSendNetworkErrorRecordsOneFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close() // connection refused from here on

	s := newTestSender(url)
	got := s.Send(context.Background(), sectionPayload("Amina"))
	if got.Status != StatusFailed || got.Reason != ReasonNetworkError {
		t.Fatalf("outcome = %+v, want failed/network_error", got)
	}
	if n := s.Breaker().State().Failures; n != 1 {
		t.Fatalf("breaker failures = %d, want 1", n)
	}
}

func TestSendObservesAttempts(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := newTestSender(srv.URL)
	var seen []int
	s.OnAttempt = func(status int, err error) { seen = append(seen, status) }

	_ = s.Send(context.Background(), sectionPayload("Amina"))
	if len(seen) != 3 {
		t.Fatalf("observed %d attempts, want 3", len(seen))
	}
	for _, code := range seen {
		if code != http.StatusServiceUnavailable {
			t.Fatalf("observed status %d, want 503", code)
		}
	}
}
