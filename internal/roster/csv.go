package roster

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	logx "bdaybot/pkg/logx"
)

// Source produces the roster table. The CSV export source is the production
// implementation; tests substitute fixed tables.
type Source interface {
	Fetch(ctx context.Context) (Table, error)
}

// CSVSource fetches the spreadsheet's CSV export over HTTPS.
// Read-only by construction: it only ever issues GET requests.
type CSVSource struct {
	url    string
	client *http.Client
	log    logx.Logger
}

func NewCSVSource(url string, timeout time.Duration, log logx.Logger) *CSVSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &CSVSource{
		url:    strings.TrimSpace(url),
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

func (s *CSVSource) Fetch(ctx context.Context) (Table, error) {
	if s.url == "" {
		return Table{}, fmt.Errorf("roster: csv url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Table{}, fmt.Errorf("roster: build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := s.client.Do(req)
	if err != nil {
		return Table{}, fmt.Errorf("roster: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little of the body for the log, then give up.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return Table{}, fmt.Errorf("roster: fetch: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	r := csv.NewReader(resp.Body)
	// Hand-edited sheets occasionally have ragged rows; tolerate them.
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("roster: parse csv: %w", err)
	}

	t := NewTable(records)
	s.log.Debug("roster fetched", logx.Int("rows", t.Len()))
	return t, nil
}
