package delivery

// Status classifies the result of one logical send.
type Status int

const (
	StatusSent Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reason qualifies a skipped or failed outcome.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonCircuitOpen      Reason = "circuit_open"
	ReasonNothingToReport  Reason = "nothing_to_report"
	ReasonValidationFailed Reason = "validation_failed"
	ReasonNotConfigured    Reason = "not_configured"
	ReasonHTTPError        Reason = "http_error"
	ReasonNetworkError     Reason = "network_error"
)

// Outcome is what a Send reports back to the orchestrating run.
// Detail carries the captured status/body or error text for logging only.
type Outcome struct {
	Status Status `json:"status"`
	Reason Reason `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func Sent() Outcome                          { return Outcome{Status: StatusSent} }
func Skipped(r Reason) Outcome               { return Outcome{Status: StatusSkipped, Reason: r} }
func Failed(r Reason, detail string) Outcome { return Outcome{Status: StatusFailed, Reason: r, Detail: detail} }
