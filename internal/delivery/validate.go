package delivery

import (
	"strings"

	logx "bdaybot/pkg/logx"

	"bdaybot/internal/message"
)

const defaultMaxTextLen = 500

// bannedFragments block link injection from untrusted spreadsheet fields.
// Validation runs on the fully rendered payload, so it catches a URL no
// matter which field smuggled it in.
var bannedFragments = []string{"http://", "https://", "www."}

// Validator rejects payloads that are oversized or carry links.
type Validator struct {
	maxLen int
	log    logx.Logger
}

func NewValidator(maxLen int, log logx.Logger) *Validator {
	if maxLen <= 0 {
		maxLen = defaultMaxTextLen
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Validator{maxLen: maxLen, log: log}
}

// Validate walks every text-bearing leaf of the payload.
// An absent payload is invalid by definition. The only side effects are
// warning logs on rejection.
func (v *Validator) Validate(p *message.Payload) bool {
	if p == nil {
		return false
	}
	ok := p.EachText(func(text string) bool {
		if len(text) > v.maxLen {
			v.log.Warn("message content exceeds max length",
				logx.Int("len", len(text)), logx.Int("max", v.maxLen))
			return false
		}
		for _, frag := range bannedFragments {
			if strings.Contains(text, frag) {
				v.log.Warn("message contains prohibited URL", logx.String("fragment", frag))
				return false
			}
		}
		return true
	})
	return ok
}
