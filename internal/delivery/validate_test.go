package delivery

import (
	"strings"
	"testing"

	logx "bdaybot/pkg/logx"

	"bdaybot/internal/message"
)

func sectionPayload(text string) *message.Payload {
	return &message.Payload{Blocks: []message.Block{
		{Type: "section", Text: &message.TextObject{Type: "plain_text", Text: text}},
	}}
}

func TestValidateRejectsAbsentPayload(t *testing.T) {
	t.Parallel()
	v := NewValidator(500, logx.Nop())
	if v.Validate(nil) {
		t.Fatal("absent payload validated")
	}
}

func TestValidateContent(t *testing.T) {
	t.Parallel()
	v := NewValidator(500, logx.Nop())

	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "plain name", text: "Amina", want: true},
		{name: "at limit", text: strings.Repeat("a", 500), want: true},
		{name: "over limit", text: strings.Repeat("a", 501), want: false},
		{name: "http link", text: "click http://evil.example now", want: false},
		{name: "https link", text: "https://evil.example", want: false},
		{name: "www link", text: "visit www.evil.example", want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := v.Validate(sectionPayload(tt.text)); got != tt.want {
				t.Fatalf("Validate(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestValidateWalksNestedLeaves(t *testing.T) {
	t.Parallel()
	v := NewValidator(500, logx.Nop())

	// The injected URL sits three levels deep in a rich_text list, the way a
	// malicious spreadsheet name would end up in the rendered payload.
	p := &message.Payload{Blocks: []message.Block{
		message.Divider(),
		message.BulletList([]string{"Amina", "see www.evil.example"}),
	}}
	if v.Validate(p) {
		t.Fatal("nested URL leaf validated")
	}

	ok := &message.Payload{Blocks: []message.Block{
		message.Divider(),
		message.BulletList([]string{"Amina", "Bogdan"}),
	}}
	if !v.Validate(ok) {
		t.Fatal("clean nested payload rejected")
	}
}

func TestValidateChecksAccessoryAltText(t *testing.T) {
	t.Parallel()
	v := NewValidator(500, logx.Nop())
	p := &message.Payload{Blocks: []message.Block{{
		Type:      "section",
		Text:      &message.TextObject{Type: "mrkdwn", Text: "Happy birthday!"},
		Accessory: &message.Accessory{Type: "image", ImageURL: "ignored", AltText: "www.evil.example"},
	}}}
	if v.Validate(p) {
		t.Fatal("URL in alt text validated")
	}
}
