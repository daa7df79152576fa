package message

import (
	"strings"
	"testing"
	"time"

	logx "bdaybot/pkg/logx"

	"bdaybot/internal/roster"
)

func fixtureTemplates() Templates {
	return Templates{
		Title: &Payload{Blocks: []Block{
			{Type: "header", Text: &TextObject{Type: "plain_text", Text: "Celebrations!", Emoji: true}},
			{Type: "section", Text: &TextObject{Type: "mrkdwn", Text: "Today is {{DATE}}"}},
		}},
		BirthdayHeader: &Block{
			Type:      "section",
			Text:      &TextObject{Type: "mrkdwn", Text: "*Happy Birthday!*"},
			Accessory: &Accessory{Type: "image", AltText: "birthday gif"},
		},
		AnniversaryHeader: &Block{
			Type:      "section",
			Text:      &TextObject{Type: "mrkdwn", Text: "*Happy Anniversary!*"},
			Accessory: &Accessory{Type: "image", AltText: "anniversary gif"},
		},
		BirthdayGIFs:    []string{"gif-a", "gif-b"},
		AnniversaryGIFs: []string{"gif-c"},
	}
}

func fixedBuilder(t *testing.T) *Builder {
	t.Helper()
	b := NewBuilder(fixtureTemplates(), logx.Nop())
	b.Now = func() time.Time { return time.Date(2026, time.June, 15, 8, 0, 0, 0, time.UTC) }
	b.Pick = func(int) int { return 0 }
	return b
}

func TestBuildNothingToAnnounce(t *testing.T) {
	t.Parallel()
	b := fixedBuilder(t)
	if got := b.Build(roster.Matches{}); got != nil {
		t.Fatalf("Build(empty) = %+v, want nil", got)
	}
}

func TestBuildBirthdayOnly(t *testing.T) {
	t.Parallel()
	b := fixedBuilder(t)
	p := b.Build(roster.Matches{Birthdays: []string{"Amina"}})
	if p == nil {
		t.Fatal("Build returned nil")
	}

	// title(2) + divider + header + list
	if len(p.Blocks) != 5 {
		t.Fatalf("blocks = %d, want 5", len(p.Blocks))
	}
	if p.Blocks[1].Text.Text != "Today is June 15, 2026" {
		t.Fatalf("date not substituted: %q", p.Blocks[1].Text.Text)
	}
	if p.Blocks[2].Type != "divider" {
		t.Fatalf("block 2 = %s, want divider", p.Blocks[2].Type)
	}
	if got := p.Blocks[3].Accessory.ImageURL; got != "gif-a" {
		t.Fatalf("image url = %q, want pick(0) = gif-a", got)
	}

	list := p.Blocks[4]
	if list.Type != "rich_text" || len(list.Elements) != 1 {
		t.Fatalf("unexpected list block: %+v", list)
	}
	leaf := list.Elements[0].Elements[0].Elements[0]
	if leaf.Type != "text" || leaf.Text != "Amina" {
		t.Fatalf("unexpected list leaf: %+v", leaf)
	}

	// No anniversary section anywhere.
	for _, blk := range p.Blocks {
		if blk.Text != nil && strings.Contains(blk.Text.Text, "Anniversary") {
			t.Fatal("anniversary header present without anniversaries")
		}
	}
}

func TestBuildBothGroupsAddsSpacer(t *testing.T) {
	t.Parallel()
	b := fixedBuilder(t)
	p := b.Build(roster.Matches{
		Birthdays:     []string{"Amina", "Bogdan"},
		Anniversaries: []string{"Cleo"},
	})
	if p == nil {
		t.Fatal("Build returned nil")
	}

	// title(2) + [divider header list] + spacer + [divider header list]
	if len(p.Blocks) != 9 {
		t.Fatalf("blocks = %d, want 9", len(p.Blocks))
	}
	spacer := p.Blocks[5]
	if spacer.Type != "section" || spacer.Text == nil || spacer.Text.Text != "\n" {
		t.Fatalf("expected spacer between groups, got %+v", spacer)
	}
	if got := len(p.Blocks[4].Elements); got != 2 {
		t.Fatalf("birthday list entries = %d, want 2", got)
	}
	if got := p.Blocks[7].Accessory.ImageURL; got != "gif-c" {
		t.Fatalf("anniversary image = %q, want gif-c", got)
	}
}

func TestBuildTemplatesAreImmutable(t *testing.T) {
	t.Parallel()
	tpl := fixtureTemplates()
	b := NewBuilder(tpl, logx.Nop())
	b.Now = func() time.Time { return time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC) }
	b.Pick = func(int) int { return 0 }

	_ = b.Build(roster.Matches{Birthdays: []string{"Amina"}})
	if tpl.Title.Blocks[1].Text.Text != "Today is {{DATE}}" {
		t.Fatal("build mutated the title template")
	}
	if tpl.BirthdayHeader.Accessory.ImageURL != "" {
		t.Fatal("build mutated the header template")
	}
}

func TestBuildDegradesWithoutTemplates(t *testing.T) {
	t.Parallel()
	b := NewBuilder(Templates{}, logx.Nop())
	b.Now = time.Now
	b.Pick = func(int) int { return 0 }

	p := b.Build(roster.Matches{Birthdays: []string{"Amina"}})
	if p == nil {
		t.Fatal("missing templates must not suppress the announcement")
	}
	// divider + list, no title, no header
	if len(p.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(p.Blocks))
	}
	if p.Blocks[0].Type != "divider" || p.Blocks[1].Type != "rich_text" {
		t.Fatalf("unexpected degraded shape: %+v", p.Blocks)
	}
}

func TestBuildEmptyGIFListYieldsEmptyImage(t *testing.T) {
	t.Parallel()
	tpl := fixtureTemplates()
	tpl.BirthdayGIFs = nil
	b := NewBuilder(tpl, logx.Nop())
	b.Now = func() time.Time { return time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC) }
	b.Pick = func(int) int { return 0 }

	p := b.Build(roster.Matches{Birthdays: []string{"Amina"}})
	if got := p.Blocks[3].Accessory.ImageURL; got != "" {
		t.Fatalf("image url = %q with no gifs, want empty", got)
	}
}
