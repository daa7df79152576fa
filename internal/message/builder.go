package message

import (
	"math/rand"
	"strings"
	"time"

	logx "bdaybot/pkg/logx"

	"bdaybot/internal/roster"
)

// datePlaceholder in the title template is substituted with the run date.
const datePlaceholder = "{{DATE}}"

// dateFormat renders e.g. "June 15, 2026".
const dateFormat = "January 2, 2006"

// Builder composes announcement payloads from the loaded templates.
//
// Now and Pick are injectable for tests: Pick(n) returns an index in [0,n)
// and defaults to uniform random, which selects the decorative image.
type Builder struct {
	tpl Templates
	log logx.Logger

	Now  func() time.Time
	Pick func(n int) int
}

func NewBuilder(tpl Templates, log logx.Logger) *Builder {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Builder{
		tpl:  tpl,
		log:  log,
		Now:  time.Now,
		Pick: rand.Intn,
	}
}

// Build returns the payload announcing the given matches, or nil when there
// is nothing to announce. The returned tree shares no state with the
// templates or with previous builds.
func (b *Builder) Build(m roster.Matches) *Payload {
	if m.Empty() {
		return nil
	}

	p := b.title()

	if len(m.Birthdays) > 0 {
		b.appendGroup(p, b.tpl.BirthdayHeader, b.tpl.BirthdayGIFs, m.Birthdays)
	}
	if len(m.Anniversaries) > 0 {
		if len(m.Birthdays) > 0 {
			p.Blocks = append(p.Blocks, Spacer())
		}
		b.appendGroup(p, b.tpl.AnniversaryHeader, b.tpl.AnniversaryGIFs, m.Anniversaries)
	}
	return p
}

// title clones the title template and fills in the run date.
// A missing title template degrades to an empty payload skeleton so the
// announcement groups still go out.
func (b *Builder) title() *Payload {
	if b.tpl.Title == nil {
		b.log.Error("title template missing; sending without title")
		return &Payload{}
	}
	p := b.tpl.Title.Clone()
	date := b.Now().Format(dateFormat)
	for i := range p.Blocks {
		substituteDate(&p.Blocks[i], date)
	}
	return p
}

func substituteDate(blk *Block, date string) {
	if blk.Text != nil {
		blk.Text.Text = strings.ReplaceAll(blk.Text.Text, datePlaceholder, date)
	}
	var walk func(els []Element)
	walk = func(els []Element) {
		for i := range els {
			if els[i].Text != "" {
				els[i].Text = strings.ReplaceAll(els[i].Text, datePlaceholder, date)
			}
			walk(els[i].Elements)
		}
	}
	walk(blk.Elements)
}

// appendGroup appends one divider+header+list announcement group.
// A missing header template drops only the header, never the names.
func (b *Builder) appendGroup(p *Payload, header *Block, gifs []string, names []string) {
	p.Blocks = append(p.Blocks, Divider())
	if header != nil {
		h := header.Clone()
		if h.Accessory != nil {
			h.Accessory.ImageURL = b.pickGIF(gifs)
		}
		p.Blocks = append(p.Blocks, h)
	} else {
		b.log.Error("header template missing; sending list without header")
	}
	p.Blocks = append(p.Blocks, BulletList(names))
}

func (b *Builder) pickGIF(gifs []string) string {
	if len(gifs) == 0 {
		return ""
	}
	idx := b.Pick(len(gifs))
	if idx < 0 || idx >= len(gifs) {
		idx = 0
	}
	return gifs[idx]
}
