package message

// Payload is the message tree posted to the webhook.
type Payload struct {
	Blocks []Block `json:"blocks"`
}

// Block is one top-level Block Kit block. Only the fields this bot uses are
// modeled; unknown template fields are rejected at load time rather than
// silently dropped on re-serialization.
type Block struct {
	Type      string      `json:"type"`
	Text      *TextObject `json:"text,omitempty"`
	Accessory *Accessory  `json:"accessory,omitempty"`
	Elements  []Element   `json:"elements,omitempty"`
}

type TextObject struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type Accessory struct {
	Type     string `json:"type"`
	ImageURL string `json:"image_url,omitempty"`
	AltText  string `json:"alt_text,omitempty"`
}

// Element is a rich_text element. Lists nest: a rich_text_list holds
// rich_text_section elements, which hold text leaves.
type Element struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	Style    string    `json:"style,omitempty"`
	Elements []Element `json:"elements,omitempty"`
}

// EachText visits every text-bearing leaf in the payload. The visitor
// returns false to stop the walk early; EachText reports whether the walk
// ran to completion.
func (p *Payload) EachText(fn func(text string) bool) bool {
	if p == nil {
		return true
	}
	for i := range p.Blocks {
		if !p.Blocks[i].eachText(fn) {
			return false
		}
	}
	return true
}

func (b *Block) eachText(fn func(text string) bool) bool {
	if b.Text != nil && b.Text.Text != "" {
		if !fn(b.Text.Text) {
			return false
		}
	}
	if b.Accessory != nil && b.Accessory.AltText != "" {
		if !fn(b.Accessory.AltText) {
			return false
		}
	}
	for i := range b.Elements {
		if !eachElementText(&b.Elements[i], fn) {
			return false
		}
	}
	return true
}

func eachElementText(el *Element, fn func(text string) bool) bool {
	if el.Text != "" {
		if !fn(el.Text) {
			return false
		}
	}
	for i := range el.Elements {
		if !eachElementText(&el.Elements[i], fn) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy. Builders clone template fragments before
// filling them in so the loaded templates stay immutable.
func (p *Payload) Clone() *Payload {
	if p == nil {
		return nil
	}
	cp := &Payload{Blocks: make([]Block, len(p.Blocks))}
	for i := range p.Blocks {
		cp.Blocks[i] = p.Blocks[i].Clone()
	}
	return cp
}

func (b Block) Clone() Block {
	cp := b
	if b.Text != nil {
		t := *b.Text
		cp.Text = &t
	}
	if b.Accessory != nil {
		a := *b.Accessory
		cp.Accessory = &a
	}
	cp.Elements = cloneElements(b.Elements)
	return cp
}

func cloneElements(els []Element) []Element {
	if els == nil {
		return nil
	}
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = el
		out[i].Elements = cloneElements(el.Elements)
	}
	return out
}

// Divider returns a divider block.
func Divider() Block { return Block{Type: "divider"} }

// Spacer returns a plain-text section used between announcement groups.
func Spacer() Block {
	return Block{Type: "section", Text: &TextObject{Type: "plain_text", Text: "\n"}}
}

// BulletList returns a rich_text block with one bulleted entry per name.
func BulletList(names []string) Block {
	b := Block{Type: "rich_text", Elements: make([]Element, 0, len(names))}
	for _, name := range names {
		b.Elements = append(b.Elements, Element{
			Type:  "rich_text_list",
			Style: "bullet",
			Elements: []Element{{
				Type:     "rich_text_section",
				Elements: []Element{{Type: "text", Text: name}},
			}},
		})
	}
	return b
}
