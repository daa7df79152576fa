package message

import (
	"os"
	"path/filepath"
	"testing"

	logx "bdaybot/pkg/logx"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadTemplates(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "title.json", `{"blocks":[{"type":"header","text":{"type":"plain_text","text":"Celebrations!","emoji":true}}]}`)
	writeFile(t, dir, "birthday_header.json", `{"type":"section","text":{"type":"mrkdwn","text":"*Happy Birthday!*"},"accessory":{"type":"image","alt_text":"birthday gif"}}`)
	writeFile(t, dir, "anniversary_header.json", `{"type":"section","text":{"type":"mrkdwn","text":"*Happy Anniversary!*"},"accessory":{"type":"image","alt_text":"anniversary gif"}}`)
	writeFile(t, dir, "birthday_gifs.json", `["https://gifs.example/a.gif","https://gifs.example/b.gif"]`)
	writeFile(t, dir, "anniversary_gifs.json", `["https://gifs.example/c.gif"]`)

	tpl := LoadTemplates(dir, logx.Nop())
	if tpl.Title == nil || len(tpl.Title.Blocks) != 1 {
		t.Fatalf("title not loaded: %+v", tpl.Title)
	}
	if tpl.BirthdayHeader == nil || tpl.BirthdayHeader.Accessory.AltText != "birthday gif" {
		t.Fatalf("birthday header not loaded: %+v", tpl.BirthdayHeader)
	}
	if len(tpl.BirthdayGIFs) != 2 || len(tpl.AnniversaryGIFs) != 1 {
		t.Fatalf("gif lists not loaded: %d/%d", len(tpl.BirthdayGIFs), len(tpl.AnniversaryGIFs))
	}
}

func TestLoadTemplatesDegradesPerFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	// Only the birthday header exists, and the gif list is malformed.
	writeFile(t, dir, "birthday_header.json", `{"type":"section","text":{"type":"mrkdwn","text":"*Happy Birthday!*"}}`)
	writeFile(t, dir, "birthday_gifs.json", `{not json`)

	tpl := LoadTemplates(dir, logx.Nop())
	if tpl.Title != nil {
		t.Fatal("missing title should load as nil")
	}
	if tpl.BirthdayHeader == nil {
		t.Fatal("present header should still load")
	}
	if tpl.BirthdayGIFs != nil {
		t.Fatal("malformed gif list should load as empty")
	}
}

func TestLoadTemplatesRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "birthday_header.json", `{"type":"section","surprise":true}`)

	tpl := LoadTemplates(dir, logx.Nop())
	if tpl.BirthdayHeader != nil {
		t.Fatal("template with unknown fields should be rejected, not silently truncated")
	}
}
