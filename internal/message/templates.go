package message

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	logx "bdaybot/pkg/logx"
)

// Template file names inside the templates directory.
const (
	titleFile             = "title.json"
	birthdayHeaderFile    = "birthday_header.json"
	anniversaryHeaderFile = "anniversary_header.json"
	birthdayGIFsFile      = "birthday_gifs.json"
	anniversaryGIFsFile   = "anniversary_gifs.json"
)

// Templates is the loaded, immutable template set.
//
// Nil/empty members mean the corresponding file was missing or malformed;
// the builder omits the dependent payload section instead of failing the run.
type Templates struct {
	Title             *Payload
	BirthdayHeader    *Block
	AnniversaryHeader *Block
	BirthdayGIFs      []string
	AnniversaryGIFs   []string
}

// LoadTemplates reads the template fragments from dir.
// Every failure is logged and degraded to a nil/empty member.
func LoadTemplates(dir string, log logx.Logger) Templates {
	if log.IsZero() {
		log = logx.Nop()
	}
	var t Templates
	loadJSONFragment(filepath.Join(dir, titleFile), &t.Title, log)
	loadJSONFragment(filepath.Join(dir, birthdayHeaderFile), &t.BirthdayHeader, log)
	loadJSONFragment(filepath.Join(dir, anniversaryHeaderFile), &t.AnniversaryHeader, log)
	loadJSONFragment(filepath.Join(dir, birthdayGIFsFile), &t.BirthdayGIFs, log)
	loadJSONFragment(filepath.Join(dir, anniversaryGIFsFile), &t.AnniversaryGIFs, log)
	return t
}

// loadJSONFragment decodes path into out, leaving out untouched on failure.
// Decoding is strict so a typo'd template field fails at load time, visibly,
// rather than rendering a half-empty message.
func loadJSONFragment[T any](path string, out *T, log logx.Logger) {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Error("template file unavailable", logx.String("path", path), logx.Err(err))
		return
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var v T
	if err := dec.Decode(&v); err != nil {
		log.Error("template file malformed", logx.String("path", path), logx.Err(err))
		return
	}
	*out = v
}
