package ui

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Caption is the static document shown beside the charts.
type Caption struct {
	Source string
	HTML   template.HTML
}

// LoadCaption reads the caption once at startup. A missing file is not an
// error: it returns nil and the page has no caption panel. Markdown files
// are rendered; anything else is shown verbatim.
func LoadCaption(path string) (*Caption, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read caption: %w", err)
	}
	return NewCaption(path, data)
}

// NewCaption renders data, choosing the format from name's extension.
func NewCaption(name string, data []byte) (*Caption, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		md := goldmark.New(goldmark.WithExtensions(extension.Table, extension.Typographer))
		var buf bytes.Buffer
		if err := md.Convert(data, &buf); err != nil {
			return nil, fmt.Errorf("render caption %s: %w", name, err)
		}
		return &Caption{Source: name, HTML: template.HTML(buf.String())}, nil
	}
	pre := "<pre>" + template.HTMLEscapeString(string(data)) + "</pre>"
	return &Caption{Source: name, HTML: template.HTML(pre)}, nil
}
