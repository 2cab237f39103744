package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"strings"
	texttemplate "text/template"

	"familycal/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

var templateFuncs = map[string]any{
	"plural": func(n int, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	},
}

// templateSet is one named email: name_subject.txt, name.html and name.txt.
type templateSet struct {
	subject *texttemplate.Template
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

// templateRenderer implements domain.EmailTemplateRenderer over the embedded templates,
// parsed once at construction.
type templateRenderer struct {
	sets map[string]*templateSet
}

// NewTemplateRenderer parses every embedded template. Each name found by its
// _subject.txt file must also ship .html and .txt bodies.
func NewTemplateRenderer() (domain.EmailTemplateRenderer, error) {
	entries, err := fs.Glob(templateFS, "templates/*_subject.txt")
	if err != nil {
		return nil, err
	}
	r := &templateRenderer{sets: make(map[string]*templateSet, len(entries))}
	for _, entry := range entries {
		name := strings.TrimSuffix(strings.TrimPrefix(entry, "templates/"), "_subject.txt")
		set, err := parseSet(name)
		if err != nil {
			return nil, fmt.Errorf("parse template %q: %w", name, err)
		}
		r.sets[name] = set
	}
	return r, nil
}

func parseSet(name string) (*templateSet, error) {
	subject, err := texttemplate.New(name+"_subject.txt").Funcs(templateFuncs).ParseFS(templateFS, "templates/"+name+"_subject.txt")
	if err != nil {
		return nil, err
	}
	html, err := htmltemplate.New(name+".html").Funcs(templateFuncs).ParseFS(templateFS, "templates/"+name+".html")
	if err != nil {
		return nil, err
	}
	text, err := texttemplate.New(name+".txt").Funcs(templateFuncs).ParseFS(templateFS, "templates/"+name+".txt")
	if err != nil {
		return nil, err
	}
	return &templateSet{subject: subject, html: html, text: text}, nil
}

// Render executes the named template (e.g. "daily_digest") with data and returns subject, html, and text bodies.
func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	set, ok := r.sets[templateName]
	if !ok {
		return "", "", "", fmt.Errorf("email template %q: %w", templateName, domain.ErrNotFound)
	}
	var buf bytes.Buffer
	if err := set.subject.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := set.html.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	htmlBody = buf.String()

	buf.Reset()
	if err := set.text.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return subject, htmlBody, buf.String(), nil
}
