package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// Rendered is the output of Renderer.Render.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// Renderer loads templates from an fs.FS. Parsed templates are cached.
type Renderer struct {
	fsys fs.FS
	md   goldmark.Markdown

	mu      sync.RWMutex
	bodies  map[string]*parsedTemplate
	layouts map[string]*template.Template
}

type parsedTemplate struct {
	subject *texttemplate.Template
	body    *texttemplate.Template
}

type frontmatter struct {
	Subject string `yaml:"subject"`
}

// NewRenderer reads templates and layouts from fsys.
func NewRenderer(fsys fs.FS) *Renderer {
	return &Renderer{
		fsys:    fsys,
		md:      goldmark.New(goldmark.WithExtensions(extension.Table, extension.Linkify)),
		bodies:  make(map[string]*parsedTemplate),
		layouts: make(map[string]*template.Template),
	}
}

// Render executes template name with data and wraps it in layout.
func (r *Renderer) Render(layout, name string, data any) (*Rendered, error) {
	pt, err := r.template(name)
	if err != nil {
		return nil, err
	}

	var subject, body bytes.Buffer
	if err := pt.subject.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("%w: %s subject: %w", ErrRenderFailed, name, err)
	}
	if err := pt.body.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}

	var content bytes.Buffer
	if err := r.md.Convert(body.Bytes(), &content); err != nil {
		return nil, fmt.Errorf("%w: %s markdown: %w", ErrRenderFailed, name, err)
	}

	lt, err := r.layout(layout)
	if err != nil {
		return nil, err
	}
	var page bytes.Buffer
	err = lt.Execute(&page, map[string]any{
		"Subject": subject.String(),
		"Content": template.HTML(content.String()), //nolint:gosec // markdown comes from embedded templates
	})
	if err != nil {
		return nil, fmt.Errorf("%w: layout %s: %w", ErrRenderFailed, layout, err)
	}

	return &Rendered{Subject: subject.String(), HTML: page.String(), Text: body.String()}, nil
}

func (r *Renderer) template(name string) (*parsedTemplate, error) {
	r.mu.RLock()
	pt, ok := r.bodies[name]
	r.mu.RUnlock()
	if ok {
		return pt, nil
	}

	raw, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	meta, body, err := splitFrontmatter(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	pt = &parsedTemplate{}
	if pt.subject, err = texttemplate.New(name + ":subject").Parse(meta.Subject); err != nil {
		return nil, fmt.Errorf("%w: %s subject: %w", ErrRenderFailed, name, err)
	}
	if pt.body, err = texttemplate.New(name).Parse(body); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}

	r.mu.Lock()
	r.bodies[name] = pt
	r.mu.Unlock()
	return pt, nil
}

func (r *Renderer) layout(name string) (*template.Template, error) {
	r.mu.RLock()
	lt, ok := r.layouts[name]
	r.mu.RUnlock()
	if ok {
		return lt, nil
	}

	lt, err := template.ParseFS(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: layout %s: %w", ErrTemplateNotFound, name, err)
	}
	lt = lt.Lookup(path.Base(name))

	r.mu.Lock()
	r.layouts[name] = lt
	r.mu.Unlock()
	return lt, nil
}

// splitFrontmatter separates a leading "---" YAML block from the markdown body.
func splitFrontmatter(raw []byte) (frontmatter, string, error) {
	var meta frontmatter
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(raw, []byte("---\n")) {
		return meta, string(raw), nil
	}

	rest := raw[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return meta, "", fmt.Errorf("%w: missing closing delimiter", ErrInvalidFrontmatter)
	}
	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return meta, "", fmt.Errorf("%w: %w", ErrInvalidFrontmatter, err)
	}

	body := rest[end+len("\n---"):]
	body = bytes.TrimPrefix(body, []byte("\n"))
	return meta, string(body), nil
}
