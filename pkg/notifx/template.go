package notifx

import (
	"bytes"
	"html/template"
	"sync"
)

// TemplateRegistry stores and renders named html/templates. Registration
// happens at startup; rendering is safe for concurrent use.
type TemplateRegistry struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
}

// NewTemplateRegistry creates an empty registry.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]*template.Template),
	}
}

// Register parses and stores a template by name, replacing any previous
// template with the same name.
func (r *TemplateRegistry) Register(name, tmplString string) error {
	t, err := template.New(name).Parse(tmplString)
	if err != nil {
		return notifxErrors.NewWithCause(ErrTemplateParse, err).WithDetail("template", name)
	}

	r.mu.Lock()
	r.templates[name] = t
	r.mu.Unlock()
	return nil
}

// Render executes a named template with the given data.
func (r *TemplateRegistry) Render(name string, data any) (string, error) {
	r.mu.RLock()
	t, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return "", notifxErrors.New(ErrTemplateNotFound).WithDetail("template", name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", notifxErrors.NewWithCause(ErrTemplateRender, err).WithDetail("template", name)
	}
	return buf.String(), nil
}
