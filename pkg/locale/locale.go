// Package locale renders the user-facing replies of the exec command.
package locale

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// DefaultLocale is used when a requested locale has no catalog.
const DefaultLocale = "zh-CN"

// Message ids.
const (
	ExpectText          = "expect-text"
	BlockedCommand      = "blocked-command"
	RestrictedDirectory = "restricted-directory"
	RestrictedPath      = "restricted-path"
	ExemptExecuted      = "exempt-executed"
	Started             = "started"
	Finished            = "finished"
)

//go:embed locales/*.yaml
var catalogFS embed.FS

type catalogFile struct {
	Name     string            `yaml:"name"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog holds the parsed message templates of one locale.
type Catalog struct {
	name      string
	templates map[string]*template.Template
}

// Available lists the embedded locales in sorted order.
func Available() []string {
	entries, err := catalogFS.ReadDir("locales")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Load returns the catalog for name, falling back to DefaultLocale when name
// is empty or unknown.
func Load(name string) (*Catalog, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultLocale
	}
	data, err := catalogFS.ReadFile("locales/" + name + ".yaml")
	if err != nil {
		if name == DefaultLocale {
			return nil, fmt.Errorf("load locale %s: %w", name, err)
		}
		return Load(DefaultLocale)
	}
	return Parse(data)
}

// Parse builds a catalog from a YAML document with a messages map.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode locale: %w", err)
	}

	c := &Catalog{name: file.Name, templates: make(map[string]*template.Template, len(file.Messages))}
	for id, text := range file.Messages {
		tmpl, err := template.New(id).Option("missingkey=zero").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("locale %s: message %s: %w", file.Name, id, err)
		}
		c.templates[id] = tmpl
	}
	return c, nil
}

// Name returns the locale name.
func (c *Catalog) Name() string {
	return c.name
}

// Text renders message id with data. Unknown ids render as the id itself.
func (c *Catalog) Text(id string, data any) string {
	tmpl, ok := c.templates[id]
	if !ok {
		return id
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return id
	}
	return b.String()
}
