package prompt

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Template is a prompt template with named placeholders of the form
// {{name}}. Placeholders must be declared when the template is built, so an
// unresolved placeholder is a construction error rather than a runtime
// surprise. Declared placeholders are required unless marked optional;
// optional placeholders render as the empty string when no value is given.
type Template struct {
	name         string
	text         string
	placeholders map[string]bool // name -> required
}

var placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z0-9_]+)\}\}`)

// Option configures template construction
type Option func(*Template)

// Optional marks the named placeholders as optional
func Optional(names ...string) Option {
	return func(t *Template) {
		for _, name := range names {
			t.placeholders[name] = false
		}
	}
}

// New builds a template from text. It fails when the text contains a
// placeholder that is malformed or when an optional marker names a
// placeholder the text does not contain.
func New(name, text string, opts ...Option) (*Template, error) {
	t := &Template{
		name:         name,
		text:         text,
		placeholders: make(map[string]bool),
	}

	for _, match := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		t.placeholders[match[1]] = true
	}

	// Reject stray braces that look like placeholders but did not parse,
	// e.g. "{{bad name}}" or an unclosed "{{name".
	stripped := placeholderPattern.ReplaceAllString(text, "")
	if strings.Contains(stripped, "{{") || strings.Contains(stripped, "}}") {
		return nil, fmt.Errorf("template %q contains a malformed placeholder", name)
	}

	for _, opt := range opts {
		opt(t)
	}

	for ph := range t.placeholders {
		if !strings.Contains(text, "{{"+ph+"}}") {
			return nil, fmt.Errorf("template %q declares unknown placeholder %q", name, ph)
		}
	}

	return t, nil
}

// MustNew is like New but panics on error. Intended for package-level
// template construction where a bad template is a programming error.
func MustNew(name, text string, opts ...Option) *Template {
	t, err := New(name, text, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the template's name
func (t *Template) Name() string {
	return t.name
}

// Placeholders returns the declared placeholder names, sorted
func (t *Template) Placeholders() []string {
	names := make([]string, 0, len(t.placeholders))
	for name := range t.placeholders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render substitutes vars into the template. Every required placeholder must
// be present in vars with a non-empty value; optional placeholders default to
// the empty string. Vars that name no placeholder are rejected, since they
// indicate a caller composing against the wrong template.
func (t *Template) Render(vars map[string]string) (string, error) {
	for name := range vars {
		if _, ok := t.placeholders[name]; !ok {
			return "", fmt.Errorf("template %q has no placeholder %q", t.name, name)
		}
	}

	for name, required := range t.placeholders {
		if value, ok := vars[name]; required && (!ok || value == "") {
			return "", fmt.Errorf("template %q missing required variable %q", t.name, name)
		}
	}

	// Substitute in a single pass over the template text so values are
	// never rescanned: a placeholder token occurring inside a value stays
	// literal instead of being substituted again.
	out := placeholderPattern.ReplaceAllStringFunc(t.text, func(match string) string {
		return vars[match[2:len(match)-2]]
	})

	return out, nil
}
