package manifest

import (
	"maps"
	"os"
	"strings"
	"text/template"
)

// getenv is replaced in tests.
var getenv = os.Getenv

// templateEngine handles text template rendering with variable substitution.
type templateEngine struct {
	defines map[string]string
	funcs   template.FuncMap
}

// newTemplateEngine creates a new engine with the provided global definitions.
func newTemplateEngine(defines map[string]string) *templateEngine {
	return &templateEngine{
		defines: maps.Clone(defines),
		funcs: template.FuncMap{
			"env": func(key string) string { return getenv(key) },
		},
	}
}

// render executes the provided text as a template using the engine's definitions.
// If the text does not contain "{{", it is returned as-is.
func (e *templateEngine) render(name, text string) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	t, err := template.New(name).Funcs(e.funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err := t.Execute(&buf, e.defines); err != nil {
		return "", err
	}
	return buf.String(), nil
}
