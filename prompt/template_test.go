package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRender(t *testing.T) {
	t.Parallel()

	tmpl, err := New("greeting", "Hello {{name}}, case {{case_id}} is open.")
	require.NoError(t, err)
	assert.Equal(t, []string{"case_id", "name"}, tmpl.Placeholders())

	out, err := tmpl.Render(map[string]string{
		"name":    "Ada",
		"case_id": "42",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, case 42 is open.", out)
}

func TestTemplateValuesStayLiteral(t *testing.T) {
	t.Parallel()

	tmpl := MustNew("case", "Document:\n{{document}}\n\nQuestion: {{query}}")

	vars := map[string]string{
		"document": "the clause says {{query}} is void",
		"query":    "who inherits?",
	}
	want := "Document:\nthe clause says {{query}} is void\n\nQuestion: who inherits?"

	// A placeholder token inside a value must never be substituted,
	// regardless of the order placeholders are processed in.
	for i := 0; i < 200; i++ {
		out, err := tmpl.Render(vars)
		require.NoError(t, err)
		require.Equal(t, want, out)
	}
}

func TestTemplateMissingRequiredVariable(t *testing.T) {
	t.Parallel()

	tmpl := MustNew("q", "Question: {{query}}")

	_, err := tmpl.Render(map[string]string{})
	assert.Error(t, err)

	_, err = tmpl.Render(map[string]string{"query": ""})
	assert.Error(t, err, "empty value must not satisfy a required placeholder")
}

func TestTemplateOptionalPlaceholder(t *testing.T) {
	t.Parallel()

	tmpl := MustNew("ctx", "Context:{{context}}\nQuestion: {{query}}", Optional("context"))

	out, err := tmpl.Render(map[string]string{"query": "who inherits?"})
	require.NoError(t, err)
	assert.Equal(t, "Context:\nQuestion: who inherits?", out)
}

func TestTemplateConstructionErrors(t *testing.T) {
	t.Parallel()

	t.Run("malformed placeholder", func(t *testing.T) {
		t.Parallel()
		_, err := New("bad", "text with {{bad name}} inside")
		assert.Error(t, err)
	})

	t.Run("unclosed placeholder", func(t *testing.T) {
		t.Parallel()
		_, err := New("bad", "text with {{name and no close")
		assert.Error(t, err)
	})

	t.Run("optional names unknown placeholder", func(t *testing.T) {
		t.Parallel()
		_, err := New("bad", "Question: {{query}}", Optional("context"))
		assert.Error(t, err)
	})
}

func TestTemplateRejectsUnknownVars(t *testing.T) {
	t.Parallel()

	tmpl := MustNew("q", "Question: {{query}}")
	_, err := tmpl.Render(map[string]string{"query": "x", "extra": "y"})
	assert.Error(t, err)
}
