package formatter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// PromptTemplate is the YAML layout of a custom prompt file.
type PromptTemplate struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
}

// TemplateData is what a prompt template can reference.
type TemplateData struct {
	Language string
	Types    string
	Status   string
	Stat     string
	Files    string
	Diff     string
}

const DefaultTemplateName = "default"

var builtinTemplates = map[string]string{
	"default": `Write a git commit message for the changes below in the Conventional Commits format.
Write it in {{.Language}}, as a single concise line.

Rules:
- Start with one of these prefixes: {{.Types}}
- Put a colon and a space after the prefix, e.g. "feat: add login flow"
- Start the description in lower case (unless the language has no case)
- Use the present tense, imperative mood
- Output only the commit message, without quotes or markdown

<changes>
{{.Stat}}
</changes>

<details>
{{.Diff}}
</details>`,

	"detailed": `Write a git commit message for the changes below in the Conventional Commits format, in {{.Language}}.

The first line must be "type: description" (optionally "type(scope): description"), where type is one of: {{.Types}}.
Keep the first line under 72 characters, in the imperative mood.
If the change needs explanation, add a blank line and a short body describing what changed and why.
Output only the commit message, without quotes or markdown.

Changed files:
{{.Files}}

Status:
{{.Status}}

Diff:
{{.Diff}}`,
}

// GetBuiltinTemplates returns the builtin templates by name.
func GetBuiltinTemplates() map[string]string {
	return builtinTemplates
}

// DefaultTemplate returns the builtin default template.
func DefaultTemplate() string {
	return builtinTemplates[DefaultTemplateName]
}

// GetPromptTemplate resolves name to template text: a builtin name first, then
// a file path. A file is either YAML with a "template" key or raw template text.
func GetPromptTemplate(name string) (string, error) {
	if name == "" {
		name = DefaultTemplateName
	}
	if tpl, ok := builtinTemplates[name]; ok {
		return tpl, nil
	}

	content, err := os.ReadFile(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("prompt template not found: %s", name)
		}
		return "", fmt.Errorf("unable to read template file %s: %w", name, err)
	}

	var tpl PromptTemplate
	if err := yaml.Unmarshal(content, &tpl); err != nil || strings.TrimSpace(tpl.Template) == "" {
		return string(content), nil
	}
	return tpl.Template, nil
}

// RenderTemplate executes templateContent against data.
func RenderTemplate(templateContent string, data TemplateData) (string, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("template parsing error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template rendering error: %w", err)
	}
	return buf.String(), nil
}

// BuildSimplePrompt is the last-resort prompt when a template cannot be rendered.
func BuildSimplePrompt(data TemplateData) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Summarize the following git changes as a single Conventional Commits line in %s.\n", data.Language)
	fmt.Fprintf(&builder, "Use one of these prefixes: %s.\n\n", data.Types)
	if data.Stat != "" {
		fmt.Fprintf(&builder, "Changes:\n%s\n\n", data.Stat)
	}
	fmt.Fprintf(&builder, "Diff:\n%s\n\n", data.Diff)
	builder.WriteString("Output only the commit message.")
	return builder.String()
}
