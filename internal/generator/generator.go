package generator

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"go-page-builder/internal/model"
	"go-page-builder/pkg/fsutils"
)

// Config holds the configuration for custom component generation.
type Config struct {
	BaseDir      string                 // Directory holding one folder per custom component
	DefaultFiles map[string]FileContent // Map of filename to its content template
}

// FileContent is a default file written into a new component folder.
type FileContent struct {
	Content string
}

const (
	CodeFile  = "component.jsx"
	StyleFile = "style.css"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
var multiHyphen = regexp.MustCompile(`-+`)

// generateSlug creates a CSS-friendly class name from a display name.
func generateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	slug = multiHyphen.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "component"
	}
	return slug
}

// componentIdentifier turns a display name into an exported JSX component
// name, e.g. "pricing table" becomes "PricingTable".
func componentIdentifier(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if b.Len() == 0 && unicode.IsDigit(r) {
			b.WriteString("Component")
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "CustomComponent"
	}
	return b.String()
}

// DefaultGeneratorConfig provides the standard starter files.
func DefaultGeneratorConfig(baseDir string) Config {
	const defaultCode = `export default function {{ .Identifier }}({ title, text }) {
  return (
    <div className="{{ .Slug }}">
      <h2>{title}</h2>
      <p>{text}</p>
    </div>
  );
}
`

	const defaultStyle = `/* Styles for {{ .Name }} */
.{{ .Slug }} {
  padding: 2rem;
}
`

	return Config{
		BaseDir: baseDir,
		DefaultFiles: map[string]FileContent{
			CodeFile:  {Content: defaultCode},
			StyleFile: {Content: defaultStyle},
		},
	}
}

// StarterSchema is the property schema every new custom component starts with.
func StarterSchema(name string) model.Schema {
	return model.Schema{
		{Key: "title", Spec: model.PropertySpec{Type: "string", Default: model.StringValue(name), Description: "Heading text"}},
		{Key: "text", Spec: model.PropertySpec{Type: "string", Multiline: true, Default: model.StringValue("Describe your component here."), Description: "Body text"}},
	}
}

// GenerateComponentBoilerplate creates the component folder with its default
// files and returns the custom definition describing it.
func GenerateComponentBoilerplate(cfg Config, name, id, category string) (*model.ComponentDefinition, error) {
	if name == "" || id == "" {
		return nil, fmt.Errorf("component name and ID cannot be empty")
	}
	if category == "" {
		category = "Custom"
	}

	dir := filepath.Join(cfg.BaseDir, id)
	if err := fsutils.CreateDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create component directory %s: %w", dir, err)
	}

	replacer := strings.NewReplacer(
		"{{ .Identifier }}", componentIdentifier(name),
		"{{ .Slug }}", generateSlug(name),
		"{{ .Name }}", name,
	)
	written := make(map[string]string, len(cfg.DefaultFiles))
	for filename, file := range cfg.DefaultFiles {
		content := replacer.Replace(file.Content)
		path := filepath.Join(dir, filename)
		if err := fsutils.WriteToFile(path, []byte(content)); err != nil {
			return nil, fmt.Errorf("failed to create default file %s: %w", path, err)
		}
		written[filename] = content
	}

	now := time.Now()
	return &model.ComponentDefinition{
		ID:        id,
		Name:      name,
		Category:  category,
		Kind:      model.KindCustom,
		Schema:    StarterSchema(name),
		Code:      written[CodeFile],
		Styles:    written[StyleFile],
		Directory: dir,
		Version:   "1.0.0",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ReadSources loads the code and styles of a component folder. A missing
// style file is not an error.
func ReadSources(dir string) (code, styles string, err error) {
	data, err := fsutils.ReadFile(filepath.Join(dir, CodeFile))
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", CodeFile, err)
	}
	code = string(data)
	if p := filepath.Join(dir, StyleFile); fsutils.FileExists(p) {
		data, err := fsutils.ReadFile(p)
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", StyleFile, err)
		}
		styles = string(data)
	}
	return code, styles, nil
}
