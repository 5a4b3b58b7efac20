package renderer

import (
	"html/template"

	"go-page-builder/internal/model"
)

// customSnippetLen is how much of a custom component's source the preview
// shows.
const customSnippetLen = 50

var customTmpl = template.Must(template.New("custom").Parse(`<div class="custom-component-preview p-4 border border-purple-200 rounded-lg bg-purple-50">
<div class="flex items-center justify-between mb-2"><h4 class="font-semibold text-purple-800">{{.Name}}</h4><span class="text-xs bg-purple-200 text-purple-800 px-2 py-1 rounded">Custom Component</span></div>
{{- if .Description}}<p class="text-sm text-purple-600 mb-2">{{.Description}}</p>{{end}}
<pre class="text-xs text-gray-600 bg-white p-2 rounded overflow-hidden"><code>{{.Snippet}}</code></pre>
</div>`))

// renderCustom previews a user-authored component. The source is displayed,
// never executed. A component without code has nothing to preview and gets
// the unsupported placeholder.
func (r *Renderer) renderCustom(def *model.ComponentDefinition) (template.HTML, error) {
	if def.Code == "" {
		return execute(placeholderTmpl, "unsupported", string(def.Kind))
	}
	snippet := def.Code
	if runes := []rune(snippet); len(runes) > customSnippetLen {
		snippet = string(runes[:customSnippetLen]) + "..."
	}
	return execute(customTmpl, "custom", struct {
		Name, Description, Snippet string
	}{def.Name, def.Description, snippet})
}
