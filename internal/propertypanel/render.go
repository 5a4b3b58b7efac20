package propertypanel

import (
	"bytes"
	"fmt"
	"html/template"

	"go-page-builder/internal/model"
)

// RenderOptions carries the request-specific parts of the form.
type RenderOptions struct {
	// Action is the URL edits are posted to.
	Action string
	// MediaAction is the URL that opens the media picker.
	MediaAction string
	CSRFToken   string
}

var panelTmpl = template.Must(template.New("panel").Parse(`
{{define "control"}}
{{- if eq .Kind "multiline-text"}}<textarea id="prop-{{.Key}}" name="value" rows="3" placeholder="{{.Placeholder}}">{{.Value}}</textarea>
{{- else if eq .Kind "single-select"}}<select id="prop-{{.Key}}" name="value">{{$v := .Value}}{{range .Options}}<option value="{{.}}"{{if eq . $v}} selected{{end}}>{{.}}</option>{{end}}</select>
{{- else if eq .Kind "boolean"}}<label class="switch"><input id="prop-{{.Key}}" type="checkbox" name="value" value="true"{{if .Checked}} checked{{end}}> <span>{{.StateLabel}}</span></label><input type="hidden" name="value" value="false">
{{- else if eq .Kind "color"}}<div class="flex gap-2"><input type="color" value="{{.PickerValue}}" data-sync="prop-{{.Key}}"><input id="prop-{{.Key}}" type="text" name="value" value="{{.Value}}" placeholder="{{.Placeholder}}"></div>
{{- else if eq .Kind "image-reference"}}<div class="flex gap-2"><input id="prop-{{.Key}}" type="text" name="value" value="{{.Value}}" placeholder="{{.Placeholder}}"><button type="submit" formaction="{{$.MediaAction}}" formmethod="get" name="key" value="{{.Key}}">Browse</button></div>
<img class="w-full h-20 object-cover rounded border" src="{{.Preview}}" alt="Preview" onerror="this.onerror=null;this.src='/placeholder.svg?height=80&amp;width=200&amp;text=Image+Not+Found'">
{{- else if eq .Kind "number"}}<input id="prop-{{.Key}}" type="number" name="value" value="{{.Value}}" placeholder="{{.Placeholder}}">
{{- else}}<input id="prop-{{.Key}}" type="text" name="value" value="{{.Value}}" placeholder="{{.Placeholder}}">
{{- end}}{{end}}

{{define "panel"}}<div class="property-panel h-full overflow-auto">
<div class="p-4 border-b border-gray-200"><div class="flex items-center gap-2 mb-2"><h3 class="font-semibold text-gray-900">{{.Definition.Name}}</h3><span class="badge">{{if eq .Definition.Kind "built-in"}}Built-in{{else}}Custom{{end}}</span></div>
{{- if .Definition.Description}}<p class="text-xs text-gray-600">{{.Definition.Description}}</p>{{end}}</div>
<div class="p-4 space-y-6">
{{- if not .Controls}}<div class="text-center text-gray-500 py-8"><p class="text-sm">No configurable properties</p></div>
{{- else}}{{range .Controls}}<form class="space-y-2" method="post" action="{{$.Action}}">
<input type="hidden" name="csrf_token" value="{{$.CSRFToken}}"><input type="hidden" name="key" value="{{.Key}}">
<label for="prop-{{.Key}}" class="text-sm font-medium">{{.Label}}{{if .Required}}<span class="text-red-500 ml-1">*</span>{{end}}</label>
{{template "control" .}}
{{- if .Description}}<p class="text-xs text-gray-500">{{.Description}}</p>{{end}}
</form>{{end}}{{end}}
{{- if .Assets}}<div class="media-picker border rounded p-2"><div class="grid grid-cols-3 gap-2">{{range .Assets}}<form method="post" action="{{$.Action}}"><input type="hidden" name="csrf_token" value="{{$.CSRFToken}}"><input type="hidden" name="key" value="{{$.PickerKey}}"><input type="hidden" name="value" value="{{.FilePath}}"><button type="submit" title="{{.Name}}"><img src="{{.FilePath}}" alt="{{.Name}}" class="w-full h-16 object-cover rounded"></button></form>{{end}}</div></div>{{end}}
<div class="pt-4 border-t border-gray-200"><h4 class="text-sm font-medium text-gray-900 mb-3">Component Info</h4>
<dl class="space-y-2 text-xs text-gray-600">
<div class="flex justify-between"><dt>ID:</dt><dd class="font-mono">{{.InstanceID}}</dd></div>
<div class="flex justify-between"><dt>Type:</dt><dd>{{.Definition.Kind}}</dd></div>
<div class="flex justify-between"><dt>Category:</dt><dd>{{.Definition.Category}}</dd></div>
{{- if .Definition.Version}}<div class="flex justify-between"><dt>Version:</dt><dd>{{.Definition.Version}}</dd></div>{{end}}
</dl></div>
</div></div>{{end}}
`))

// controlView gives the control template access to the form-level URLs.
type controlView struct {
	Control
	MediaAction string
}

type panelView struct {
	RenderOptions
	Definition *model.ComponentDefinition
	InstanceID string
	Controls   []controlView
	PickerKey  string
	Assets     []model.MediaAsset
}

// Render returns the panel as an HTML fragment.
func (p *Panel) Render(opts RenderOptions) (template.HTML, error) {
	controls := p.Controls()
	views := make([]controlView, len(controls))
	for i, c := range controls {
		views[i] = controlView{Control: c, MediaAction: opts.MediaAction}
	}

	p.mu.Lock()
	view := panelView{
		RenderOptions: opts,
		Definition:    p.def,
		InstanceID:    p.instance.ID,
		Controls:      views,
		PickerKey:     p.pickerKey,
		Assets:        p.assets,
	}
	p.mu.Unlock()

	var buf bytes.Buffer
	if err := panelTmpl.ExecuteTemplate(&buf, "panel", view); err != nil {
		return "", fmt.Errorf("rendering property panel: %w", err)
	}
	return template.HTML(buf.String()), nil
}
