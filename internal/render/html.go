package render

import (
	"bytes"
	"html/template"
)

var blockTemplate = template.Must(template.New("blocks").Parse(`
{{- define "inline"}}{{range .}}{{if .Strong}}<strong>{{.Text}}</strong>{{else}}{{.Text}}{{end}}{{end}}{{end -}}
{{- range .}}
{{- if eq .Kind "list"}}
{{- if .Ordered}}<ol class="advice-list">{{else}}<ul class="advice-list">{{end}}
{{- range .Items}}<li>{{template "inline" .}}</li>{{end}}
{{- if .Ordered}}</ol>{{else}}</ul>{{end}}
{{- else if eq .Kind "heading"}}<h3 class="advice-heading">{{template "inline" .Text}}</h3>
{{- else if eq .Kind "emergency"}}<div class="callout callout-emergency" role="alert"><p>{{template "inline" .Text}}</p></div>
{{- else if eq .Kind "herbal_tip"}}<div class="callout callout-herbal"><p><span class="callout-label">Ayurvedic Tip:</span> {{template "inline" .Text}}</p></div>
{{- else if eq .Kind "disclaimer"}}<div class="callout callout-disclaimer"><p><span class="callout-label">Disclaimer:</span> {{template "inline" .Text}}</p></div>
{{- else}}<p class="advice-paragraph">{{template "inline" .Text}}</p>
{{- end}}
{{- end}}`))

// HTML renders blocks as escaped markup with one CSS class per block kind.
func HTML(blocks []Block) (template.HTML, error) {
	var buf bytes.Buffer
	if err := blockTemplate.Execute(&buf, blocks); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
