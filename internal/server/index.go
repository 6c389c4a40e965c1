package server

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/yuin/goldmark"
)

// The index page is a plain read projection of the list. Descriptions are
// Markdown; goldmark's default parser escapes raw HTML, so user content
// cannot inject markup.
var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>taskflow</title>
</head>
<body>
<h1>taskflow</h1>
<p class="filter">Filter: {{.Filter}} &middot; {{.Total}} item(s)</p>
<ul class="items">
{{- range .Items}}
<li class="item{{if .Complete}} complete{{end}}" data-id="{{.ID}}">
<input type="checkbox" disabled{{if .Complete}} checked{{end}}>
<span class="description">{{.Rendered}}</span>
</li>
{{- end}}
</ul>
</body>
</html>
`))

type renderedItem struct {
	ID       string
	Complete bool
	Rendered template.HTML
}

type indexData struct {
	Filter string
	Total  int
	Items  []renderedItem
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.store.State()

	md := goldmark.New()
	items := make([]renderedItem, 0, len(snap.Items))
	for _, it := range snap.Filtered() {
		items = append(items, renderedItem{
			ID:       it.ID,
			Complete: it.Complete,
			Rendered: renderMarkdown(md, it.Description),
		})
	}

	data := indexData{
		Filter: string(snap.Filter),
		Total:  len(snap.Items),
		Items:  items,
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		slog.Error("Render index", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func renderMarkdown(md goldmark.Markdown, source string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		// Fall back to the raw text, escaped by the template engine.
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(buf.String())
}
