package http

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/aretw0/eventmodel/internal/presentation/graph"
	"github.com/aretw0/eventmodel/pkg/domain"
)

var pageTemplate = template.Must(template.New("model").Funcs(template.FuncMap{
	"scenarios": func(s domain.Slice) int { return len(s.Scenarios) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>{{.ID}} · slices</title>
    <style>
        body { font-family: system-ui, sans-serif; margin: 2rem; }
        table { border-collapse: collapse; }
        td, th { border: 1px solid #ddd; padding: .3rem .6rem; text-align: left; }
    </style>
</head>
<body>
<h1>{{.ID}}</h1>
<pre class="mermaid">{{.Diagram}}</pre>
<table>
    <tr><th>Kind</th><th>Name</th><th>Ticks</th><th>Scenarios</th></tr>
    {{- range .View.Slices}}
    <tr><td>{{.Kind}}</td><td>{{.Name}}</td><td>{{.Ticks}}</td><td>{{scenarios .}}</td></tr>
    {{- end}}
</table>
<script type="module">
    import mermaid from 'https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs';
    mermaid.initialize({ startOnLoad: true });
    const events = new EventSource('/events?model=' + encodeURIComponent({{.ID}}));
    events.addEventListener('change', () => window.location.reload());
</script>
</body>
</html>
`))

type pageData struct {
	ID      string
	Diagram string
	View    *domain.View
}

// GetModelPage handles the GET /models/{id} request.
func (s *Server) GetModelPage(w http.ResponseWriter, r *http.Request) {
	view, ok := s.build(w, r)
	if !ok {
		return
	}

	data := pageData{
		ID:      view.Model,
		Diagram: graph.GenerateMermaid(view, nil),
		View:    view,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		slog.Error("Page render failed", "err", err)
	}
}
