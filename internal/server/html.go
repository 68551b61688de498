// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/schema"
)

var resourcePage = template.Must(template.New("resource").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<p><code>{{.Subject}}</code> &middot; <a href="/download/{{.Name}}.ttl">Turtle</a></p>
<table>
<thead><tr><th>Property</th><th>Value</th></tr></thead>
<tbody>
{{- range .Rows}}
<tr><td title="{{.Predicate}}">{{.Property}}</td><td>
{{- if .Href}}<a href="{{.Href}}">{{.Value}}</a>{{else}}{{.Value}}{{end}}
{{- if .Note}} <small>{{.Note}}</small>{{end}}</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

type pageRow struct {
	Predicate string
	Property  string
	Value     string
	Href      string
	Note      string
}

type pageData struct {
	Name    string
	Title   string
	Subject string
	Rows    []pageRow
}

func (s *Server) writeHTML(w http.ResponseWriter, name string, g *graph.Graph) {
	data := pageData{
		Name:    name,
		Title:   name,
		Subject: s.opts.ResourceBase + name,
	}
	if names := g.Objects(data.Subject, schema.Name); len(names) > 0 {
		data.Title = names[0].Value
	}

	order := sortedPrefixes(g.Prefixes())
	for _, t := range g.Triples() {
		row := pageRow{
			Predicate: t.P.Value,
			Property:  shorten(t.P.Value, g.Prefixes(), order),
			Value:     t.O.Value,
		}
		switch {
		case t.O.IsIRI():
			row.Value = shorten(t.O.Value, g.Prefixes(), order)
			row.Href = t.O.Value
			if local, ok := strings.CutPrefix(t.O.Value, s.opts.ResourceBase); ok && local != "" {
				row.Href = "/resource/" + local
			}
		case t.O.Lang != "":
			row.Note = "@" + t.O.Lang
		case t.O.Datatype != "":
			row.Note = shorten(t.O.Datatype, g.Prefixes(), order)
		}
		data.Rows = append(data.Rows, row)
	}

	var buf bytes.Buffer
	if err := resourcePage.Execute(&buf, data); err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// shorten writes iri as prefix:local when a namespace matches.
func shorten(iri string, prefixes map[string]string, order []string) string {
	for _, p := range order {
		if local, ok := strings.CutPrefix(iri, prefixes[p]); ok && local != "" {
			return p + ":" + local
		}
	}
	return iri
}

// sortedPrefixes orders prefix names longest namespace first, so the most
// specific namespace wins in shorten.
func sortedPrefixes(prefixes map[string]string) []string {
	names := make([]string, 0, len(prefixes))
	for k := range prefixes {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := prefixes[names[i]], prefixes[names[j]]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return names[i] < names[j]
	})
	return names
}
