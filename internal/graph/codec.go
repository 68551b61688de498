// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knakk/rdf"

	"github.com/pdiddy/wikigraph/internal/schema"
)

// Format is an RDF serialization.
type Format string

const (
	Turtle   Format = "turtle"
	NTriples Format = "ntriples"
)

// ContentType returns the media type for f.
func (f Format) ContentType() string {
	if f == NTriples {
		return "application/n-triples"
	}
	return "text/turtle"
}

// Ext returns the file extension for f, dot included.
func (f Format) Ext() string {
	if f == NTriples {
		return ".nt"
	}
	return ".ttl"
}

func (f Format) rdf() rdf.Format {
	if f == NTriples {
		return rdf.NTriples
	}
	return rdf.Turtle
}

// FormatFor picks a format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl", ".turtle":
		return Turtle, nil
	case ".nt":
		return NTriples, nil
	}
	return "", fmt.Errorf("unknown RDF format for %s (want .ttl or .nt)", path)
}

// ParseFormat accepts "turtle", "ttl", "ntriples" or "nt".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "turtle", "ttl", "":
		return Turtle, nil
	case "ntriples", "nt", "n-triples":
		return NTriples, nil
	}
	return "", fmt.Errorf("unknown RDF format %q", s)
}

// Encode writes g to w in format f using g's prefix table.
func Encode(w io.Writer, g *Graph, f Format) error {
	ts := make([]rdf.Triple, 0, g.Len())
	for _, t := range g.Triples() {
		rt, err := toRDF(t)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", t, err)
		}
		ts = append(ts, rt)
	}

	enc := rdf.NewTripleEncoder(w, f.rdf())
	enc.Namespaces = make(map[string]string, len(g.Prefixes()))
	for prefix, ns := range g.Prefixes() {
		enc.Namespaces[ns] = prefix
	}
	if err := enc.EncodeAll(ts); err != nil {
		return err
	}
	return enc.Close()
}

// Decode reads triples in format f into a new graph with the given prefix
// table. Triples with blank nodes are skipped.
func Decode(r io.Reader, f Format, prefixes map[string]string) (*Graph, error) {
	g := New(prefixes)
	dec := rdf.NewTripleDecoder(r, f.rdf())
	for {
		rt, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return g, nil
		}
		if err != nil {
			return nil, err
		}
		if t, ok := fromRDF(rt); ok {
			g.Add(t)
		}
	}
}

// WriteFile encodes g to path, choosing the format from the extension.
func WriteFile(path string, g *Graph) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Encode(out, g, f); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}

// ReadFile decodes the RDF file at path.
func ReadFile(path string, prefixes map[string]string) (*Graph, error) {
	f, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer in.Close()
	g, err := Decode(in, f, prefixes)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return g, nil
}

// MergeFiles reads every file into one graph. Duplicate triples across
// files collapse.
func MergeFiles(paths []string, prefixes map[string]string) (*Graph, error) {
	merged := New(prefixes)
	for _, p := range paths {
		g, err := ReadFile(p, prefixes)
		if err != nil {
			return nil, err
		}
		merged.Merge(g)
	}
	return merged, nil
}

func toRDF(t Triple) (rdf.Triple, error) {
	s, err := rdf.NewIRI(t.S.Value)
	if err != nil {
		return rdf.Triple{}, err
	}
	p, err := rdf.NewIRI(t.P.Value)
	if err != nil {
		return rdf.Triple{}, err
	}
	o, err := toRDFObject(t.O)
	if err != nil {
		return rdf.Triple{}, err
	}
	return rdf.Triple{Subj: s, Pred: p, Obj: o}, nil
}

func toRDFObject(t Term) (rdf.Object, error) {
	switch {
	case t.Kind == KindIRI:
		return rdf.NewIRI(t.Value)
	case t.Lang != "":
		return rdf.NewLangLiteral(t.Value, t.Lang)
	case t.Datatype != "":
		dt, err := rdf.NewIRI(t.Datatype)
		if err != nil {
			return nil, err
		}
		return rdf.NewTypedLiteral(t.Value, dt), nil
	}
	return rdf.NewLiteral(t.Value)
}

const rdfLangString = schema.RDFNS + "langString"

func fromRDF(rt rdf.Triple) (Triple, bool) {
	if rt.Subj.Type() != rdf.TermIRI || rt.Pred.Type() != rdf.TermIRI {
		return Triple{}, false
	}
	t := Triple{S: IRI(rt.Subj.String()), P: IRI(rt.Pred.String())}
	switch rt.Obj.Type() {
	case rdf.TermIRI:
		t.O = IRI(rt.Obj.String())
	case rdf.TermLiteral:
		lit := rt.Obj.(rdf.Literal)
		dt := lit.DataType.String()
		if dt == rdfLangString {
			t.O = LangLiteral(lit.String(), langTag(lit))
		} else {
			t.O = TypedLiteral(lit.String(), dt)
		}
	default:
		return Triple{}, false
	}
	return t, true
}

// langTag reads the tag off the N-Triples form, "..."@en.
func langTag(lit rdf.Literal) string {
	s := lit.Serialize(rdf.NTriples)
	if i := strings.LastIndex(s, `"@`); i >= 0 {
		return s[i+2:]
	}
	return ""
}
