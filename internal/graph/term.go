// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph accumulates RDF triples built from infobox data and
// serializes them as Turtle or N-Triples.
package graph

import (
	"strconv"
	"strings"

	"github.com/pdiddy/wikigraph/internal/schema"
)

// Kind distinguishes IRIs from literals.
type Kind int

const (
	KindIRI Kind = iota
	KindLiteral
)

// Term is an RDF node. Blank nodes are never produced.
type Term struct {
	Kind     Kind   `json:"kind" yaml:"kind"`
	Value    string `json:"value" yaml:"value"`
	Datatype string `json:"datatype,omitempty" yaml:"datatype,omitempty"`
	Lang     string `json:"lang,omitempty" yaml:"lang,omitempty"`
}

// IRI returns an IRI term.
func IRI(v string) Term { return Term{Kind: KindIRI, Value: v} }

// Literal returns a plain string literal.
func Literal(v string) Term { return Term{Kind: KindLiteral, Value: v} }

// TypedLiteral returns a literal with a datatype IRI.
func TypedLiteral(v, datatype string) Term {
	if datatype == schema.XSDString {
		datatype = ""
	}
	return Term{Kind: KindLiteral, Value: v, Datatype: datatype}
}

// LangLiteral returns a language-tagged literal.
func LangLiteral(v, lang string) Term {
	return Term{Kind: KindLiteral, Value: v, Lang: strings.ToLower(lang)}
}

// IsIRI reports whether t is an IRI.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// String renders t in N-Triples syntax.
func (t Term) String() string {
	if t.Kind == KindIRI {
		return "<" + t.Value + ">"
	}
	s := strconv.Quote(t.Value)
	switch {
	case t.Lang != "":
		return s + "@" + t.Lang
	case t.Datatype != "":
		return s + "^^<" + t.Datatype + ">"
	}
	return s
}

// Triple is one subject, predicate, object statement. S and P are IRIs.
type Triple struct {
	S Term `json:"s" yaml:"s"`
	P Term `json:"p" yaml:"p"`
	O Term `json:"o" yaml:"o"`
}

// T builds a triple whose subject and predicate are IRIs.
func T(s, p string, o Term) Triple {
	return Triple{S: IRI(s), P: IRI(p), O: o}
}

// String renders the triple as one N-Triples line without the newline.
func (t Triple) String() string {
	return t.S.String() + " " + t.P.String() + " " + t.O.String() + " ."
}
