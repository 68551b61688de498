// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema maps infobox parameter names onto schema.org properties and
// infobox templates onto schema.org classes.
package schema

import "strings"

// Fixed namespaces. The resource, ontology and page namespaces have
// defaults here but are configurable through types.GraphConfig.
const (
	SchemaNS   = "http://schema.org/"
	DCTermsNS  = "http://purl.org/dc/terms/"
	FOAFNS     = "http://xmlns.com/foaf/0.1/"
	RDFNS      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNS     = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNS      = "http://www.w3.org/2001/XMLSchema#"
	ResourceNS = "http://tolkiengateway.net/resource/"
	OntologyNS = "http://tolkiengateway.net/ontology/"
	PageNS     = "http://tolkiengateway.net/page/"
	OWLNS      = "http://www.w3.org/2002/07/owl#"
	DBpediaNS  = "http://dbpedia.org/resource/"
	YAGONS     = "http://yago-knowledge.org/resource/"
	METWNS     = "http://example.org/metw/"
)

// Frequently used terms.
const (
	RDFType      = RDFNS + "type"
	RDFSLabel    = RDFSNS + "label"
	XSDAnyURI    = XSDNS + "anyURI"
	XSDString    = XSDNS + "string"
	Thing        = SchemaNS + "Thing"
	Person       = SchemaNS + "Person"
	WebPage      = SchemaNS + "WebPage"
	Name         = SchemaNS + "name"
	URL          = SchemaNS + "url"
	About        = SchemaNS + "about"
	SubjectOf    = SchemaNS + "subjectOf"
	RelatedTo    = SchemaNS + "relatedTo"
	CreativeWork = SchemaNS + "CreativeWork"
	Source       = DCTermsNS + "source"
	SameAs       = OWLNS + "sameAs"
)

// Prefixes maps the prefixes used in rule files and Turtle output to their
// namespaces, given the configured ontology and resource namespaces.
func Prefixes(resourceNS, ontologyNS string) map[string]string {
	return map[string]string{
		"schema":  SchemaNS,
		"tgw":     resourceNS,
		"tgwo":    ontologyNS,
		"dcterms": DCTermsNS,
		"foaf":    FOAFNS,
		"rdf":     RDFNS,
		"rdfs":    RDFSNS,
		"xsd":     XSDNS,
		"owl":     OWLNS,
		"dbr":     DBpediaNS,
		"yago":    YAGONS,
		"metw":    METWNS,
	}
}

// Expand turns a prefixed name such as "schema:birthDate" into a full IRI.
// Full IRIs and unknown prefixes pass through unchanged.
func Expand(curie string, prefixes map[string]string) string {
	if strings.Contains(curie, "://") {
		return curie
	}
	prefix, local, ok := strings.Cut(curie, ":")
	if !ok {
		return curie
	}
	if ns, found := prefixes[prefix]; found {
		return ns + local
	}
	return curie
}
