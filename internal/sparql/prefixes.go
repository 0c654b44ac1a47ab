// Package sparql composes SPARQL statement text from prefix
// declarations and body fragments, classifies statements as query or
// update forms, and sends them to the store's query/update endpoints.
package sparql

import (
	"strings"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/rdfload/internal/rdf"
)

// DeclareResult is the outcome of declaring a prefix.
type DeclareResult int

const (
	// DeclareNoChange means the same name/IRI pair was already declared.
	DeclareNoChange DeclareResult = iota
	// DeclareReplacedExisting means the name was already declared with a
	// different IRI and now points at the new one.
	DeclareReplacedExisting
	// DeclareDeclaredNew means the name was not declared before.
	DeclareDeclaredNew
)

func (r DeclareResult) String() string {
	switch r {
	case DeclareNoChange:
		return "no change"
	case DeclareReplacedExisting:
		return "replaced existing"
	case DeclareDeclaredNew:
		return "declared new"
	}
	return "unknown"
}

// Prefixes is an ordered collection of declared namespaces, rendered as
// the leading PREFIX block of every statement.
type Prefixes struct {
	namespaces []rdf.Namespace
}

// NewPrefixes returns an empty prefix collection.
func NewPrefixes() *Prefixes {
	return &Prefixes{}
}

// DefaultPrefixes returns a collection with the registry's rdf, rdfs,
// owl and xsd namespaces declared.
func DefaultPrefixes(reg rdf.Registry) *Prefixes {
	p := NewPrefixes()
	p.Declare(reg.RDF)
	p.Declare(reg.RDFS)
	p.Declare(reg.OWL)
	p.Declare(reg.XSD)
	return p
}

// Declare adds a namespace to the collection. Declaring the same name
// with the same IRI again is a no-op; declaring a known name with a
// different IRI replaces the earlier declaration in place.
func (p *Prefixes) Declare(ns rdf.Namespace) DeclareResult {
	for i, existing := range p.namespaces {
		if existing.Name != ns.Name {
			continue
		}
		if existing.IRI == ns.IRI {
			return DeclareNoChange
		}
		log.Warn().
			Str("prefix", ns.Name).
			Str("old_iri", existing.IRI).
			Str("new_iri", ns.IRI).
			Msg("Replacing prefix declaration")
		p.namespaces[i] = ns
		return DeclareReplacedExisting
	}
	p.namespaces = append(p.namespaces, ns)
	return DeclareDeclaredNew
}

// DeclareClass declares the namespace of the given class.
func (p *Prefixes) DeclareClass(c rdf.Class) DeclareResult {
	return p.Declare(c.Namespace)
}

// Namespaces returns the declared namespaces in declaration order.
func (p *Prefixes) Namespaces() []rdf.Namespace {
	out := make([]rdf.Namespace, len(p.namespaces))
	copy(out, p.namespaces)
	return out
}

// String renders the PREFIX block, one declaration per line in
// declaration order.
func (p *Prefixes) String() string {
	var b strings.Builder
	for _, ns := range p.namespaces {
		b.WriteString(ns.SPARQLPrefix())
		b.WriteByte('\n')
	}
	return b.String()
}
