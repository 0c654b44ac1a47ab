// Package rdf holds the namespace and class identifiers used by the
// load-status ledger. A Namespace pairs a prefix name with its IRI, a
// Class is a namespace plus a local name, and a Registry is the
// immutable set of both that gets injected into statement building.
package rdf

import (
	"fmt"
	"strings"
)

// Namespace represents a namespace IRI together with its abbreviated
// prefix form, e.g. "rdf:" for <http://www.w3.org/1999/02/22-rdf-syntax-ns#>.
type Namespace struct {
	// Name is the prefix name, always ending in ':'
	Name string
	// IRI is the namespace IRI, always ending in '/' or '#'
	IRI string
}

// NewNamespace declares a namespace. The IRI must end in '/' or '#' so
// that local names can be appended to it; the name gets a trailing ':'
// if it does not have one already.
func NewNamespace(name, iri string) (Namespace, error) {
	if !strings.HasSuffix(iri, "/") && !strings.HasSuffix(iri, "#") {
		return Namespace{}, fmt.Errorf("namespace IRI %q does not end with either / or #", iri)
	}
	if !strings.HasSuffix(name, ":") {
		name += ":"
	}
	return Namespace{Name: name, IRI: iri}, nil
}

// MustNewNamespace is NewNamespace for well-known constant namespaces.
func MustNewNamespace(name, iri string) Namespace {
	ns, err := NewNamespace(name, iri)
	if err != nil {
		panic(err)
	}
	return ns
}

// LocalName returns the full IRI of a local name within this namespace.
func (ns Namespace) LocalName(name string) string {
	return ns.IRI + name
}

// SPARQLPrefix renders the namespace as a SPARQL PREFIX declaration.
func (ns Namespace) SPARQLPrefix() string {
	return fmt.Sprintf("PREFIX %s <%s>", ns.Name, ns.IRI)
}

// TurtlePrefix renders the namespace as a Turtle @prefix declaration.
func (ns Namespace) TurtlePrefix() string {
	return fmt.Sprintf("@prefix %s <%s> .", ns.Name, ns.IRI)
}

func (ns Namespace) String() string {
	return fmt.Sprintf("%s <%s>", ns.Name, ns.IRI)
}
