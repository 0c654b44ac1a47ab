package rdf

// Class represents an RDFS or OWL class identifier consisting of a
// namespace and a local name.
type Class struct {
	Namespace Namespace
	LocalName string
}

// NewClass declares a class within the given namespace.
func NewClass(ns Namespace, localName string) Class {
	return Class{Namespace: ns, LocalName: localName}
}

// IRI returns the full IRI of the class.
func (c Class) IRI() string {
	return c.Namespace.LocalName(c.LocalName)
}

// String returns the prefixed form, e.g. "dataops:LoadRequest".
func (c Class) String() string {
	return c.Namespace.Name + c.LocalName
}
