package rdf

// Local names of the load-request lifecycle classes in the dataops
// ontology. LoadRequest is the superclass of the other four.
const (
	LocalNameLoadRequest         = "LoadRequest"
	LocalNameQueuedLoadRequest   = "QueuedLoadRequest"
	LocalNameLoadingLoadRequest  = "LoadingLoadRequest"
	LocalNameFinishedLoadRequest = "FinishedLoadRequest"
	LocalNameFailedLoadRequest   = "FailedLoadRequest"
)

// Well-known namespaces. The dataops namespace holds the lifecycle
// classes and the source/graph provenance predicates.
var (
	NamespaceRDF     = MustNewNamespace("rdf", "http://www.w3.org/1999/02/22-rdf-syntax-ns#")
	NamespaceRDFS    = MustNewNamespace("rdfs", "http://www.w3.org/2000/01/rdf-schema#")
	NamespaceOWL     = MustNewNamespace("owl", "http://www.w3.org/2002/07/owl#")
	NamespaceXSD     = MustNewNamespace("xsd", "http://www.w3.org/2001/XMLSchema#")
	NamespaceDCT     = MustNewNamespace("dct", "http://purl.org/dc/terms/")
	NamespacePROV    = MustNewNamespace("prov", "http://www.w3.org/ns/prov#")
	NamespaceDATAOPS = MustNewNamespace("dataops", "https://ekgf.org/ontology/dataops/")
)

// Registry is the immutable set of namespaces and lifecycle classes
// used by the statement builder and the status ledger. It is built once
// at process start and passed by value wherever identifiers are needed,
// so tests can substitute their own.
type Registry struct {
	RDF     Namespace
	RDFS    Namespace
	OWL     Namespace
	XSD     Namespace
	DCT     Namespace
	PROV    Namespace
	DATAOPS Namespace

	ClassLoadRequest         Class
	ClassQueuedLoadRequest   Class
	ClassLoadingLoadRequest  Class
	ClassFinishedLoadRequest Class
	ClassFailedLoadRequest   Class
}

// NewRegistry builds the default registry over the well-known namespaces.
func NewRegistry() Registry {
	return Registry{
		RDF:     NamespaceRDF,
		RDFS:    NamespaceRDFS,
		OWL:     NamespaceOWL,
		XSD:     NamespaceXSD,
		DCT:     NamespaceDCT,
		PROV:    NamespacePROV,
		DATAOPS: NamespaceDATAOPS,

		ClassLoadRequest:         NewClass(NamespaceDATAOPS, LocalNameLoadRequest),
		ClassQueuedLoadRequest:   NewClass(NamespaceDATAOPS, LocalNameQueuedLoadRequest),
		ClassLoadingLoadRequest:  NewClass(NamespaceDATAOPS, LocalNameLoadingLoadRequest),
		ClassFinishedLoadRequest: NewClass(NamespaceDATAOPS, LocalNameFinishedLoadRequest),
		ClassFailedLoadRequest:   NewClass(NamespaceDATAOPS, LocalNameFailedLoadRequest),
	}
}
