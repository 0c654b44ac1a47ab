// Package ledger records each load request's current lifecycle state
// as triples inside the graph store being loaded, making the store its
// own status ledger. Every transition is written as one idempotent
// DELETE/INSERT/WHERE upsert scoped to the pipeline's load-requests
// named graph.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/rdfload/internal/loader"
	"stealthcompany.com/rdfload/internal/metrics"
	"stealthcompany.com/rdfload/internal/rdf"
	"stealthcompany.com/rdfload/internal/sparql"
)

// Writer builds and executes status-ledger upserts.
type Writer struct {
	executor   sparql.Executor
	registry   rdf.Registry
	pipelineID string
	graphBase  string
	idBase     string
}

// NewWriter creates a ledger writer for one pipeline. graphBase and
// idBase are the pipeline's graph and identifier base IRIs, without
// trailing slash.
func NewWriter(executor sparql.Executor, registry rdf.Registry, pipelineID, graphBase, idBase string) *Writer {
	return &Writer{
		executor:   executor,
		registry:   registry,
		pipelineID: pipelineID,
		graphBase:  strings.TrimSuffix(graphBase, "/"),
		idBase:     strings.TrimSuffix(idBase, "/"),
	}
}

// GraphIRI returns the IRI of the pipeline's load-requests named graph.
func (w *Writer) GraphIRI() string {
	return fmt.Sprintf("%s/%s/load-requests", w.graphBase, w.pipelineID)
}

// SubjectIRI returns the deterministic IRI of a load request's ledger
// entry, derived from the loader-assigned load id.
func (w *Writer) SubjectIRI(loadID string) string {
	return fmt.Sprintf("%s/load-request/%s", w.idBase, loadID)
}

// Label renders the human-readable label of a ledger entry. The
// in-flight classes describe what is happening to the source file, the
// terminal classes describe how it ended.
func (w *Writer) Label(class rdf.Class, loadID, sourceIRI string) string {
	switch class.LocalName {
	case rdf.LocalNameQueuedLoadRequest:
		return fmt.Sprintf("Queued %s (load request %s)", sourceIRI, loadID)
	case rdf.LocalNameLoadingLoadRequest:
		return fmt.Sprintf("Loading %s (load request %s)", sourceIRI, loadID)
	case rdf.LocalNameFinishedLoadRequest:
		return fmt.Sprintf("Finished loading %s (load request %s)", sourceIRI, loadID)
	default:
		return fmt.Sprintf("Failed loading %s (load request %s)", sourceIRI, loadID)
	}
}

// UpsertStatement builds the upsert recording the given status for the
// given load id. The WHERE clause binds the subject through a VALUES
// singleton and matches the current type/label/comment/source/graph
// triples optionally, so the very first insert (no prior triples)
// succeeds; DELETE removes exactly what matched; INSERT asserts the new
// state. Applying the same statement twice leaves the graph unchanged.
func (w *Writer) UpsertStatement(loadID string, status loader.DetailStatus, rawPayload, sourceIRI string) sparql.Statement {
	class := status.RDFClass(w.registry)
	subject := w.SubjectIRI(loadID)
	graph := w.GraphIRI()
	label := w.Label(class, loadID, sourceIRI)

	prefixes := sparql.NewPrefixes()
	prefixes.Declare(w.registry.RDF)
	prefixes.Declare(w.registry.RDFS)
	prefixes.Declare(w.registry.DATAOPS)

	var b strings.Builder
	fmt.Fprintf(&b, "DELETE {\n")
	fmt.Fprintf(&b, "  GRAPH <%s> {\n", graph)
	fmt.Fprintf(&b, "    ?subject rdf:type ?oldType .\n")
	fmt.Fprintf(&b, "    ?subject rdfs:label ?oldLabel .\n")
	fmt.Fprintf(&b, "    ?subject rdfs:comment ?oldComment .\n")
	fmt.Fprintf(&b, "    ?subject dataops:source ?oldSource .\n")
	fmt.Fprintf(&b, "    ?subject dataops:graph ?oldGraph .\n")
	fmt.Fprintf(&b, "  }\n")
	fmt.Fprintf(&b, "}\n")
	fmt.Fprintf(&b, "INSERT {\n")
	fmt.Fprintf(&b, "  GRAPH <%s> {\n", graph)
	fmt.Fprintf(&b, "    ?subject rdf:type dataops:%s .\n", rdf.LocalNameLoadRequest)
	fmt.Fprintf(&b, "    ?subject rdf:type dataops:%s .\n", class.LocalName)
	fmt.Fprintf(&b, "    ?subject rdfs:label %s .\n", quoteLiteral(label))
	fmt.Fprintf(&b, "    ?subject rdfs:comment %s .\n", quoteLiteral(rawPayload))
	fmt.Fprintf(&b, "    ?subject dataops:source <%s> .\n", sourceIRI)
	fmt.Fprintf(&b, "    ?subject dataops:graph <%s> .\n", sourceIRI)
	fmt.Fprintf(&b, "  }\n")
	fmt.Fprintf(&b, "}\n")
	fmt.Fprintf(&b, "WHERE {\n")
	fmt.Fprintf(&b, "  VALUES ?subject { <%s> }\n", subject)
	fmt.Fprintf(&b, "  OPTIONAL { GRAPH <%s> { ?subject rdf:type ?oldType } }\n", graph)
	fmt.Fprintf(&b, "  OPTIONAL { GRAPH <%s> { ?subject rdfs:label ?oldLabel } }\n", graph)
	fmt.Fprintf(&b, "  OPTIONAL { GRAPH <%s> { ?subject rdfs:comment ?oldComment } }\n", graph)
	fmt.Fprintf(&b, "  OPTIONAL { GRAPH <%s> { ?subject dataops:source ?oldSource } }\n", graph)
	fmt.Fprintf(&b, "  OPTIONAL { GRAPH <%s> { ?subject dataops:graph ?oldGraph } }\n", graph)
	fmt.Fprintf(&b, "}\n")

	return sparql.NewStatement(prefixes, b.String())
}

// Write executes the upsert. A failure here is propagated, never
// swallowed: an un-persisted transition would leave external callers
// trusting a ledger that no longer reflects reality.
func (w *Writer) Write(ctx context.Context, loadID string, status loader.DetailStatus, rawPayload, sourceIRI string) error {
	stmt := w.UpsertStatement(loadID, status, rawPayload, sourceIRI)

	log.Info().
		Str("loadID", loadID).
		Str("detailStatus", string(status)).
		Str("class", status.RDFClass(w.registry).String()).
		Str("source", sourceIRI).
		Msg("Writing status ledger entry")

	start := time.Now()
	if err := w.executor.Execute(ctx, stmt); err != nil {
		metrics.RecordLedgerWrite("error", time.Since(start))
		return fmt.Errorf("failed to write status ledger entry for load %s: %w", loadID, err)
	}
	metrics.RecordLedgerWrite("ok", time.Since(start))
	return nil
}

// quoteLiteral renders a string as a SPARQL literal.
func quoteLiteral(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		"\"", "\\\"",
		"\n", "\\n",
		"\r", "\\r",
		"\t", "\\t",
	)
	return "\"" + r.Replace(s) + "\""
}
