package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"

	"stealthcompany.com/rdfload/internal/loader"
	"stealthcompany.com/rdfload/internal/rdf"
	"stealthcompany.com/rdfload/internal/sparql"
)

// recordingExecutor captures executed statements.
type recordingExecutor struct {
	statements []sparql.Statement
	err        error
}

func (r *recordingExecutor) Execute(ctx context.Context, stmt sparql.Statement) error {
	r.statements = append(r.statements, stmt)
	return r.err
}

func newTestWriter(exec sparql.Executor) *Writer {
	return NewWriter(
		exec,
		rdf.NewRegistry(),
		"dev",
		"https://placeholder.kg/graph/",
		"https://placeholder.kg/id/",
	)
}

func TestGraphAndSubjectIRIs(t *testing.T) {
	w := newTestWriter(&recordingExecutor{})

	if got := w.GraphIRI(); got != "https://placeholder.kg/graph/dev/load-requests" {
		t.Errorf("GraphIRI = %q", got)
	}
	if got := w.SubjectIRI("abc-123"); got != "https://placeholder.kg/id/load-request/abc-123" {
		t.Errorf("SubjectIRI = %q", got)
	}
}

func TestLabelPerLifecycleClass(t *testing.T) {
	w := newTestWriter(&recordingExecutor{})
	reg := rdf.NewRegistry()

	tests := []struct {
		class    rdf.Class
		expected string
	}{
		{reg.ClassQueuedLoadRequest, "Queued s3://b/f.ttl (load request id1)"},
		{reg.ClassLoadingLoadRequest, "Loading s3://b/f.ttl (load request id1)"},
		{reg.ClassFinishedLoadRequest, "Finished loading s3://b/f.ttl (load request id1)"},
		{reg.ClassFailedLoadRequest, "Failed loading s3://b/f.ttl (load request id1)"},
	}

	for _, tt := range tests {
		t.Run(tt.class.LocalName, func(t *testing.T) {
			if got := w.Label(tt.class, "id1", "s3://b/f.ttl"); got != tt.expected {
				t.Errorf("Label = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestUpsertStatementShape(t *testing.T) {
	w := newTestWriter(&recordingExecutor{})

	stmt := w.UpsertStatement("job-1", loader.LoaderJobCompleted, `{"overallStatus":{}}`, "s3://bucket/data.ttl")
	text := stmt.String()

	if stmt.Type() != sparql.StatementTypeDelete {
		t.Errorf("upsert classified as %v, want delete/insert update form", stmt.Type())
	}

	for _, want := range []string{
		"PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>",
		"PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>",
		"PREFIX dataops: <https://ekgf.org/ontology/dataops/>",
		"GRAPH <https://placeholder.kg/graph/dev/load-requests>",
		"VALUES ?subject { <https://placeholder.kg/id/load-request/job-1> }",
		"?subject rdf:type dataops:LoadRequest .",
		"?subject rdf:type dataops:FinishedLoadRequest .",
		`"Finished loading s3://bucket/data.ttl (load request job-1)"`,
		"?subject dataops:source <s3://bucket/data.ttl> .",
		"?subject dataops:graph <s3://bucket/data.ttl> .",
		"OPTIONAL { GRAPH <https://placeholder.kg/graph/dev/load-requests> { ?subject rdfs:label ?oldLabel } }",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("upsert statement missing %q:\n%s", want, text)
		}
	}

	// The raw payload literal has its quotes escaped.
	if !strings.Contains(text, `"{\"overallStatus\":{}}"`) {
		t.Errorf("raw payload not quoted as a literal:\n%s", text)
	}
}

func TestUpsertStatementDeterministic(t *testing.T) {
	w := newTestWriter(&recordingExecutor{})

	a := w.UpsertStatement("job-1", loader.LoaderJobInProgress, "{}", "s3://b/f.ttl")
	b := w.UpsertStatement("job-1", loader.LoaderJobInProgress, "{}", "s3://b/f.ttl")
	if a.String() != b.String() {
		t.Errorf("same inputs produced different statements")
	}
}

func TestWriteExecutesAndPropagatesErrors(t *testing.T) {
	exec := &recordingExecutor{}
	w := newTestWriter(exec)

	if err := w.Write(context.Background(), "job-1", loader.LoaderJobInQueue, "{}", "s3://b/f.ttl"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(exec.statements) != 1 {
		t.Fatalf("expected 1 executed statement, got %d", len(exec.statements))
	}

	failing := &recordingExecutor{err: errors.New("endpoint unreachable")}
	w = newTestWriter(failing)
	err := w.Write(context.Background(), "job-1", loader.LoaderJobInQueue, "{}", "s3://b/f.ttl")
	if err == nil {
		t.Fatal("ledger write failure must propagate")
	}
	if !strings.Contains(err.Error(), "job-1") {
		t.Errorf("error does not name the load id: %v", err)
	}
}
