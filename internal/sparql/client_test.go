package sparql

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type recordedRequest struct {
	path    string
	field   string
	value   string
	accept  string
	te      string
	content string
}

func newRecordingServer(t *testing.T, status int, requests *[]recordedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		rec := recordedRequest{
			path:    r.URL.Path,
			accept:  r.Header.Get("Accept"),
			te:      r.Header.Get("TE"),
			content: r.Header.Get("Content-Type"),
		}
		for _, field := range []string{"query", "update"} {
			if v := r.PostFormValue(field); v != "" {
				rec.field = field
				rec.value = v
			}
		}
		*requests = append(*requests, rec)
		w.WriteHeader(status)
	}))
}

func TestExecuteRoutesQueryAndUpdate(t *testing.T) {
	var requests []recordedRequest
	server := newRecordingServer(t, http.StatusOK, &requests)
	defer server.Close()

	client := NewClient(server.URL+"/query", server.URL+"/update", 5*time.Second)

	queryStmt := NewStatement(NewPrefixes(), "SELECT ?s WHERE { ?s ?p ?o }")
	if err := client.Execute(context.Background(), queryStmt); err != nil {
		t.Fatalf("query Execute: %v", err)
	}

	updateStmt := NewStatement(NewPrefixes(), "INSERT DATA { <s> <p> <o> }")
	if err := client.Execute(context.Background(), updateStmt); err != nil {
		t.Fatalf("update Execute: %v", err)
	}

	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}

	q := requests[0]
	if q.path != "/query" || q.field != "query" {
		t.Errorf("query routed to %s with field %q", q.path, q.field)
	}
	if q.accept != "application/sparql-results+json" {
		t.Errorf("query Accept = %q", q.accept)
	}

	u := requests[1]
	if u.path != "/update" || u.field != "update" {
		t.Errorf("update routed to %s with field %q", u.path, u.field)
	}
	if u.accept != "text/plain" {
		t.Errorf("update Accept = %q", u.accept)
	}
	if !strings.Contains(u.value, "INSERT DATA") {
		t.Errorf("update form value lost the statement: %q", u.value)
	}

	for _, rec := range requests {
		if rec.content != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", rec.content)
		}
		if rec.te != "trailers, deflate, gzip" {
			t.Errorf("TE = %q", rec.te)
		}
	}
}

func TestExecuteUsesQueryEndpointForUpdatesWhenUnset(t *testing.T) {
	var requests []recordedRequest
	server := newRecordingServer(t, http.StatusOK, &requests)
	defer server.Close()

	client := NewClient(server.URL+"/sparql", "", 5*time.Second)

	stmt := NewStatement(NewPrefixes(), "INSERT DATA { <s> <p> <o> }")
	if err := client.Execute(context.Background(), stmt); err != nil {
		t.Fatal(err)
	}

	if len(requests) != 1 || requests[0].path != "/sparql" {
		t.Errorf("update not routed to the query endpoint: %+v", requests)
	}
}

func TestExecuteErrorOnServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "MalformedQueryException", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)
	err := client.Execute(context.Background(), NewStatement(NewPrefixes(), "SELECT ?s WHERE { ?s ?p ?o }"))
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "MalformedQueryException") {
		t.Errorf("error does not carry the response body: %v", err)
	}
}
