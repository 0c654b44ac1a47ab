package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/neptunedata"

	"stealthcompany.com/rdfload/internal/config"
	"stealthcompany.com/rdfload/internal/ledger"
	"stealthcompany.com/rdfload/internal/loader"
	"stealthcompany.com/rdfload/internal/orchestrator"
	"stealthcompany.com/rdfload/internal/rdf"
	"stealthcompany.com/rdfload/internal/sparql"
)

type fakeLoaderAPI struct {
	startOut *neptunedata.StartLoaderJobOutput
	startErr error

	statusOut *neptunedata.GetLoaderJobStatusOutput
	statusErr error
}

func (f *fakeLoaderAPI) StartLoaderJob(ctx context.Context, params *neptunedata.StartLoaderJobInput, optFns ...func(*neptunedata.Options)) (*neptunedata.StartLoaderJobOutput, error) {
	return f.startOut, f.startErr
}

func (f *fakeLoaderAPI) GetLoaderJobStatus(ctx context.Context, params *neptunedata.GetLoaderJobStatusInput, optFns ...func(*neptunedata.Options)) (*neptunedata.GetLoaderJobStatusOutput, error) {
	return f.statusOut, f.statusErr
}

type noopExecutor struct{}

func (noopExecutor) Execute(ctx context.Context, stmt sparql.Statement) error { return nil }

type fakeWorkflow struct {
	started []loader.LoadRequest
	err     error
}

func (f *fakeWorkflow) StartExecution(ctx context.Context, request loader.LoadRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.started = append(f.started, request)
	return fmt.Sprintf("arn:aws:states:eu-west-2:1:execution:rdf_load:run-%d", len(f.started)), nil
}

func testConfig() config.Config {
	return config.Config{
		PipelineID:            "dev",
		IDBase:                "https://placeholder.kg/id",
		GraphBase:             "https://placeholder.kg/graph",
		NeptuneLoadIAMRoleARN: "arn:aws:iam::1:role/neptune-load",
		AWSRegion:             "eu-west-2",
		APIPort:               "8080",
	}
}

func newTestServer(api loader.API, wf *fakeWorkflow) *Server {
	writer := ledger.NewWriter(noopExecutor{}, rdf.NewRegistry(), "dev", "https://placeholder.kg/graph", "https://placeholder.kg/id")
	orch := orchestrator.New(api, writer, "dev", rand.New(rand.NewSource(1)))
	return NewServer(orch, wf, testConfig())
}

const sampleNotification = `{
  "Records": [
    {
      "EventSource": "aws:sns",
      "EventVersion": "1.0",
      "EventSubscriptionArn": "arn:aws:sns:eu-west-2:1:rdf_load:sub",
      "Sns": {
        "Type": "Notification",
        "MessageId": "642a53e8-260d-55e9-8bbc-0e6a04a9b18a",
        "TopicArn": "arn:aws:sns:eu-west-2:1:rdf_load",
        "Subject": "Amazon S3 Notification",
        "Message": "{\"Records\":[{\"eventVersion\":\"2.1\",\"eventSource\":\"aws:s3\",\"awsRegion\":\"eu-west-2\",\"eventTime\":\"2023-09-18T10:03:15.979Z\",\"eventName\":\"ObjectCreated:Put\",\"s3\":{\"s3SchemaVersion\":\"1.0\",\"configurationId\":\"cfg\",\"bucket\":{\"name\":\"ekgf-dt-dev-metadata\",\"arn\":\"arn:aws:s3:::ekgf-dt-dev-metadata\"},\"object\":{\"key\":\"static-dataset/personas/file.ttl\",\"size\":1206}}}]}",
        "Timestamp": "2023-09-18T10:03:16.801Z"
      }
    }
  ]
}`

func TestNotifyHandler(t *testing.T) {
	wf := &fakeWorkflow{}
	server := newTestServer(&fakeLoaderAPI{}, wf)
	router := server.SetupRoutes()

	req := httptest.NewRequest("POST", "/notify", strings.NewReader(sampleNotification))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	if len(wf.started) != 1 {
		t.Fatalf("expected 1 workflow execution, got %d", len(wf.started))
	}
	started := wf.started[0]
	if started.Source != "s3://ekgf-dt-dev-metadata/static-dataset/personas/file.ttl" {
		t.Errorf("started source = %q", started.Source)
	}
	if started.IAMRoleARN != "arn:aws:iam::1:role/neptune-load" {
		t.Errorf("started IAM role = %q", started.IAMRoleARN)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["statusCode"] != float64(200) {
		t.Errorf("statusCode = %v", body["statusCode"])
	}
	if executions, ok := body["executions"].([]interface{}); !ok || len(executions) != 1 {
		t.Errorf("executions = %v", body["executions"])
	}
}

func TestNotifyHandlerRejectsEmptyEvent(t *testing.T) {
	server := newTestServer(&fakeLoaderAPI{}, &fakeWorkflow{})
	router := server.SetupRoutes()

	req := httptest.NewRequest("POST", "/notify", strings.NewReader(`{"Records": []}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLoadHandler(t *testing.T) {
	api := &fakeLoaderAPI{
		startOut: &neptunedata.StartLoaderJobOutput{
			Payload: map[string]string{"loadId": "job-42"},
		},
	}
	server := newTestServer(api, &fakeWorkflow{})
	router := server.SetupRoutes()

	payload := `{"pipelineId":"dev","loadRequest":{"source":"s3://b/f.ttl","format":"turtle","iamRoleArn":"arn:aws:iam::1:role/r","region":"eu-west-2"}}`
	req := httptest.NewRequest("POST", "/load", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var envelope loader.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.StatusCode != 200 {
		t.Errorf("envelope StatusCode = %d", envelope.StatusCode)
	}
	if envelope.ResultIdentifier != "job-42" {
		t.Errorf("ResultIdentifier = %q", envelope.ResultIdentifier)
	}
	if envelope.DetailStatus != loader.LoaderJobInQueue {
		t.Errorf("DetailStatus = %v", envelope.DetailStatus)
	}
}

func TestLoadHandlerPipelineMismatchKeepsTransportOK(t *testing.T) {
	server := newTestServer(&fakeLoaderAPI{}, &fakeWorkflow{})
	router := server.SetupRoutes()

	payload := `{"pipelineId":"prod","loadRequest":{"source":"s3://b/f.ttl"}}`
	req := httptest.NewRequest("POST", "/load", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// The envelope is the body; its status code is separate from the
	// transport status.
	if rec.Code != http.StatusOK {
		t.Fatalf("transport status = %d, want 200", rec.Code)
	}
	var envelope loader.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.StatusCode != 400 {
		t.Errorf("envelope StatusCode = %d, want 400", envelope.StatusCode)
	}
	if envelope.DetailStatus != loader.PipelineIDNotMatching {
		t.Errorf("DetailStatus = %v", envelope.DetailStatus)
	}
}

func TestLoadHandlerValidation(t *testing.T) {
	server := newTestServer(&fakeLoaderAPI{}, &fakeWorkflow{})
	router := server.SetupRoutes()

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"missing source", `{"pipelineId":"dev","loadRequest":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/load", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCheckHandlerMissingIdentifier(t *testing.T) {
	server := newTestServer(&fakeLoaderAPI{}, &fakeWorkflow{})
	router := server.SetupRoutes()

	req := httptest.NewRequest("POST", "/check", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("transport status = %d, want 200", rec.Code)
	}
	var envelope loader.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.StatusCode != 400 {
		t.Errorf("envelope StatusCode = %d, want 400", envelope.StatusCode)
	}
	if envelope.DetailStatus != loader.UserError {
		t.Errorf("DetailStatus = %v", envelope.DetailStatus)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	server := newTestServer(&fakeLoaderAPI{}, &fakeWorkflow{})
	router := server.SetupRoutes()

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}
