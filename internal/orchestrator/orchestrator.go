// Package orchestrator drives the load lifecycle, one state transition
// per invocation: submit a load request to the bulk loader, or poll a
// previously submitted job, classify the outcome, record it in the
// status ledger and hand the caller an envelope telling it whether and
// when to poll again. There is no internal timer or loop; the workflow
// driver owns the cadence.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/neptunedata"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/rdfload/internal/ledger"
	"stealthcompany.com/rdfload/internal/loader"
	"stealthcompany.com/rdfload/internal/metrics"
)

// Orchestrator holds the collaborators of one pipeline. It is stateless
// between invocations; all lifecycle state lives in the graph store.
type Orchestrator struct {
	loaderAPI  loader.API
	ledger     *ledger.Writer
	pipelineID string
	rnd        *rand.Rand
}

// New creates an orchestrator. rnd is the source for the jittered retry
// hints; inject a seeded one in tests.
func New(loaderAPI loader.API, ledgerWriter *ledger.Writer, pipelineID string, rnd *rand.Rand) *Orchestrator {
	return &Orchestrator{
		loaderAPI:  loaderAPI,
		ledger:     ledgerWriter,
		pipelineID: pipelineID,
		rnd:        rnd,
	}
}

// Submit sends the load request to the bulk loader and, on success,
// writes the Queued ledger entry and returns an envelope carrying the
// loader-assigned job id as resultIdentifier.
//
// A ledger write failure aborts the invocation: the returned error is
// the only path on which a raw error leaves this package.
func (o *Orchestrator) Submit(ctx context.Context, req loader.LoadRequest, receivedPipelineID string) (loader.Envelope, error) {
	if receivedPipelineID != o.pipelineID {
		log.Warn().
			Str("received", receivedPipelineID).
			Str("required", o.pipelineID).
			Msg("Rejecting load request for wrong pipeline")
		return loader.PipelineIDNotMatchingEnvelope(receivedPipelineID, o.pipelineID), nil
	}

	log.Info().Str("source", req.Source).Str("format", req.Format).Msg("Submitting loader job")

	out, err := o.loaderAPI.StartLoaderJob(ctx, req.StartLoaderJobInput())
	if err != nil {
		metrics.RecordSubmission("error")
		return loader.EnvelopeFromError(err, o.rnd), nil
	}

	loadID := out.Payload["loadId"]
	if loadID == "" {
		metrics.RecordSubmission("no_load_id")
		log.Error().Interface("payload", out.Payload).Msg("Loader job started but no loadId in payload")
		return loader.Envelope{
			StatusCode:   500,
			Message:      "Loader job started but response carried no loadId",
			DetailStatus: loader.LoaderJobStatusUnknown,
		}, nil
	}

	rawPayload, _ := json.Marshal(out.Payload)
	if err := o.ledger.Write(ctx, loadID, loader.LoaderJobInQueue, string(rawPayload), req.Source); err != nil {
		return loader.Envelope{}, err
	}

	metrics.RecordSubmission("ok")
	return loader.OK(loader.LoaderJobInQueue, "", o.rnd).WithResultIdentifier(loadID), nil
}

// Poll checks the status of a previously submitted loader job,
// classifies it, upserts the ledger entry and returns the envelope.
// Repeated polls after a terminal status rewrite the same ledger
// content, which is a safe no-op.
func (o *Orchestrator) Poll(ctx context.Context, loadID string) (loader.Envelope, error) {
	if loadID == "" {
		log.Error().Msg("Poll called without a result identifier")
		return loader.Envelope{
			StatusCode:   400,
			Message:      "Missing result identifier",
			DetailStatus: loader.UserError,
		}, nil
	}

	log.Info().Str("loadID", loadID).Msg("Checking whether loader job has finished")

	out, err := o.loaderAPI.GetLoaderJobStatus(ctx, &neptunedata.GetLoaderJobStatusInput{
		LoadId: aws.String(loadID),
		Errors: aws.Bool(true),
	})
	if err != nil {
		metrics.RecordPoll("error")
		return loader.EnvelopeFromError(err, o.rnd), nil
	}

	var payload map[string]interface{}
	if out.Payload != nil {
		if err := out.Payload.UnmarshalSmithyDocument(&payload); err != nil {
			metrics.RecordPoll("bad_payload")
			log.Error().Err(err).Str("loadID", loadID).Msg("Cannot decode loader status payload")
			return loader.Envelope{
				StatusCode:   500,
				Message:      fmt.Sprintf("Cannot decode loader status payload: %s", err),
				DetailStatus: loader.LoaderJobStatusUnknown,
			}, nil
		}
	}

	rawStatus, sourceIRI := overallStatus(payload)
	if rawStatus == "" {
		// Cannot safely determine the new state, so the ledger entry is
		// left untouched.
		metrics.RecordPoll("missing_status")
		log.Error().Str("loadID", loadID).Msg("Loader status payload has no overallStatus.status field")
		return loader.OK(
			loader.LoaderJobStatusUnknown,
			fmt.Sprintf("loader status payload for %s has no overallStatus.status field", loadID),
			o.rnd,
		).WithResultIdentifier(loadID), nil
	}

	status := loader.DetailStatusFromLoaderJobStatus(rawStatus)
	metrics.RecordPoll(string(status))

	rawPayload, _ := json.Marshal(payload)
	if err := o.ledger.Write(ctx, loadID, status, string(rawPayload), sourceIRI); err != nil {
		return loader.Envelope{}, err
	}

	detailed := ""
	if status.ShouldShowDetail() {
		detailed = string(rawPayload)
	}
	return loader.OK(status, detailed, o.rnd).WithResultIdentifier(loadID), nil
}

// overallStatus digs the status string and the source URI out of the
// loader's status payload.
func overallStatus(payload map[string]interface{}) (status, sourceIRI string) {
	overall, ok := payload["overallStatus"].(map[string]interface{})
	if !ok {
		return "", ""
	}
	status, _ = overall["status"].(string)
	sourceIRI, _ = overall["fullUri"].(string)
	return status, sourceIRI
}
