// Package workflow starts the Step Functions execution that drives a
// single RDF file through submission and status polling.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/rdfload/internal/loader"
)

// ExecutionInput is the input document handed to the state machine. It
// carries the prepared load request plus the state machine's own ARN so
// downstream states can reference it.
type ExecutionInput struct {
	LoadRequest   loader.LoadRequest `json:"load_request"`
	RDFLoadSfnARN string             `json:"rdf_load_sfn_arn"`
}

// API is the subset of the Step Functions client we use.
type API interface {
	StartExecution(ctx context.Context, params *sfn.StartExecutionInput, optFns ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error)
}

// StateMachine wraps the Step Functions client for one state machine.
type StateMachine struct {
	client          API
	stateMachineARN string
}

// NewStateMachine builds a StateMachine from the default AWS config.
func NewStateMachine(ctx context.Context, stateMachineARN, region string) (*StateMachine, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &StateMachine{
		client:          sfn.NewFromConfig(cfg),
		stateMachineARN: stateMachineARN,
	}, nil
}

// NewStateMachineWithClient builds a StateMachine around an existing
// client.
func NewStateMachineWithClient(client API, stateMachineARN string) *StateMachine {
	return &StateMachine{client: client, stateMachineARN: stateMachineARN}
}

// StartExecution starts one execution for the given load request. The
// execution name is derived from the load request's graph name plus a
// random suffix, since execution names must be unique per account.
func (sm *StateMachine) StartExecution(ctx context.Context, request loader.LoadRequest) (string, error) {
	input := ExecutionInput{
		LoadRequest:   request,
		RDFLoadSfnARN: sm.stateMachineARN,
	}
	encoded, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to encode state machine input: %w", err)
	}

	name := fmt.Sprintf("rdf-load-%s", uuid.New().String())
	out, err := sm.client.StartExecution(ctx, &sfn.StartExecutionInput{
		StateMachineArn: aws.String(sm.stateMachineARN),
		Name:            aws.String(name),
		Input:           aws.String(string(encoded)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to start state machine execution %s: %w", name, err)
	}

	executionARN := aws.ToString(out.ExecutionArn)
	log.Info().
		Str("execution_arn", executionARN).
		Str("source", request.Source).
		Msg("Started load workflow execution")
	return executionARN, nil
}
