package loader

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/neptunedata"
	"github.com/rs/zerolog/log"
)

// attemptTimeout bounds each call against the loader endpoint. The
// loader answers submission and status calls quickly or not at all, so
// a short per-attempt timeout surfaces a stuck endpoint as a retryable
// Timedout instead of hanging the invocation.
const attemptTimeout = 5 * time.Second

// API is the slice of the loader client used by the orchestrator.
// Satisfied by *neptunedata.Client.
type API interface {
	StartLoaderJob(ctx context.Context, params *neptunedata.StartLoaderJobInput, optFns ...func(*neptunedata.Options)) (*neptunedata.StartLoaderJobOutput, error)
	GetLoaderJobStatus(ctx context.Context, params *neptunedata.GetLoaderJobStatusInput, optFns ...func(*neptunedata.Options)) (*neptunedata.GetLoaderJobStatusOutput, error)
}

// NewNeptuneClient builds the loader API client against the given
// loader endpoint. A trailing /loader path is stripped since the SDK
// appends it itself.
func NewNeptuneClient(ctx context.Context, loaderEndpoint, region string) (*neptunedata.Client, error) {
	endpoint := strings.TrimSuffix(loaderEndpoint, "/loader")

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("endpoint", endpoint).
		Str("region", region).
		Msg("Creating Neptune loader client")

	return neptunedata.NewFromConfig(cfg, func(o *neptunedata.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.Region = region
		o.HTTPClient = &http.Client{Timeout: attemptTimeout}
	}), nil
}
