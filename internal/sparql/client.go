package sparql

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Client sends composed statements to a SPARQL endpoint over HTTP.
// Query forms go to the query endpoint, update forms to the update
// endpoint. Statements are posted form-urlencoded with a single
// query/update field, per the SPARQL protocol.
type Client struct {
	httpClient     *http.Client
	queryEndpoint  string
	updateEndpoint string
}

// NewClient creates a SPARQL client. If updateEndpoint is empty the
// query endpoint is used for updates as well.
func NewClient(queryEndpoint, updateEndpoint string, timeout time.Duration) *Client {
	if updateEndpoint == "" {
		updateEndpoint = queryEndpoint
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		queryEndpoint:  queryEndpoint,
		updateEndpoint: updateEndpoint,
	}
}

// Executor is the statement-execution interface the ledger writes
// through; satisfied by Client and by test fakes.
type Executor interface {
	Execute(ctx context.Context, stmt Statement) error
}

func (c *Client) buildRequest(ctx context.Context, stmt Statement) (*http.Request, error) {
	endpoint := c.queryEndpoint
	field := "query"
	if stmt.Type().IsUpdate() {
		endpoint = c.updateEndpoint
		field = "update"
	}

	form := url.Values{}
	form.Set(field, stmt.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build SPARQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", stmt.Type().ResponseMIMEType())
	// Neptune reports per-statement errors in HTTP trailing headers, see
	// https://docs.aws.amazon.com/neptune/latest/userguide/access-graph-sparql-http-trailing-headers.html
	req.Header.Set("TE", "trailers, deflate, gzip")
	return req, nil
}

// Execute sends the statement to the endpoint matching its type. The
// response body is not semantically consumed beyond a non-error status.
func (c *Client) Execute(ctx context.Context, stmt Statement) error {
	req, err := c.buildRequest(ctx, stmt)
	if err != nil {
		return err
	}

	log.Debug().
		Str("endpoint", req.URL.String()).
		Str("type", stmt.Type().ResponseMIMEType()).
		Msg("Executing SPARQL statement")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("SPARQL request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode >= 400 {
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("SPARQL endpoint returned error")
		return fmt.Errorf("SPARQL endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	log.Debug().Int("status", resp.StatusCode).Msg("SPARQL statement executed")
	return nil
}
