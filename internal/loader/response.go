package loader

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"
)

// Bounds for the suggested retry wait, in seconds. The loader queue has
// a small fixed number of slots, so every caller gets an independently
// random wait to keep hundreds of pending requests from polling in
// lockstep.
const (
	MinRetryWaitSeconds = 10
	MaxRetryWaitSeconds = 60
)

// Envelope is the wire-format result returned to the workflow driver.
// Optional fields are omitted from the JSON form, never emitted as null.
type Envelope struct {
	StatusCode            int          `json:"statusCode"`
	Message               string       `json:"message"`
	DetailedMessage       string       `json:"detailedMessage,omitempty"`
	DetailStatus          DetailStatus `json:"detailStatus"`
	ResultIdentifier      string       `json:"resultIdentifier,omitempty"`
	SuggestedRetrySeconds int          `json:"suggestedRetrySeconds,omitempty"`
}

// OK builds a 200 envelope for the given status. The detailed message
// is suppressed when identical to the status message. Retryable
// statuses get a jittered retry hint drawn from rnd.
func OK(status DetailStatus, detailedMessage string, rnd *rand.Rand) Envelope {
	retryable := status.IsRetryable()

	evt := log.Info().Str("detailStatus", string(status)).Bool("retryable", retryable)
	if detailedMessage != "" {
		evt = evt.Str("detail", detailedMessage)
	}
	evt.Msg(status.Message())

	e := Envelope{
		StatusCode:      200,
		Message:         status.Message(),
		DetailedMessage: detailedMessage,
		DetailStatus:    status,
	}
	if retryable {
		e.SuggestedRetrySeconds = suggestRetrySeconds(rnd)
	}
	return e.Clean()
}

// PipelineIDNotMatchingEnvelope rejects a request carrying the wrong
// pipeline id. Not retryable: the caller is talking to the wrong
// pipeline, waiting will not fix that.
func PipelineIDNotMatchingEnvelope(received, required string) Envelope {
	return Envelope{
		StatusCode: 400,
		Message: fmt.Sprintf(
			"Pipeline ID not matching (received: %s, required: %s)",
			received, required,
		),
		DetailStatus: PipelineIDNotMatching,
	}
}

// Clean returns a copy with the detailed message dropped when it equals
// the message. Applying Clean twice yields the same value as once.
func (e Envelope) Clean() Envelope {
	if e.DetailedMessage == e.Message {
		e.DetailedMessage = ""
	}
	return e
}

// WithResultIdentifier returns a copy carrying the given identifier.
func (e Envelope) WithResultIdentifier(id string) Envelope {
	e.ResultIdentifier = id
	return e
}

// Retryable returns a cleaned copy with a jittered retry hint.
func (e Envelope) Retryable(rnd *rand.Rand) Envelope {
	e = e.Clean()
	e.SuggestedRetrySeconds = suggestRetrySeconds(rnd)
	return e
}

func suggestRetrySeconds(rnd *rand.Rand) int {
	return MinRetryWaitSeconds + rnd.Intn(MaxRetryWaitSeconds-MinRetryWaitSeconds)
}
