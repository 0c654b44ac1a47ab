package loader

import (
	"context"
	"errors"
	"math/rand"
	"net"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/neptunedata/types"
	smithy "github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/rs/zerolog/log"
)

// ErrorKind is the abstract classification of a loader call failure,
// decoupled from the SDK's error hierarchy. ClassifyError is the single
// place where SDK error shapes are mapped onto kinds.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindBadRequest is a loader-reported malformed request.
	KindBadRequest
	// KindTimeout is an attempt or operation deadline that expired.
	KindTimeout
	// KindDispatch is a failure to get the request onto the wire.
	KindDispatch
	// KindIO is a connection-level read/write failure.
	KindIO
	// KindUser is a caller-side misuse detected below the service.
	KindUser
	// KindConstruction is a failure to build the request at all.
	KindConstruction
	// KindResponse is a malformed or unreadable service response.
	KindResponse
	// KindService is any other error the service itself reported.
	KindService
)

func (k ErrorKind) String() string {
	switch k {
	case KindBadRequest:
		return "bad request"
	case KindTimeout:
		return "timeout"
	case KindDispatch:
		return "dispatch failure"
	case KindIO:
		return "i/o error"
	case KindUser:
		return "user error"
	case KindConstruction:
		return "construction failure"
	case KindResponse:
		return "response error"
	case KindService:
		return "service error"
	default:
		return "unknown error"
	}
}

// ClassifiedError carries an error's kind plus whatever the service
// reported about it.
type ClassifiedError struct {
	Kind ErrorKind
	// Code and DetailedMessage are only set for KindBadRequest.
	Code            string
	Message         string
	DetailedMessage string
	Cause           error
}

// ClassifyError maps a loader SDK error onto the abstract kinds. This
// is the only function that looks at SDK error types.
func ClassifyError(err error) ClassifiedError {
	var badRequest *types.BadRequestException
	if errors.As(err, &badRequest) {
		return ClassifiedError{
			Kind:            KindBadRequest,
			Code:            aws.ToString(badRequest.Code),
			Message:         badRequest.ErrorMessage(),
			DetailedMessage: aws.ToString(badRequest.DetailedMessage),
			Cause:           err,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ClassifiedError{Kind: KindTimeout, Message: err.Error(), Cause: err}
	}

	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) {
		kind := KindDispatch
		var netErr net.Error
		if errors.As(sendErr.Err, &netErr) {
			if netErr.Timeout() {
				kind = KindTimeout
			} else {
				kind = KindIO
			}
		}
		return ClassifiedError{Kind: kind, Message: err.Error(), Cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassifiedError{Kind: KindTimeout, Message: err.Error(), Cause: err}
	}

	var paramErr *smithy.InvalidParamsError
	if errors.As(err, &paramErr) {
		return ClassifiedError{Kind: KindUser, Message: err.Error(), Cause: err}
	}

	var serErr *smithy.SerializationError
	if errors.As(err, &serErr) {
		return ClassifiedError{Kind: KindConstruction, Message: err.Error(), Cause: err}
	}

	var deserErr *smithy.DeserializationError
	if errors.As(err, &deserErr) {
		return ClassifiedError{Kind: KindResponse, Message: err.Error(), Cause: err}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return ClassifiedError{Kind: KindResponse, Message: err.Error(), Cause: err}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return ClassifiedError{
			Kind:    KindService,
			Code:    apiErr.ErrorCode(),
			Message: apiErr.ErrorMessage(),
			Cause:   err,
		}
	}

	return ClassifiedError{Kind: KindUnknown, Message: err.Error(), Cause: err}
}

// EnvelopeFromError folds any loader call error into a response
// envelope. Every branch logs the original error at error level; the
// raw error never reaches the caller.
func EnvelopeFromError(err error, rnd *rand.Rand) Envelope {
	classified := ClassifyError(err)

	log.Error().
		Err(classified.Cause).
		Str("kind", classified.Kind.String()).
		Str("code", classified.Code).
		Msg("Loader call failed")

	switch classified.Kind {
	case KindBadRequest:
		status, ok := DetailStatusFromBadRequest(classified.Code, classified.Message)
		if !ok {
			status = UserError
		}
		return Envelope{
			StatusCode:      400,
			Message:         classified.Message,
			DetailedMessage: classified.DetailedMessage,
			DetailStatus:    status,
		}.Clean()

	case KindTimeout:
		return Envelope{
			StatusCode:   504,
			Message:      "Timeout Error: " + classified.Message,
			DetailStatus: Timedout,
		}.Retryable(rnd)

	case KindDispatch, KindIO, KindUser:
		status := LoaderJobUnexpectedError
		switch classified.Kind {
		case KindIO:
			status = IOError
		case KindUser:
			status = UserError
		}
		return Envelope{
			StatusCode:   500,
			Message:      "Dispatch failure: " + classified.Message,
			DetailStatus: status,
		}.Clean()

	case KindConstruction:
		return Envelope{
			StatusCode:   504,
			Message:      "Construction failure: " + classified.Message,
			DetailStatus: LoaderJobStatusUnknown,
		}.Clean()

	case KindResponse:
		return Envelope{
			StatusCode:   500,
			Message:      "Response error: " + classified.Message,
			DetailStatus: LoaderJobStatusUnknown,
		}.Clean()

	default:
		return Envelope{
			StatusCode:   500,
			Message:      "Service Error: " + classified.Message,
			DetailStatus: LoaderJobStatusUnknown,
		}.Clean()
	}
}
