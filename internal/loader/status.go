// Package loader models the Neptune bulk-loader interaction: the
// closed taxonomy of load-job statuses, the classification of loader
// errors, the response envelope returned to the workflow driver, and
// the load request submitted to the loader endpoint.
package loader

import (
	"strings"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/rdfload/internal/rdf"
)

// DetailStatus is the closed set of load-job outcomes and errors. The
// zero value is not valid; unknown inputs map to LoaderJobStatusUnknown.
type DetailStatus string

const (
	PipelineIDNotMatching                         DetailStatus = "PipelineIdNotMatching"
	Timedout                                      DetailStatus = "Timedout"
	IOError                                       DetailStatus = "IOError"
	MaxLoadTaskQueueSizeLimitBreached             DetailStatus = "MaxLoadTaskQueueSizeLimitBreached"
	MaxConcurrentLoadLimitBreached                DetailStatus = "MaxConcurrentLoadLimitBreached"
	LoaderJobInQueue                              DetailStatus = "LoaderJobInQueue"
	LoaderJobNotStarted                           DetailStatus = "LoaderJobNotStarted"
	LoaderJobInProgress                           DetailStatus = "LoaderJobInProgress"
	LoaderJobCompleted                            DetailStatus = "LoaderJobCompleted"
	LoaderJobCancelledByUser                      DetailStatus = "LoaderJobCancelledByUser"
	LoaderJobCancelledDueToErrors                 DetailStatus = "LoaderJobCancelledDueToErrors"
	LoaderJobUnexpectedError                      DetailStatus = "LoaderJobUnexpectedError"
	LoaderJobFailed                               DetailStatus = "LoaderJobFailed"
	LoaderJobS3ReadError                          DetailStatus = "LoaderJobS3ReadError"
	LoaderJobS3AccessDeniedError                  DetailStatus = "LoaderJobS3AccessDeniedError"
	LoaderJobCommittedWithWriteConflicts          DetailStatus = "LoaderJobCommittedWithWriteConflicts"
	LoaderJobDataDeadlock                         DetailStatus = "LoaderJobDataDeadlock"
	LoaderJobDataFailedDueToFeedModifiedOrDeleted DetailStatus = "LoaderJobDataFailedDueToFeedModifiedOrDeleted"
	LoaderJobFailedBecauseDependencyNotSatisfied  DetailStatus = "LoaderJobFailedBecauseDependencyNotSatisfied"
	LoaderJobFailedInvalidRequest                 DetailStatus = "LoaderJobFailedInvalidRequest"
	LoaderJobStatusUnknown                        DetailStatus = "LoaderJobStatusUnknown"
	UserError                                     DetailStatus = "UserError"
)

// loaderJobStatusTable maps the loader's overallStatus.status vocabulary
// to the taxonomy. This is the full fixed vocabulary documented for the
// Neptune loader; anything else falls through to the Unknown arm.
var loaderJobStatusTable = map[string]DetailStatus{
	"LOAD_IN_QUEUE":                    LoaderJobInQueue,
	"LOAD_NOT_STARTED":                 LoaderJobNotStarted,
	"LOAD_IN_PROGRESS":                 LoaderJobInProgress,
	"LOAD_COMPLETED":                   LoaderJobCompleted,
	"LOAD_CANCELLED_BY_USER":           LoaderJobCancelledByUser,
	"LOAD_CANCELLED_DUE_TO_ERRORS":     LoaderJobCancelledDueToErrors,
	"LOAD_UNEXPECTED_ERROR":            LoaderJobUnexpectedError,
	"LOAD_FAILED":                      LoaderJobFailed,
	"LOAD_S3_READ_ERROR":               LoaderJobS3ReadError,
	"LOAD_S3_ACCESS_DENIED_ERROR":      LoaderJobS3AccessDeniedError,
	"LOAD_COMMITTED_W_WRITE_CONFLICTS": LoaderJobCommittedWithWriteConflicts,
	"LOAD_DATA_DEADLOCK":               LoaderJobDataDeadlock,
	"LOAD_DATA_FAILED_DUE_TO_FEED_MODIFIED_OR_DELETED": LoaderJobDataFailedDueToFeedModifiedOrDeleted,
	"LOAD_FAILED_BECAUSE_DEPENDENCY_NOT_SATISFIED":     LoaderJobFailedBecauseDependencyNotSatisfied,
	"LOAD_FAILED_INVALID_REQUEST":                      LoaderJobFailedInvalidRequest,
}

// DetailStatusFromLoaderJobStatus maps a raw loader status string to
// the taxonomy. Unmatched strings are logged and map to
// LoaderJobStatusUnknown, never an error.
func DetailStatusFromLoaderJobStatus(raw string) DetailStatus {
	if status, ok := loaderJobStatusTable[raw]; ok {
		return status
	}
	log.Error().Str("status", raw).Msg("Unknown loader job status")
	return LoaderJobStatusUnknown
}

// The loader reports its queue and concurrency limits only as message
// text inside a BadRequestException. These phrases are a versioned
// contract with the loader; unmatched messages must fall back to
// UserError at the call site.
const (
	phraseQueueSizeLimitBreached      = "Max load task queue size limit breached"
	phraseConcurrentLoadLimitBreached = "Max concurrent load limit breached"
)

// DetailStatusFromBadRequest inspects a loader bad-request error for
// the two known limit-breach phrases. A plain "400" code means the
// error is transport-level rather than a loader domain error, so no
// match is attempted. Returns ok=false when no phrase matches.
func DetailStatusFromBadRequest(code, message string) (DetailStatus, bool) {
	if code == "400" {
		return "", false
	}
	if strings.Contains(message, phraseQueueSizeLimitBreached) {
		return MaxLoadTaskQueueSizeLimitBreached, true
	}
	if strings.Contains(message, phraseConcurrentLoadLimitBreached) {
		return MaxConcurrentLoadLimitBreached, true
	}
	return "", false
}

// Message returns the human-readable message for the status. Total over
// the taxonomy.
func (s DetailStatus) Message() string {
	switch s {
	case PipelineIDNotMatching:
		return "Pipeline ID not matching"
	case Timedout:
		return "Timed out"
	case IOError:
		return "I/O error"
	case MaxLoadTaskQueueSizeLimitBreached:
		return "Max load task queue size limit breached"
	case MaxConcurrentLoadLimitBreached:
		return "Max concurrent load limit breached"
	case LoaderJobInQueue:
		return "Loader job is in the queue"
	case LoaderJobNotStarted:
		return "Loader job has not started yet"
	case LoaderJobInProgress:
		return "Loader job is still in progress"
	case LoaderJobCompleted:
		return "Loader job completed"
	case LoaderJobCancelledByUser:
		return "Loader job cancelled by user"
	case LoaderJobCancelledDueToErrors:
		return "Loader job cancelled due to errors"
	case LoaderJobUnexpectedError:
		return "Loader job failed due to unexpected error"
	case LoaderJobFailed:
		return "Loader job failed"
	case LoaderJobS3ReadError:
		return "Loader job failed due to S3 read error"
	case LoaderJobS3AccessDeniedError:
		return "Loader job failed due to S3 access denied error"
	case LoaderJobCommittedWithWriteConflicts:
		return "Loader job failed due to write conflicts"
	case LoaderJobDataDeadlock:
		return "Loader job failed due to data deadlock"
	case LoaderJobDataFailedDueToFeedModifiedOrDeleted:
		return "Loader job failed because file was deleted or updated after load start"
	case LoaderJobFailedBecauseDependencyNotSatisfied:
		return "Loader job failed because dependency was not satisfied"
	case LoaderJobFailedInvalidRequest:
		return "Loader job failed due to invalid request"
	case UserError:
		return "User error"
	default:
		return "Loader job status unknown"
	}
}

// IsRetryable reports whether the caller should check the status of the
// load again later. Only the three in-flight statuses are retryable.
func (s DetailStatus) IsRetryable() bool {
	switch s {
	case LoaderJobInQueue, LoaderJobNotStarted, LoaderJobInProgress:
		return true
	}
	return false
}

// ShouldShowDetail reports whether the raw upstream diagnostic text
// should be surfaced for this status. The in-flight statuses never
// carry verbose detail, to keep the ledger and the logs quiet while a
// job works through the queue.
func (s DetailStatus) ShouldShowDetail() bool {
	switch s {
	case LoaderJobInQueue, LoaderJobNotStarted, LoaderJobInProgress:
		return false
	}
	return true
}

// RDFClass returns the lifecycle class of the dataops:LoadRequest that
// corresponds to this status: Queued, Loading, Finished or Failed.
// Every status not explicitly queued, loading or completed maps to
// FailedLoadRequest, the conservative default.
func (s DetailStatus) RDFClass(reg rdf.Registry) rdf.Class {
	switch s {
	case LoaderJobInQueue, LoaderJobNotStarted:
		return reg.ClassQueuedLoadRequest
	case LoaderJobInProgress:
		return reg.ClassLoadingLoadRequest
	case LoaderJobCompleted:
		return reg.ClassFinishedLoadRequest
	default:
		return reg.ClassFailedLoadRequest
	}
}
