package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/rdfload/internal/config"
	"stealthcompany.com/rdfload/internal/events"
	"stealthcompany.com/rdfload/internal/loader"
	"stealthcompany.com/rdfload/internal/orchestrator"
)

// maxNotificationBody caps how much of an inbound notification we read.
const maxNotificationBody = 1 << 20

// WorkflowStarter starts one workflow execution per staged file.
type WorkflowStarter interface {
	StartExecution(ctx context.Context, request loader.LoadRequest) (string, error)
}

// Server wires the HTTP surface to the orchestrator and the workflow.
type Server struct {
	orch     *orchestrator.Orchestrator
	workflow WorkflowStarter
	cfg      config.Config
}

// NewServer creates the HTTP server surface.
func NewServer(orch *orchestrator.Orchestrator, workflow WorkflowStarter, cfg config.Config) *Server {
	return &Server{
		orch:     orch,
		workflow: workflow,
		cfg:      cfg,
	}
}

// LoadSubmission is the expected JSON payload for /load.
type LoadSubmission struct {
	PipelineID  string             `json:"pipelineId"`
	LoadRequest loader.LoadRequest `json:"loadRequest"`
}

// CheckRequest is the expected JSON payload for /check.
type CheckRequest struct {
	ResultIdentifier string `json:"resultIdentifier"`
}

// notifyHandler receives the SNS-wrapped S3 notification and starts one
// workflow execution per uploaded file.
func (s *Server) notifyHandler(w http.ResponseWriter, r *http.Request) {
	log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("remote_addr", r.RemoteAddr).
		Msg("Notify endpoint called")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationBody))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read notification body")
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Cannot read request body",
		})
		return
	}

	refs, err := events.UnwrapNotification(body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to unwrap notification")
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	executions := make([]string, 0, len(refs))
	for _, ref := range refs {
		request := loader.NewLoadRequest(
			ref.Bucket,
			ref.Key,
			s.cfg.NeptuneLoadIAMRoleARN,
			s.cfg.AWSRegion,
			s.cfg.IDBase,
		)
		executionARN, err := s.workflow.StartExecution(r.Context(), request)
		if err != nil {
			log.Error().Err(err).Str("source", request.Source).Msg("Failed to start load workflow")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": err.Error(),
			})
			return
		}
		executions = append(executions, executionARN)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"statusCode": 200,
		"executions": executions,
	})
}

// loadHandler submits one load request to the bulk loader.
func (s *Server) loadHandler(w http.ResponseWriter, r *http.Request) {
	log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("remote_addr", r.RemoteAddr).
		Msg("Load endpoint called")

	var submission LoadSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		log.Error().Err(err).Msg("Failed to decode load submission")
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid JSON format",
		})
		return
	}
	if submission.LoadRequest.Source == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "loadRequest.source is required",
		})
		return
	}

	envelope, err := s.orch.Submit(r.Context(), submission.LoadRequest, submission.PipelineID)
	if err != nil {
		log.Error().Err(err).Msg("Load submission failed hard")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, envelope)
}

// checkHandler polls the status of a previously submitted loader job.
func (s *Server) checkHandler(w http.ResponseWriter, r *http.Request) {
	log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("remote_addr", r.RemoteAddr).
		Msg("Check endpoint called")

	var check CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&check); err != nil {
		log.Error().Err(err).Msg("Failed to decode check request")
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid JSON format",
		})
		return
	}

	envelope, err := s.orch.Poll(r.Context(), check.ResultIdentifier)
	if err != nil {
		log.Error().Err(err).Msg("Status check failed hard")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, envelope)
}

// healthHandler reports liveness.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
