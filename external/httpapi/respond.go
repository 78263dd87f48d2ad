package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/workflow"
)

const messageInvalidBody = "Invalid request body"

type errorResponse struct {
	Error    string          `json:"error"`
	Kind     apperror.Kind   `json:"kind"`
	Workflow *workflow.State `json:"workflow,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForKind(apperror.KindOf(err)), errorResponse{
		Error: err.Error(),
		Kind:  apperror.KindOf(err),
	})
}

// writeWorkflowError includes the snapshot so clients can redraw the error banner
// and busy flags without a second request.
func writeWorkflowError(w http.ResponseWriter, err error, wf *workflow.Workflow) {
	state := wf.Snapshot()
	writeJSON(w, statusForKind(apperror.KindOf(err)), errorResponse{
		Error:    err.Error(),
		Kind:     apperror.KindOf(err),
		Workflow: &state,
	})
}

func statusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindDevice:
		return http.StatusFailedDependency
	case apperror.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// decodeJSON treats an empty body as an empty object.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return apperror.Validation(messageInvalidBody)
	}
	return nil
}
