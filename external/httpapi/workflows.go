package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/audio"
	"github.com/foxseedlab/debrief/internal/export"
	"github.com/foxseedlab/debrief/internal/validation"
	"github.com/foxseedlab/debrief/internal/workflow"
	"github.com/go-chi/chi/v5"
)

const (
	messageNoFile         = "Please choose an audio file to upload"
	messageNoSummaryYet   = "No summary available yet. Please generate a summary first."
	messageNoTranscript   = "No transcript available yet."
	messageUnknownFormat  = "Unsupported export format. Use txt or docx."
	docxContentType       = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	plainTextContentType  = "text/plain; charset=utf-8"
	defaultUploadFilename = "audio"
)

type createWorkflowRequest struct {
	Handoff string `json:"handoff"`
}

type editTranscriptRequest struct {
	Transcript string `json:"transcript"`
}

type sendEmailRequest struct {
	Emails string `json:"emails"`
}

func (s *Server) workflow(w http.ResponseWriter, r *http.Request) (*workflow.Workflow, bool) {
	wf, err := s.workflows.Get(chi.URLParam(r, "workflowID"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return wf, true
}

func (s *Server) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req createWorkflowRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	var wf *workflow.Workflow
	if req.Handoff != "" {
		var err error
		if wf, err = s.workflows.CreateFromHandoff(req.Handoff); err != nil {
			writeError(w, err)
			return
		}
	} else {
		wf = s.workflows.Create()
	}
	writeJSON(w, http.StatusCreated, wf.Snapshot())
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.workflow(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

func (s *Server) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if !s.workflows.Delete(chi.URLParam(r, "workflowID")) {
		writeError(w, apperror.NotFound("Workflow not found. It may have expired."))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpload validates the selected file and transcribes it. Validation
// failures are reported through the workflow so they land in its error slot.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.workflow(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodyBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = wf.SubmitFile(r.Context(), audio.Artifact{}, apperror.Validation(validation.MessageAudioTooLarge))
			writeWorkflowError(w, err, wf)
			return
		}
		writeError(w, apperror.Validation(messageNoFile))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	name := header.Filename
	if name == "" {
		name = defaultUploadFilename
	}
	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = audio.MediaTypeFromPath(name)
	}
	artifact := audio.Artifact{Name: name, MediaType: mediaType}
	if verr := validation.ValidateAudioFile(validation.AudioFile{Name: name, MediaType: mediaType, Size: header.Size}); verr != nil {
		writeWorkflowError(w, wf.SubmitFile(r.Context(), artifact, verr), wf)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperror.Validation(messageNoFile))
		return
	}
	artifact.Data = data
	if err := wf.SubmitFile(r.Context(), artifact, nil); err != nil {
		writeWorkflowError(w, err, wf)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

func (s *Server) handleEditTranscript(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.workflow(w, r)
	if !ok {
		return
	}
	var req editTranscriptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf.EditTranscript(req.Transcript))
}

func (s *Server) handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.workflow(w, r)
	if !ok {
		return
	}
	if err := wf.GenerateSummary(r.Context()); err != nil {
		writeWorkflowError(w, err, wf)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.workflow(w, r)
	if !ok {
		return
	}
	var req sendEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := wf.SendEmail(r.Context(), req.Emails); err != nil {
		writeWorkflowError(w, err, wf)
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.workflow(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, wf.Reset())
}

func (s *Server) handleClearError(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.workflow(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, wf.ClearError())
}

func (s *Server) handleExportSummary(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.workflow(w, r)
	if !ok {
		return
	}
	st := wf.Snapshot()
	if st.Summary == "" && len(st.ActionItems) == 0 {
		writeError(w, apperror.NotFound(messageNoSummaryYet))
		return
	}
	format, ok := exportFormat(w, r)
	if !ok {
		return
	}
	filename := export.SummaryFilename(st.SourceName, format)
	if format == export.FormatDocx {
		data, err := s.renderer.RenderSummary(r.Context(), documentTitle(st.SourceName, "Meeting Summary"), st.Summary, st.ActionItems)
		if err != nil {
			writeError(w, apperror.Remote("Failed to render the document", err))
			return
		}
		writeAttachment(w, docxContentType, filename, data, true)
		return
	}
	writeAttachment(w, plainTextContentType, filename, []byte(export.SummaryText(st.Summary, st.ActionItems)), wantsDownload(r))
}

func (s *Server) handleExportTranscript(w http.ResponseWriter, r *http.Request) {
	wf, ok := s.workflow(w, r)
	if !ok {
		return
	}
	st := wf.Snapshot()
	if st.Transcript == "" {
		writeError(w, apperror.NotFound(messageNoTranscript))
		return
	}
	format, ok := exportFormat(w, r)
	if !ok {
		return
	}
	filename := export.TranscriptFilename(st.SourceName, format)
	if format == export.FormatDocx {
		data, err := s.renderer.RenderTranscript(r.Context(), documentTitle(st.SourceName, "Transcript"), st.Transcript)
		if err != nil {
			writeError(w, apperror.Remote("Failed to render the document", err))
			return
		}
		writeAttachment(w, docxContentType, filename, data, true)
		return
	}
	writeAttachment(w, plainTextContentType, filename, []byte(st.Transcript), wantsDownload(r))
}

func exportFormat(w http.ResponseWriter, r *http.Request) (string, bool) {
	switch f := r.URL.Query().Get("format"); f {
	case "", export.FormatText:
		return export.FormatText, true
	case export.FormatDocx:
		return export.FormatDocx, true
	default:
		writeError(w, apperror.Validation(messageUnknownFormat))
		return "", false
	}
}

func wantsDownload(r *http.Request) bool {
	switch r.URL.Query().Get("download") {
	case "1", "true":
		return true
	}
	return false
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte, attachment bool) {
	w.Header().Set("Content-Type", contentType)
	if attachment {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func documentTitle(sourceName, fallback string) string {
	if sourceName == "" {
		return fallback
	}
	return fallback + ": " + sourceName
}
