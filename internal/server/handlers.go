package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jonathan/cv-tailor/internal/db"
	"github.com/jonathan/cv-tailor/internal/pipeline"
	"github.com/jonathan/cv-tailor/internal/types"
)

// AnalyzeRequest is the payload for POST /tasks/analyze.
type AnalyzeRequest struct {
	UserID           string `json:"user_id" validate:"required,uuid"`
	JobDescriptionID string `json:"job_description_id" validate:"required,uuid"`
	JobDescription   string `json:"job_description" validate:"required"`
	AnalysisResultID string `json:"analysis_result_id" validate:"required,uuid"`
}

// GenerateCVRequest is the payload for POST /tasks/generate-cv.
type GenerateCVRequest struct {
	UserID           string `json:"user_id" validate:"required,uuid"`
	JobDescriptionID string `json:"job_description_id" validate:"required,uuid"`
	AnalysisResultID string `json:"analysis_result_id" validate:"required,uuid"`
	JobDescription   string `json:"job_description"`
	CVID             string `json:"cv_id" validate:"required,uuid"`
}

// ImportProfileRequest is the payload for POST /tasks/import-profile.
// FileContent is base64-encoded document bytes; when absent the
// document is fetched from FileURL.
type ImportProfileRequest struct {
	UserID      string `json:"user_id" validate:"required,uuid"`
	FileURL     string `json:"file_url" validate:"required_without=FileContent"`
	FileContent string `json:"file_content"`
	FileType    string `json:"file_type" validate:"required,oneof=pdf markdown"`
	FileName    string `json:"file_name"`
}

// TaskResponse acknowledges an accepted task.
type TaskResponse struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Status string `json:"status"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	task := s.orch.AnalyzeTask(pipeline.AnalyzePayload{
		UserID:           req.UserID,
		JobDescriptionID: req.JobDescriptionID,
		JobDescription:   req.JobDescription,
		AnalysisResultID: req.AnalysisResultID,
	})
	s.runner.Submit(task)

	s.jsonResponse(w, http.StatusAccepted, TaskResponse{
		ID:     task.ID,
		Kind:   task.Kind,
		Status: types.StatusPending,
	})
}

func (s *Server) handleGenerateCV(w http.ResponseWriter, r *http.Request) {
	var req GenerateCVRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	task := s.orch.GenerateCVTask(pipeline.GenerateCVPayload{
		UserID:           req.UserID,
		JobDescriptionID: req.JobDescriptionID,
		AnalysisResultID: req.AnalysisResultID,
		JobDescription:   req.JobDescription,
		CVID:             req.CVID,
	})
	s.runner.Submit(task)

	s.jsonResponse(w, http.StatusAccepted, TaskResponse{
		ID:     task.ID,
		Kind:   task.Kind,
		Status: types.StatusPending,
	})
}

func (s *Server) handleImportProfile(w http.ResponseWriter, r *http.Request) {
	var req ImportProfileRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	var content []byte
	if req.FileContent != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.FileContent)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "file_content is not valid base64")
			return
		}
		content = decoded
	}

	task := s.orch.ImportProfileTask(pipeline.ImportProfilePayload{
		UserID:      req.UserID,
		FileURL:     req.FileURL,
		FileContent: content,
		FileType:    req.FileType,
		FileName:    req.FileName,
	})
	s.runner.Submit(task)

	s.jsonResponse(w, http.StatusAccepted, TaskResponse{
		ID:     task.ID,
		Kind:   task.Kind,
		Status: types.StatusPending,
	})
}

// AnalysisStatusResponse is the body for GET /status/analysis/{id}.
type AnalysisStatusResponse struct {
	ID         string                `json:"id"`
	Status     string                `json:"status"`
	Result     *types.AnalysisResult `json:"result,omitempty"`
	Diagnostic string                `json:"diagnostic,omitempty"`
}

func (s *Server) handleAnalysisStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	record, err := s.store.GetAnalysis(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrAnalysisNotFound) {
			s.errorResponse(w, http.StatusNotFound, "analysis not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}

	s.jsonResponse(w, http.StatusOK, AnalysisStatusResponse{
		ID:         record.ID,
		Status:     record.Status,
		Result:     record.Result,
		Diagnostic: record.Diagnostic,
	})
}

// CVStatusResponse is the body for GET /status/cv/{id}.
type CVStatusResponse struct {
	ID         string        `json:"id"`
	Status     string        `json:"status"`
	Data       *types.CVData `json:"data,omitempty"`
	Diagnostic string        `json:"diagnostic,omitempty"`
}

func (s *Server) handleCVStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	record, err := s.store.GetCV(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrCVNotFound) {
			s.errorResponse(w, http.StatusNotFound, "cv not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "failed to load cv")
		return
	}

	s.jsonResponse(w, http.StatusOK, CVStatusResponse{
		ID:         record.ID,
		Status:     record.Status,
		Data:       record.Data,
		Diagnostic: record.Diagnostic,
	})
}

// decodeAndValidate parses the JSON body into dst and validates its
// struct tags, writing the error response itself on failure.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return false
	}
	return true
}
