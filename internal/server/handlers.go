package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"orgscan/internal/logging"
)

var jobIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Uploads.MaxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 16MB")
			return
		}
		writeError(w, http.StatusBadRequest, "No file part in request")
		return
	}
	defer file.Close()

	if strings.TrimSpace(header.Filename) == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "Invalid file type. Only PDF files are allowed")
		return
	}

	filename := sanitizeFilename(header.Filename)
	job, err := s.store.Create(r.Context(), filename)
	if err != nil {
		s.logger.Error("create job failed", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	destPath := filepath.Join(s.cfg.Paths.UploadDir, job.ID+"_"+filename)
	if err := saveUpload(file, destPath); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 16MB")
			return
		}
		s.logger.Error("save upload failed",
			logging.String("job_id", job.ID),
			logging.String("path", destPath),
			logging.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	taskID, err := s.dispatcher.Dispatch(r.Context(), job.ID, destPath)
	if err != nil {
		s.logger.Error("dispatch failed", logging.String("job_id", job.ID), logging.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Info("upload accepted",
		logging.String("job_id", job.ID),
		logging.String("task_id", taskID),
		logging.String("filename", filename),
	)
	writeJSON(w, http.StatusCreated, map[string]string{
		"job_id":  job.ID,
		"status":  string(job.Status),
		"message": "File uploaded successfully. Processing queued.",
		"task_id": taskID,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if !jobIDPattern.MatchString(jobID) {
		writeError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	job, err := s.store.GetByID(r.Context(), jobID)
	if err != nil {
		s.logger.Error("status lookup failed", logging.String("job_id", jobID), logging.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}

	view, err := statusView(job)
	if err != nil {
		s.logger.Error("render job failed", logging.String("job_id", jobID), logging.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("list jobs failed", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	documents := make([]listEntry, 0, len(list))
	for _, job := range list {
		documents = append(documents, listView(job))
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": documents})
}

func saveUpload(src io.Reader, destPath string) error {
	dest, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		os.Remove(destPath)
		return err
	}
	return dest.Close()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
