package server

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/resume-match/internal/presentation"
	"github.com/jonathan/resume-match/internal/types"
	"github.com/jonathan/resume-match/internal/validation"
)

// maxBodyBytes bounds request bodies; two long documents fit comfortably
const maxBodyBytes = 1 << 20

// pingInterval is how often an idle event stream is kept alive
const pingInterval = 15 * time.Second

// pageData is what the index template renders
type pageData struct {
	View               presentation.View
	ResumeText         string
	JobDescriptionText string
	MinLength          int
}

// handleIndex renders the page for the current state
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, http.StatusOK, pageData{
		View:      presentation.Bind(s.pipeline.Snapshot()),
		MinLength: validation.MinInputLength,
	})
}

// handleAnalyzeForm runs a submission from the HTML form and re-renders the page
func (s *Server) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	data := pageData{
		ResumeText:         r.PostFormValue("resume_text"),
		JobDescriptionText: r.PostFormValue("job_description_text"),
		MinLength:          validation.MinInputLength,
	}

	st, err := s.pipeline.Submit(r.Context(), data.ResumeText, data.JobDescriptionText)
	data.View = presentation.Bind(st)

	status := StateStatus(st)
	if err != nil {
		status = HTTPStatus(err)
	}
	s.renderPage(w, status, data)
}

// handleAnalyze runs a submission from a JSON body and returns the resulting view
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalysisRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	st, err := s.pipeline.Submit(r.Context(), req.ResumeText, req.JobDescriptionText)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, StateStatus(st), presentation.Bind(st))
}

// handleState returns the current view
func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, presentation.Bind(s.pipeline.Snapshot()))
}

// handleEvents streams a "state" event for the current view and every transition
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	// The stream outlives the server write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	updates, cancel := s.pipeline.Subscribe()
	defer cancel()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := sse.WriteEvent("state", presentation.Bind(st)); err != nil {
				log.Printf("[server] event stream closed: %v", err)
				sse.WriteError("failed to stream analysis state")
				return
			}
		case <-ticker.C:
			if err := sse.WritePing(); err != nil {
				return
			}
		}
	}
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// renderPage executes the page template into a buffer so a template error
// never leaves a half-written response
func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		log.Printf("[server] failed to render page: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[server] failed to write page: %v", err)
	}
}
