// Package types provides type definitions for structured data used throughout the resume-match system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// AnalysisRequest carries the two free-text inputs compared for fit.
// It exists only for the duration of one submission.
type AnalysisRequest struct {
	ResumeText         string `json:"resume_text" validate:"trimmed_gt=50"`
	JobDescriptionText string `json:"job_description_text" validate:"trimmed_gt=50"`
}

// OptimizationSuggestion is one actionable recommendation for improving the resume
type OptimizationSuggestion struct {
	Category   string `json:"category"`
	Suggestion string `json:"suggestion"`
	Example    string `json:"example"`
}

// AnalysisResult is the structured fit assessment returned by the model.
// Field names mirror the response schema declared to the model.
type AnalysisResult struct {
	Score           float64                  `json:"score"`
	Summary         string                   `json:"summary"`
	Strengths       []string                 `json:"strengths"`
	MissingSkills   []string                 `json:"missingSkills"`
	Recommendations []OptimizationSuggestion `json:"recommendations"`
}
