package handler

import (
	"encoding/json"
	"net/http"

	"sajtmaskin/internal/contextgather"
	"sajtmaskin/internal/orchestrator"
	"sajtmaskin/internal/v0"
	"sajtmaskin/internal/websearch"
)

type generateRequest struct {
	Prompt    string                      `json:"prompt"`
	ChatID    string                      `json:"chatId,omitempty"`
	ProjectID string                      `json:"projectId,omitempty"`
	Files     []contextgather.ProjectFile `json:"files,omitempty"`
}

type generateResponse struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Flagged    bool    `json:"flagged,omitempty"`
	FastPath   bool    `json:"fastPath,omitempty"`

	ClarifyQuestion string             `json:"clarifyQuestion,omitempty"`
	ChatMessage     string             `json:"chatMessage,omitempty"`
	SearchResults   []websearch.Result `json:"searchResults,omitempty"`
	Images          []string           `json:"images,omitempty"`
	Generation      *v0.Generation     `json:"generation,omitempty"`
	Repaired        bool               `json:"repaired,omitempty"`

	Steps    []string `json:"steps,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func toGenerateResponse(res *orchestrator.Result) generateResponse {
	return generateResponse{
		Intent:          string(res.Intent),
		Confidence:      res.Confidence,
		Flagged:         res.Flagged,
		FastPath:        res.FastPath,
		ClarifyQuestion: res.ClarifyQuestion,
		ChatMessage:     res.ChatMessage,
		SearchResults:   res.SearchResults,
		Images:          res.Images,
		Generation:      res.Generation,
		Repaired:        res.Repaired,
		Steps:           res.Steps,
		Warnings:        res.Warnings,
	}
}

// HandleGenerate runs the full pipeline for one request and answers with
// the final result in one JSON body.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	res, err := h.pipeline.Orchestrate(r.Context(), orchestrator.Request{
		Prompt:    req.Prompt,
		ChatID:    req.ChatID,
		ProjectID: req.ProjectID,
		Owner:     owner(r),
		Model:     h.model,
		Files:     req.Files,
	})
	if err != nil {
		writeError(w, statusForPipelineError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toGenerateResponse(res))
}
