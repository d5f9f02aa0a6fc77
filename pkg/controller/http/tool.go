package http

import (
	"errors"
	"net/http"

	"github.com/secmon-lab/toolforge/pkg/domain/model/auth"
	"github.com/secmon-lab/toolforge/pkg/usecase"
	"github.com/secmon-lab/toolforge/pkg/utils/errutil"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
)

type generateRequest struct {
	Prompt string `json:"userPrompt"`
}

func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req generateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		logging.From(ctx).Warn("bad generate request", "error", err.Error())
		errutil.WriteError(w, http.StatusBadRequest, "Prompt is required.")
		return
	}

	result, err := s.tools.GenerateTool(ctx, req.Prompt)
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		errutil.WriteError(w, http.StatusBadRequest, "Prompt is required.")
		return
	case errors.Is(err, usecase.ErrRejected):
		errutil.WriteError(w, http.StatusBadRequest, "Sorry, I am unable to build that type of tool.")
		return
	case err != nil:
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, "Failed to generate tool.")
		return
	}

	resp := generateResponse{HTML: result.HTML, FromCache: result.FromCache}
	if !result.FromCache {
		resp.Classification = result.Classification
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

type suggestMetadataRequest struct {
	Prompt   string `json:"userPrompt"`
	ToolType string `json:"toolType"`
}

func (s *Server) suggestMetadataHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req suggestMetadataRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		logging.From(ctx).Warn("bad suggest-metadata request", "error", err.Error())
		errutil.WriteError(w, http.StatusBadRequest, "Prompt and toolType are required.")
		return
	}

	meta, err := s.tools.SuggestMetadata(ctx, req.Prompt, req.ToolType)
	if errors.Is(err, usecase.ErrInvalidInput) {
		errutil.WriteError(w, http.StatusBadRequest, "Prompt and toolType are required.")
		return
	}
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, "Failed to suggest metadata.")
		return
	}

	writeJSON(ctx, w, http.StatusOK, meta)
}

type submitRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	OriginalPrompt string `json:"original_prompt"`
	GeneratedHTML  string `json:"generated_html"`
}

func (s *Server) submitHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		logging.From(ctx).Warn("bad submit request", "error", err.Error())
		errutil.WriteError(w, http.StatusBadRequest, "Missing required fields.")
		return
	}

	tool, err := s.tools.Submit(ctx, auth.UserFromContext(ctx), usecase.SubmitInput{
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		OriginalPrompt: req.OriginalPrompt,
		GeneratedHTML:  req.GeneratedHTML,
	})
	if errors.Is(err, usecase.ErrInvalidInput) {
		errutil.WriteError(w, http.StatusBadRequest, "Missing required fields.")
		return
	}
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, "Failed to submit tool.")
		return
	}

	writeJSON(ctx, w, http.StatusCreated, messageResponse{
		Message: "Tool submitted for review!",
		ID:      tool.ID.String(),
	})
}
