package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/usecase"
	"github.com/secmon-lab/toolforge/pkg/utils/errutil"
)

func (s *Server) galleryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summaries, err := s.tools.Gallery(ctx, r.URL.Query().Get("q"))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, "Failed to fetch gallery.")
		return
	}

	writeJSON(ctx, w, http.StatusOK, summariesOrEmpty(summaries))
}

func (s *Server) galleryToolHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tool, err := s.tools.GetPublished(ctx, model.ToolID(chi.URLParam(r, "id")))
	if errors.Is(err, usecase.ErrToolNotFound) {
		errutil.WriteError(w, http.StatusNotFound, "Tool not found or not published.")
		return
	}
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, "Failed to fetch tool.")
		return
	}

	writeJSON(ctx, w, http.StatusOK, toolDetailResponse{
		Name:          tool.Name,
		Description:   tool.Description,
		Category:      tool.Category,
		GeneratedHTML: tool.GeneratedHTML,
	})
}
