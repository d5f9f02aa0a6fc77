package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/domain/model/auth"
	"github.com/secmon-lab/toolforge/pkg/usecase"
	"github.com/secmon-lab/toolforge/pkg/utils/errutil"
)

func (s *Server) listSavedHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summaries, err := s.tools.ListSaved(ctx, auth.UserFromContext(ctx))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, "Failed to fetch saved tools.")
		return
	}

	writeJSON(ctx, w, http.StatusOK, summariesOrEmpty(summaries))
}

func (s *Server) saveHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	created, err := s.tools.Save(ctx, auth.UserFromContext(ctx), model.ToolID(chi.URLParam(r, "toolId")))
	if errors.Is(err, usecase.ErrToolNotFound) {
		errutil.WriteError(w, http.StatusNotFound, "Tool not found or not published.")
		return
	}
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, "Failed to save tool.")
		return
	}

	if !created {
		writeJSON(ctx, w, http.StatusOK, messageResponse{Message: "Tool already saved."})
		return
	}
	writeJSON(ctx, w, http.StatusCreated, messageResponse{Message: "Tool saved!"})
}

func (s *Server) unsaveHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.tools.Unsave(ctx, auth.UserFromContext(ctx), model.ToolID(chi.URLParam(r, "toolId"))); err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, "Failed to unsave tool.")
		return
	}

	writeJSON(ctx, w, http.StatusOK, messageResponse{Message: "Tool unsaved."})
}
