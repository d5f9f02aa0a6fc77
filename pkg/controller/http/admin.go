package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/usecase"
	"github.com/secmon-lab/toolforge/pkg/utils/errutil"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
)

func (s *Server) pendingHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tools, err := s.tools.ListPending(ctx)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, "Failed to fetch pending tools.")
		return
	}

	resp := make([]toolResponse, 0, len(tools))
	for _, t := range tools {
		resp = append(resp, newToolResponse(t))
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

type reviewRequest struct {
	NewStatus string `json:"newStatus"`
}

func (s *Server) reviewHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req reviewRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		logging.From(ctx).Warn("bad review request", "error", err.Error())
		errutil.WriteError(w, http.StatusBadRequest, "Invalid status.")
		return
	}

	tool, err := s.tools.Review(ctx, model.ToolID(chi.URLParam(r, "id")), req.NewStatus)
	switch {
	case errors.Is(err, usecase.ErrInvalidStatus):
		errutil.WriteError(w, http.StatusBadRequest, "Invalid status.")
		return
	case errors.Is(err, usecase.ErrToolNotFound):
		errutil.WriteError(w, http.StatusNotFound, "Tool not found.")
		return
	case err != nil:
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, "Failed to update status.")
		return
	}

	writeJSON(ctx, w, http.StatusOK, newToolResponse(tool))
}
