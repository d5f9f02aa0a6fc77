package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
)

type messageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

type generateResponse struct {
	HTML           string `json:"html"`
	FromCache      bool   `json:"fromCache"`
	Classification string `json:"classification,omitempty"`
}

type toolDetailResponse struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	GeneratedHTML string `json:"generated_html"`
}

// toolResponse is the full record shown in the review queue
type toolResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	OriginalPrompt string    `json:"original_prompt"`
	GeneratedHTML  string    `json:"generated_html"`
	Status         string    `json:"status"`
	UserID         string    `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func newToolResponse(t *model.Tool) toolResponse {
	return toolResponse{
		ID:             t.ID.String(),
		Name:           t.Name,
		Description:    t.Description,
		Category:       t.Category,
		OriginalPrompt: t.OriginalPrompt,
		GeneratedHTML:  t.GeneratedHTML,
		Status:         t.Status.String(),
		UserID:         t.OwnerUserID.String(),
		CreatedAt:      t.CreatedAt,
	}
}

func summariesOrEmpty(s []*model.ToolSummary) []*model.ToolSummary {
	if s == nil {
		return []*model.ToolSummary{}
	}
	return s
}

// decodeJSON reads a bounded JSON body into v
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return goerr.Wrap(err, "failed to decode request body",
			goerr.V("path", r.URL.Path))
	}
	return nil
}
