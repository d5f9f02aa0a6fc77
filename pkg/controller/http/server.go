package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/domain/model/auth"
	"github.com/secmon-lab/toolforge/pkg/usecase"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
	"github.com/secmon-lab/toolforge/pkg/utils/metrics"
)

// DefaultMaxBodyBytes bounds JSON request bodies. Submitted artifacts are
// complete HTML documents, so the limit is generous.
const DefaultMaxBodyBytes = 5 << 20

type AuthUseCase = usecase.AuthUseCaseInterface

// ToolUseCase is the application surface served over HTTP
type ToolUseCase interface {
	GenerateTool(ctx context.Context, rawPrompt string) (*model.GenerationResult, error)
	SuggestMetadata(ctx context.Context, rawPrompt, toolType string) (*model.Metadata, error)
	Submit(ctx context.Context, user *auth.User, input usecase.SubmitInput) (*model.Tool, error)
	Gallery(ctx context.Context, query string) ([]*model.ToolSummary, error)
	GetPublished(ctx context.Context, id model.ToolID) (*model.Tool, error)
	ListSaved(ctx context.Context, user *auth.User) ([]*model.ToolSummary, error)
	Save(ctx context.Context, user *auth.User, id model.ToolID) (bool, error)
	Unsave(ctx context.Context, user *auth.User, id model.ToolID) error
	ListPending(ctx context.Context) ([]*model.Tool, error)
	Review(ctx context.Context, id model.ToolID, newStatus string) (*model.Tool, error)
}

var _ ToolUseCase = (*usecase.ToolUseCase)(nil)

type Server struct {
	router         *chi.Mux
	tools          ToolUseCase
	authUC         AuthUseCase
	allowedOrigins []string
	maxBodyBytes   int64
}

type Options func(*Server)

// WithCORSAllowedOrigins restricts cross-origin requests to origins. Without
// it every origin is allowed.
func WithCORSAllowedOrigins(origins []string) Options {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

func WithMaxBodyBytes(n int64) Options {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

func New(tools ToolUseCase, authUC AuthUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:       r,
		tools:        tools,
		authUC:       authUC,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler)

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/gallery", func(r chi.Router) {
			r.Get("/", s.galleryHandler)
			r.Get("/{id}", s.galleryToolHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(s.authUC))

			r.Route("/tools", func(r chi.Router) {
				r.Post("/generate", s.generateHandler)
				r.Post("/suggest-metadata", s.suggestMetadataHandler)
				r.Post("/submit", s.submitHandler)
			})

			r.Route("/my-tools", func(r chi.Router) {
				r.Get("/", s.listSavedHandler)
				r.Post("/{toolId}/save", s.saveHandler)
				r.Delete("/{toolId}/unsave", s.unsaveHandler)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(adminMiddleware)
				r.Get("/pending", s.pendingHandler)
				r.Put("/review/{id}", s.reviewHandler)
			})
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger logs every request and attaches a request scoped logger to the context
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		reqID := middleware.GetReqID(r.Context())
		logger := logging.From(r.Context()).With("request_id", reqID)
		ctx := logging.With(r.Context(), logger)

		defer func() {
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()

			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.From(ctx).Error("failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}
