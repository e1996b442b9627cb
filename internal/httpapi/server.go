package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wedlii/wedbot/internal/assist"
	"github.com/wedlii/wedbot/internal/config"
	"github.com/wedlii/wedbot/internal/memory"
	"github.com/wedlii/wedbot/internal/observability"
	"github.com/wedlii/wedbot/internal/planning"
	"github.com/wedlii/wedbot/internal/vendors"
)

// UserHeader carries the caller identity set by the fronting gateway.
const UserHeader = "X-User-ID"

type Chatter interface {
	Reply(ctx context.Context, userID, message string) string
}

type ConversationStore interface {
	GetConversation(ctx context.Context, userID string) ([]memory.Message, error)
	Clear(ctx context.Context, userID string) error
	MaxTurns() int
}

type ChecklistGenerator interface {
	GenerateChecklist(ctx context.Context, prefs planning.Preferences) ([]string, error)
}

// Deps are the services behind the HTTP surface.
type Deps struct {
	Chat         Chatter
	Conversation ConversationStore
	Planning     *planning.Service
	Checklists   ChecklistGenerator
	Vendors      vendors.Store
	Comparer     *assist.VendorComparer
	Content      *assist.ContentWriter
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	// Ready reports whether backing stores are usable; nil means always ready.
	Ready func(ctx context.Context) error
	// Info is echoed by the health endpoints.
	Info map[string]string
}

type Server struct {
	cfg      config.Config
	deps     Deps
	metrics  *observability.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func New(cfg config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		deps:    deps,
		metrics: deps.Metrics,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Post("/v1/chat", s.handleChat)
		r.Get("/v1/chat/ws", s.handleChatWS)
		r.Get("/v1/conversation", s.handleGetConversation)
		r.Delete("/v1/conversation", s.handleClearConversation)

		r.Get("/v1/preferences", s.handleGetPreferences)
		r.Patch("/v1/preferences", s.handleUpdatePreference)

		r.Get("/v1/tasks", s.handleListTasks)
		r.Post("/v1/tasks", s.handleAddTask)
		r.Post("/v1/tasks/complete", s.handleCompleteTask)
		r.Post("/v1/checklist/generate", s.handleGenerateChecklist)
		r.Post("/v1/schedule/generate", s.handleGenerateSchedule)

		r.Get("/v1/timeline", s.handleGetTimeline)
		r.Post("/v1/timeline", s.handleCreateTimeline)
		r.Get("/v1/budget", s.handleGetBudget)
		r.Post("/v1/budget", s.handleCreateBudget)
		r.Patch("/v1/budget/{category}", s.handleUpdateBudgetCategory)

		r.Get("/v1/vendors/recommend", s.handleRecommendVendors)
		r.Post("/v1/vendors/compare", s.handleCompareVendors)
		r.Get("/v1/vendors/shortlist", s.handleGetShortlist)
		r.Post("/v1/vendors/shortlist", s.handleAddToShortlist)
		r.Delete("/v1/vendors/shortlist/{id}", s.handleRemoveFromShortlist)

		r.Post("/v1/content", s.handleGenerateContent)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{"status": "ok"}
	for k, v := range s.deps.Info {
		payload[k] = v
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "not_ready", err.Error())
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

type userKey struct{}

// requireUser reads the caller identity from the gateway header. Browsers
// cannot set headers on websocket upgrades, so user_id is accepted there too.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserHeader))
		if userID == "" && websocket.IsWebSocketUpgrade(r) {
			userID = strings.TrimSpace(r.URL.Query().Get("user_id"))
		}
		if userID == "" {
			respondError(w, http.StatusUnauthorized, "missing_user", UserHeader+" header is required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, userID)))
	})
}

func userFrom(r *http.Request) string {
	id, _ := r.Context().Value(userKey{}).(string)
	return id
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

// respondServiceError maps domain errors onto HTTP statuses. Anything
// unrecognised is logged and reported as an opaque 500.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, planning.ErrNotFound), errors.Is(err, vendors.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, planning.ErrUnknownField):
		respondError(w, http.StatusBadRequest, "invalid_field", err.Error())
	case errors.Is(err, planning.ErrWeddingDateNotSet):
		respondError(w, http.StatusBadRequest, "wedding_date_not_set", "Wedding date not set")
	case errors.Is(err, planning.ErrInvalidValue),
		errors.Is(err, planning.ErrInvalidAmount),
		errors.Is(err, vendors.ErrInvalidVendor),
		errors.Is(err, assist.ErrContentTypeRequired):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, assist.ErrInvalidChecklist):
		respondError(w, http.StatusBadGateway, "invalid_model_output", "The assistant returned an unreadable checklist.")
	default:
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "internal", "Something went wrong. Please try again.")
	}
}
