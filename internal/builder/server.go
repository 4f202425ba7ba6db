package builder

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkstack/mkstack/internal/resolver"
	"github.com/mkstack/mkstack/internal/serialize"
	"github.com/mkstack/mkstack/internal/stack"
)

// Server exposes the builder JSON API:
//
//	POST /api/sessions                create a session (optionally from a
//	                                  shared "state" query string)
//	GET  /api/sessions/{id}           current session view
//	POST /api/sessions/{id}/edits     apply one field edit, adaptive-resolve
//	GET  /api/sessions/{id}/command   minimal reproducible command
//	GET  /api/sessions/{id}/link      shareable URL query string
//
// Every response carries the full resolved configuration plus the
// speculative option matrix, so the UI re-renders from one payload.
type Server struct {
	res    *resolver.Resolver
	store  *sessionStore
	tokens TokenGenerator
	logger *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithTokenGenerator overrides session token generation (tests).
func WithTokenGenerator(g TokenGenerator) ServerOption {
	return func(s *Server) { s.tokens = g }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer wires the builder backend around a shared resolver.
func NewServer(res *resolver.Resolver, opts ...ServerOption) *Server {
	s := &Server{
		res:    res,
		store:  newSessionStore(),
		tokens: UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", s.handleCreate)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGet)
	mux.HandleFunc("POST /api/sessions/{id}/edits", s.handleEdit)
	mux.HandleFunc("GET /api/sessions/{id}/command", s.handleCommand)
	mux.HandleFunc("GET /api/sessions/{id}/link", s.handleLink)
	return mux
}

// SessionView is the response payload for session endpoints.
type SessionView struct {
	ID      string                            `json:"id"`
	Config  map[string]string                 `json:"config"`
	Changes []resolver.Change                 `json:"changes,omitempty"`
	Notes   map[stack.FieldID][]string        `json:"notes,omitempty"`
	Options map[stack.FieldID]map[string]bool `json:"options"`
}

type createRequest struct {
	// State is an optional shared-link query string to start from.
	State string `json:"state,omitempty"`
}

type editRequest struct {
	Field string `json:"field"`
	// Value is the candidate: the new scalar, or the set member to
	// toggle. Field toggle semantics live in the registry.
	Value string `json:"value"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.error(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
			return
		}
	}

	reg := s.res.Registry()
	cfg := reg.Defaults()
	if req.State != "" {
		decoded, err := serialize.DecodeURLState(reg, req.State)
		if err != nil {
			s.error(w, http.StatusBadRequest, err)
			return
		}
		cfg = decoded
	}

	res, err := s.res.Resolve(cfg)
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}

	sess := &Session{
		ID:        s.tokens.Generate(),
		Config:    res.Config,
		UpdatedAt: time.Now(),
	}
	s.store.put(sess)
	s.logger.Debug("session created", "session", sess.ID)
	s.json(w, http.StatusCreated, s.view(sess, res))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.get(r.PathValue("id"))
	if !ok {
		s.error(w, http.StatusNotFound, fmt.Errorf("unknown session"))
		return
	}
	s.json(w, http.StatusOK, s.view(sess, resolver.Result{Config: sess.Config}))
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.get(r.PathValue("id"))
	if !ok {
		s.error(w, http.StatusNotFound, fmt.Errorf("unknown session"))
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	reg := s.res.Registry()
	id := stack.FieldID(req.Field)
	f, ok := reg.Lookup(id)
	if !ok {
		s.error(w, http.StatusBadRequest, fmt.Errorf("unknown field %q", req.Field))
		return
	}
	if f.Arity == stack.Single {
		if derr := reg.Validate(id, stack.Scalar(req.Value)); derr != nil {
			s.error(w, http.StatusBadRequest, derr)
			return
		}
	}

	res, err := s.res.Resolve(reg.Toggle(sess.Config, id, req.Value))
	if err != nil {
		// A fault is a rule-authoring defect, not a client error.
		s.error(w, http.StatusInternalServerError, err)
		return
	}

	sess.Config = res.Config
	sess.UpdatedAt = time.Now()
	s.store.put(sess)
	s.logger.Debug("session edited", "session", sess.ID, "field", id, "value", req.Value,
		"changes", len(res.Changes))
	s.json(w, http.StatusOK, s.view(sess, res))
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.get(r.PathValue("id"))
	if !ok {
		s.error(w, http.StatusNotFound, fmt.Errorf("unknown session"))
		return
	}
	command := serialize.Command(s.res.Registry(), sess.Config, "my-app")
	s.json(w, http.StatusOK, map[string]string{"command": command})
}

func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.get(r.PathValue("id"))
	if !ok {
		s.error(w, http.StatusNotFound, fmt.Errorf("unknown session"))
		return
	}
	state := serialize.EncodeURLState(s.res.Registry(), sess.Config)
	s.json(w, http.StatusOK, map[string]string{"state": state})
}

func (s *Server) view(sess *Session, res resolver.Result) SessionView {
	reg := s.res.Registry()
	cfg := make(map[string]string, reg.Defaults().Len())
	for _, f := range reg.Fields() {
		cfg[string(f.ID)] = sess.Config.ValueOf(f.ID).String()
	}
	return SessionView{
		ID:      sess.ID,
		Config:  cfg,
		Changes: res.Changes,
		Notes:   res.Notes,
		Options: s.res.OptionMatrix(sess.Config),
	}
}

func (s *Server) json(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

func (s *Server) error(w http.ResponseWriter, status int, err error) {
	s.json(w, status, map[string]string{"error": err.Error()})
}
