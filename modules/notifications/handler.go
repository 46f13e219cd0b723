package notifications

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/modernmen/notifier/pkg/logger"
	notify "github.com/modernmen/notifier/pkg/notifications"
)

// Handler serves the notification API and the live event stream.
type Handler struct {
	manager *notify.Manager
	hub     *notify.Hub
	cfg     Config
	log     *slog.Logger
}

type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

func WithConfig(cfg Config) Option {
	return func(h *Handler) { h.cfg = cfg }
}

func NewHandler(manager *notify.Manager, hub *notify.Hub, opts ...Option) *Handler {
	h := &Handler{
		manager: manager,
		hub:     hub,
		cfg:     DefaultConfig(),
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.With(logger.Component("http"))
	return h
}

// Handle returns the routes, meant to be mounted under /notifications.
//
//	r.Mount("/notifications", handler.Handle())
func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/unread-count", h.unreadCount)
	r.Post("/read-all", h.readAll)
	r.Get("/stream", h.stream)
	r.Get("/preferences", h.preferences)
	r.Put("/preferences", h.updatePreferences)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Post("/read", h.markRead)
		r.Post("/archive", h.archive)
	})

	return r
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in notify.CreateInput
	body := http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&in); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	n, err := h.manager.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	recipient, err := recipientParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	q, err := listQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := h.manager.List(r.Context(), recipient, q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type unreadCountResponse struct {
	Recipient string `json:"recipient"`
	Unread    int    `json:"unread"`
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	recipient, err := recipientParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	count, err := h.manager.CountUnread(r.Context(), recipient)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, unreadCountResponse{Recipient: recipient, Unread: count})
}

type readAllResponse struct {
	Recipient string `json:"recipient"`
	Updated   int    `json:"updated"`
}

func (h *Handler) readAll(w http.ResponseWriter, r *http.Request) {
	recipient, err := recipientParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.manager.MarkAllAsRead(r.Context(), recipient)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, readAllResponse{Recipient: recipient, Updated: updated})
}

type preferencesResponse struct {
	Recipient string `json:"recipient"`
	notify.Preferences
}

func (h *Handler) preferences(w http.ResponseWriter, r *http.Request) {
	recipient, err := recipientParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.manager.Preferences(r.Context(), recipient)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preferencesResponse{Recipient: recipient, Preferences: p})
}

// updatePreferences replaces the stored preferences; omitted channel flags
// decode as opted out.
func (h *Handler) updatePreferences(w http.ResponseWriter, r *http.Request) {
	recipient, err := recipientParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in notify.Preferences
	body := http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&in); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	p, err := h.manager.UpdatePreferences(r.Context(), recipient, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preferencesResponse{Recipient: recipient, Preferences: p})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	n, err := h.manager.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.manager.MarkAsRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	n, err := h.manager.Archive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// stream holds the request open as the recipient's live connection until
// the client leaves, a newer connection replaces it, or the hub shuts down.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	recipient, err := recipientParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	s := newSSEStream(w, h.cfg)
	if err := s.open(); err != nil {
		h.log.LogAttrs(r.Context(), slog.LevelWarn, "stream not supported",
			logger.Recipient(recipient),
			logger.Error(err),
		)
		return
	}

	conn, err := h.hub.Register(r.Context(), recipient, s)
	if err != nil {
		// Headers are already out; the client sees the stream end.
		h.log.LogAttrs(r.Context(), slog.LevelWarn, "stream rejected",
			logger.Recipient(recipient),
			logger.Error(err),
		)
		return
	}
	defer conn.Close()

	select {
	case <-r.Context().Done():
	case <-conn.Done():
	case <-conn.Superseded():
	}
}

func recipientParam(r *http.Request) (string, error) {
	recipient := r.URL.Query().Get("recipient")
	if recipient == "" {
		return "", fmt.Errorf("%w: %w", ErrBadRequest, ErrRecipientMissing)
	}
	return recipient, nil
}

func listQuery(r *http.Request) (notify.ListQuery, error) {
	values := r.URL.Query()
	var q notify.ListQuery
	var err error

	if q.Page, err = intParam(values.Get("page")); err != nil {
		return q, fmt.Errorf("%w: page: %w", ErrBadRequest, err)
	}
	if q.PageSize, err = intParam(values.Get("page_size")); err != nil {
		return q, fmt.Errorf("%w: page_size: %w", ErrBadRequest, err)
	}
	if q.UnreadOnly, err = boolParam(values.Get("unread_only")); err != nil {
		return q, fmt.Errorf("%w: unread_only: %w", ErrBadRequest, err)
	}
	if q.IncludeArchived, err = boolParam(values.Get("include_archived")); err != nil {
		return q, fmt.Errorf("%w: include_archived: %w", ErrBadRequest, err)
	}
	if q.IncludeExpired, err = boolParam(values.Get("include_expired")); err != nil {
		return q, fmt.Errorf("%w: include_expired: %w", ErrBadRequest, err)
	}
	for _, k := range values["kind"] {
		kind := notify.Kind(k)
		if !kind.Valid() {
			return q, fmt.Errorf("%w: unknown kind %q", ErrBadRequest, k)
		}
		q.Kinds = append(q.Kinds, kind)
	}
	return q, nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("must be an integer")
	}
	return v, nil
}

func boolParam(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.New("must be a boolean")
	}
	return v, nil
}
