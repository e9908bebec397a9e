package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ricky-kiva/andro-tourism-app/internal/resource"
	"github.com/ricky-kiva/andro-tourism-app/internal/tourism"
)

const (
	contentTypeJSON   = "application/json"
	contentTypeNDJSON = "application/x-ndjson"

	maxBodyBytes = 1 << 10
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	repo TourismRepo
	log  *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(repo TourismRepo, log *slog.Logger) *Handlers {
	return &Handlers{repo: repo, log: log}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// follow reports whether the client asked to keep the stream open.
func follow(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("follow"))
	return err == nil && v
}

// ndjsonWriter writes one JSON document per line and flushes after each.
type ndjsonWriter struct {
	w   http.ResponseWriter
	rc  *http.ResponseController
	enc *json.Encoder
}

func newNDJSONWriter(w http.ResponseWriter) *ndjsonWriter {
	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", contentTypeNDJSON)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	return &ndjsonWriter{w: w, rc: rc, enc: json.NewEncoder(w)}
}

func (n *ndjsonWriter) write(v any) error {
	if err := n.enc.Encode(v); err != nil {
		return err
	}
	if err := n.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

// ListTourism handles GET /api/v1/tourism.
// Streams Resource states as NDJSON. Without ?follow=true the response ends
// after the first success or error state.
func (h *Handlers) ListTourism(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	keepOpen := follow(r)
	out := newNDJSONWriter(w)

	for state := range h.repo.GetAll(ctx) {
		if err := out.write(state); err != nil {
			h.log.Debug("tourism stream write failed", "err", err)
			return
		}
		if !keepOpen && state.Status != resource.StatusLoading {
			return
		}
	}
}

// ListFavorites handles GET /api/v1/tourism/favorites.
// Returns the current favourites as a JSON array, or with ?follow=true an
// NDJSON stream of arrays, one per change.
func (h *Handlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	favorites := h.repo.GetFavorites(ctx)

	if !follow(r) {
		list, ok := <-favorites
		if !ok {
			if ctx.Err() == nil {
				writeError(w, http.StatusInternalServerError, "failed to read favorites")
			}
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}

	out := newNDJSONWriter(w)
	for list := range favorites {
		if err := out.write(list); err != nil {
			h.log.Debug("favorites stream write failed", "err", err)
			return
		}
	}
}

type favoriteRequest struct {
	Favorite *bool `json:"favorite"`
}

// SetFavorite handles PUT /api/v1/tourism/{id}/favorite.
func (h *Handlers) SetFavorite(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing destination id")
		return
	}

	var body favoriteRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil || body.Favorite == nil {
		writeError(w, http.StatusBadRequest, `body must be {"favorite": true|false}`)
		return
	}

	if err := h.repo.UpdateFavorite(r.Context(), tourism.Tourism{ID: id}, *body.Favorite); err != nil {
		h.log.Error("favorite update failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update favorite")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis
// connectivity. A nil redis pinger is reported as "disabled".
func HealthHandlerFunc(db, redis Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		redisStatus := "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if redis == nil {
			redisStatus = "disabled"
		} else if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}
