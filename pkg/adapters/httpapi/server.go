// Package httpapi lets remote callers fire events onto the bus and read the
// stored document.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/jsondo/pkg/adapters/bus"
	"github.com/aretw0/jsondo/pkg/core"
)

// MaxBodyBytes caps the size of an event payload.
const MaxBodyBytes = 1 << 20

// Reader reads the stored document.
type Reader interface {
	Read(ctx context.Context, path string) (any, bool, error)
}

// NewServer wires the event intake and document reads into a router.
func NewServer(b core.Bus, r Reader, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{bus: b, reader: r, logger: logger}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Post("/events/{type}", h.fire)
	router.Get("/document", h.read)
	router.Get("/document/{path}", h.read)

	return router
}

type handler struct {
	bus    core.Bus
	reader Reader
	logger *slog.Logger
}

func (h *handler) fire(w http.ResponseWriter, r *http.Request) {
	eventType := chi.URLParam(r, "type")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	data, err := core.DecodeEventData(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	e := core.Event{
		Type:      eventType,
		Data:      data,
		Origin:    "http",
		Timestamp: time.Now().Unix(),
	}
	if err := h.bus.Fire(r.Context(), e); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, bus.ErrFull) || errors.Is(err, bus.ErrStopped) {
			status = http.StatusServiceUnavailable
		}
		h.logger.Warn("failed to queue event", "event", e.String(), "error", err)
		writeError(w, status, err)
		return
	}

	h.logger.Debug("event queued", "event", e.String())
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "event": eventType})
}

func (h *handler) read(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	v, ok, err := h.reader.Read(r.Context(), path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("path not found: "+path))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
