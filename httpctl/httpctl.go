// Package httpctl is the optional local HTTP remote-control surface
// (spec.md §6.2). It never mutates Player or Project state directly: every
// handler only emits a command event onto the shared EventBus, which the
// single-threaded UI loop applies (spec.md §5's single-writer rule for
// state mutation).
package httpctl

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	playback "github.com/rivergraph/playback"
)

// StatusProvider is the minimal read-only view httpctl needs to answer
// GET /status, satisfied by *playback.Player.
type StatusProvider interface {
	StatusSnapshot() (playing bool, frame int64, fps float64, activeComp uuid.UUID)
}

// StatusResponse is the JSON body returned by GET /status.
type StatusResponse struct {
	Playing    bool    `json:"playing"`
	Frame      int64   `json:"frame"`
	FPS        float64 `json:"fps"`
	ActiveComp string  `json:"active_comp"`
}

// New builds a chi.Router binding the endpoints enumerated in spec.md
// §6.2. The teacher's own services don't carry an HTTP control surface, so
// this follows go-chi/chi's own idiomatic router+middleware composition
// instead, per SPEC_FULL.md's domain-stack wiring for the pack's chi dep.
func New(bus *playback.EventBus, status StatusProvider) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		playing, frame, fps, activeComp := status.StatusSnapshot()
		resp := StatusResponse{Playing: playing, Frame: frame, FPS: fps}
		if activeComp != uuid.Nil {
			resp.ActiveComp = activeComp.String()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	r.Post("/play", func(w http.ResponseWriter, req *http.Request) {
		playback.Emit(bus, playback.PlayCommand{})
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/pause", func(w http.ResponseWriter, req *http.Request) {
		playback.Emit(bus, playback.PauseCommand{})
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/stop", func(w http.ResponseWriter, req *http.Request) {
		playback.Emit(bus, playback.StopCommand{})
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/frame/{n}", func(w http.ResponseWriter, req *http.Request) {
		n, err := strconv.ParseInt(chi.URLParam(req, "n"), 10, 64)
		if err != nil {
			http.Error(w, "bad frame number", http.StatusBadRequest)
			return
		}
		playback.Emit(bus, playback.SetFrameCommand{Frame: n})
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/fps/{n}", func(w http.ResponseWriter, req *http.Request) {
		n, err := strconv.ParseFloat(chi.URLParam(req, "n"), 64)
		if err != nil {
			http.Error(w, "bad fps value", http.StatusBadRequest)
			return
		}
		playback.Emit(bus, playback.SetFPSCommand{FPS: n})
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/next", func(w http.ResponseWriter, req *http.Request) {
		playback.Emit(bus, playback.StepCommand{N: 1})
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/prev", func(w http.ResponseWriter, req *http.Request) {
		playback.Emit(bus, playback.StepCommand{N: -1})
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

// Serve binds to addr exactly as given and serves until the process is
// killed or the listener errors. It applies no default address: an addr
// with an empty host (e.g. ":8080") listens on all interfaces, not only
// loopback.
func Serve(addr string, bus *playback.EventBus, status StatusProvider) error {
	return http.ListenAndServe(addr, New(bus, status))
}
