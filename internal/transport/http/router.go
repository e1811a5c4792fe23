package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"quiz-duel-service/internal/domain"
)

// StatsSource snapshots the live registry.
type StatsSource interface {
	Stats(ctx context.Context) (domain.Stats, domain.RosterStats, error)
}

// Info describes the running service on /api/info.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type statsResponse struct {
	Rooms       domain.Stats       `json:"rooms"`
	Roster      domain.RosterStats `json:"roster"`
	Connections int                `json:"connections"`
}

// NewRouter wires the websocket endpoint and the operational endpoints.
func NewRouter(ws *WSHandler, stats StatsSource, info Info) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/ws", ws.ServeWS).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		rooms, roster, err := stats.Stats(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, statsResponse{Rooms: rooms, Roster: roster, Connections: ws.hub.Len()})
	}).Methods(http.MethodGet)
	api.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, info)
	}).Methods(http.MethodGet)

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
