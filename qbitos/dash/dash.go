// Package dash is the local HTTP accessor surface: animation selection,
// playback speed, storage stats and a live framebuffer snapshot. Host builds
// serve it next to the display window; it talks to the runtime only through
// the player accessors and the network queue.
package dash

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"qbit/hal"
	"qbit/qbitos/event"
	"qbit/qbitos/oled"
	"qbit/qbitos/qgif"
	"qbit/qbitos/settings"
)

type Server struct {
	player *qgif.Player
	screen *oled.Buffer
	set    *settings.Store
	out    *event.NetQueue
	sink   hal.FrameSink
	log    hal.Logger
}

func New(player *qgif.Player, screen *oled.Buffer, set *settings.Store, out *event.NetQueue, sink hal.FrameSink, log hal.Logger) *Server {
	return &Server{player: player, screen: screen, set: set, out: out, sink: sink, log: log}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/animations", s.listAnimations).Methods(http.MethodGet)
	api.HandleFunc("/animations/current", s.getCurrent).Methods(http.MethodGet)
	api.HandleFunc("/animations/current", s.putCurrent).Methods(http.MethodPut)
	api.HandleFunc("/speed", s.getSpeed).Methods(http.MethodGet)
	api.HandleFunc("/speed", s.putSpeed).Methods(http.MethodPut)
	api.HandleFunc("/brightness", s.getBrightness).Methods(http.MethodGet)
	api.HandleFunc("/brightness", s.putBrightness).Methods(http.MethodPut)
	api.HandleFunc("/storage", s.getStorage).Methods(http.MethodGet)
	api.HandleFunc("/display", s.getDisplay).Methods(http.MethodGet)
	api.HandleFunc("/poke", s.postPoke).Methods(http.MethodPost)
	return r
}

// Serve blocks on ListenAndServe.
func (s *Server) Serve(addr string) error {
	if s.log != nil {
		s.log.WriteLineString("dash: listening on " + addr)
	}
	return http.ListenAndServe(addr, s.Router())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}

func (s *Server) listAnimations(w http.ResponseWriter, _ *http.Request) {
	files := s.player.List()
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"animations": files})
}

func (s *Server) getCurrent(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"file": s.player.CurrentFile()})
}

func (s *Server) putCurrent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		File string `json:"file"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad body: %v", err)
		return
	}
	if req.File != "" && !contains(s.player.List(), req.File) {
		writeError(w, http.StatusNotFound, "no such animation %q", req.File)
		return
	}
	s.player.SetFile(req.File)
	writeJSON(w, http.StatusOK, map[string]string{"file": req.File})
}

func (s *Server) getSpeed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]uint16{"speed": s.player.Speed()})
}

func (s *Server) putSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed uint16 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad body: %v", err)
		return
	}
	s.player.SetSpeed(req.Speed)
	s.set.SetPlaybackSpeed(s.player.Speed())
	writeJSON(w, http.StatusOK, map[string]uint16{"speed": s.player.Speed()})
}

func (s *Server) getBrightness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]uint8{"brightness": s.set.Brightness()})
}

func (s *Server) putBrightness(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Brightness uint8 `json:"brightness"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad body: %v", err)
		return
	}
	s.set.SetBrightness(req.Brightness)
	if bs, ok := s.sink.(hal.BrightnessSink); ok {
		bs.SetBrightness(req.Brightness)
	}
	if err := s.set.Persist(); err != nil && s.log != nil {
		s.log.WriteLineString("dash: persist settings: " + err.Error())
	}
	writeJSON(w, http.StatusOK, map[string]uint8{"brightness": req.Brightness})
}

func (s *Server) getStorage(w http.ResponseWriter, _ *http.Request) {
	used, total := s.player.Usage()
	writeJSON(w, http.StatusOK, map[string]uint32{"used": used, "total": total})
}

// getDisplay returns the raw page-layout framebuffer (1024 bytes).
func (s *Server) getDisplay(w http.ResponseWriter, _ *http.Request) {
	buf := make([]byte, hal.DisplayBytes)
	s.screen.Snapshot(buf)
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(buf)
}

// postPoke injects a poke as if it came from the backend, for local testing.
func (s *Server) postPoke(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sender string `json:"sender"`
		Text   string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad body: %v", err)
		return
	}
	e := event.NetworkEvent{Kind: event.Poke, Sender: req.Sender, Text: req.Text}
	if !s.out.SendOrRelease(e) {
		writeError(w, http.StatusServiceUnavailable, "queue full")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
