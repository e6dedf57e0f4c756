package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// handleEventStream serves the server-sent event feed. Each subscriber gets
// a bounded queue; the hub drops events for subscribers that stop reading,
// so one stalled browser tab cannot block pod monitoring.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)
	s.log.V(1).Info("event stream opened", "clients", s.hub.ClientCount())

	keepalive := time.NewTicker(s.opts.KeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case env, open := <-sub.C():
			if !open {
				return
			}
			data, err := json.Marshal(env)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
