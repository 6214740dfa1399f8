package api

import (
	"net/http"
	"time"
)

// handleGetScene returns the relay's retained on-air payload so that a
// reconnecting output view can resynchronize with a plain HTTP pull.
func (a *API) handleGetScene(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.Hub.Scene())
}

// handleUpdateScene pushes an on-air update into the relay from the HTTP
// side. The payload shape is collaborator-defined; it is stamped and
// broadcast exactly like a socket-originated obs:update, minus a source
// client id since no socket sent it.
func (a *API) handleUpdateScene(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := decodeBody(r, &payload); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["timestamp"] = time.Now().UnixMilli()

	a.Hub.SetScene(payload)
	a.Hub.Broadcast("obs:update", payload)
	a.writeJSON(w, http.StatusOK, payload)
}
