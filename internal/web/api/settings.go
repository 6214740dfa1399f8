package api

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// TransitionSettings are the global media appear/disappear transition
// parameters shared by every output view.
type TransitionSettings struct {
	AppearEffect    string `json:"appearEffect"`
	DisappearEffect string `json:"disappearEffect"`
	DurationMs      int    `json:"durationMs"`
}

func defaultTransitions() TransitionSettings {
	return TransitionSettings{
		AppearEffect:    "fade",
		DisappearEffect: "fade",
		DurationMs:      500,
	}
}

// TransitionStore persists the transition settings to a small JSON file.
// Same failure policy as the main store: reads fall back to defaults,
// write errors are logged and the in-memory value stays authoritative.
type TransitionStore struct {
	mu   sync.Mutex
	path string
	log  zerolog.Logger
	cur  TransitionSettings
}

// OpenTransitions loads the settings file at path, falling back to the
// defaults when it is missing or unparsable.
func OpenTransitions(path string, log zerolog.Logger) *TransitionStore {
	t := &TransitionStore{path: path, log: log, cur: defaultTransitions()}

	data, err := os.ReadFile(path)
	if err != nil {
		return t
	}
	var s TransitionSettings
	if err := json.Unmarshal(data, &s); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("settings file corrupt, using defaults")
		return t
	}
	t.cur = s
	return t
}

// Get returns the current settings.
func (t *TransitionStore) Get() TransitionSettings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cur
}

// Set replaces the settings and persists them.
func (t *TransitionStore) Set(s TransitionSettings) TransitionSettings {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cur = s
	data, err := json.MarshalIndent(&s, "", "  ")
	if err == nil {
		err = os.WriteFile(t.path, data, 0644)
	}
	if err != nil {
		t.log.Error().Err(err).Str("path", t.path).Msg("settings persist failed")
	}
	return t.cur
}

func (a *API) handleGetTransitions(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.Transitions.Get())
}

// handleUpdateTransitions stores the new settings and notifies every
// connected client over the relay.
func (a *API) handleUpdateTransitions(w http.ResponseWriter, r *http.Request) {
	var s TransitionSettings
	if err := decodeBody(r, &s); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cur := a.Transitions.Set(s)
	a.Hub.Broadcast("settings:transitions:update", map[string]any{
		"appearEffect":    cur.AppearEffect,
		"disappearEffect": cur.DisappearEffect,
		"durationMs":      cur.DurationMs,
	})
	a.writeJSON(w, http.StatusOK, cur)
}
