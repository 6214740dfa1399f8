package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Mister-sp/girr-remake-sub000/internal/store"
)

func (a *API) handleListMedia(w http.ResponseWriter, r *http.Request) {
	programID, episodeID, topicID, ok := a.topicScope(w, r)
	if !ok {
		return
	}
	a.writeJSON(w, http.StatusOK, a.Store.ListMediaItems(programID, episodeID, topicID))
}

func (a *API) handleCreateMedia(w http.ResponseWriter, r *http.Request) {
	programID, episodeID, topicID, ok := a.topicScope(w, r)
	if !ok {
		return
	}

	var m store.MediaItem
	if err := decodeBody(r, &m); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created := a.Store.CreateMediaItem(programID, episodeID, topicID, m)
	a.writeJSON(w, http.StatusCreated, created)
}

// mediaPath parses the four-level media path.
func (a *API) mediaPath(w http.ResponseWriter, r *http.Request) (programID, episodeID, topicID, id int, ok bool) {
	programID, episodeID, topicID, ok = a.topicPath(w, r)
	if !ok {
		return 0, 0, 0, 0, false
	}
	id, ok = pathInt(r, "mediaID")
	if !ok {
		a.writeError(w, http.StatusBadRequest, "invalid media id")
		return 0, 0, 0, 0, false
	}
	return programID, episodeID, topicID, id, true
}

func (a *API) handleGetMedia(w http.ResponseWriter, r *http.Request) {
	programID, episodeID, topicID, id, ok := a.mediaPath(w, r)
	if !ok {
		return
	}

	m, err := a.Store.GetMediaItem(programID, episodeID, topicID, id)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, m)
}

func (a *API) handleUpdateMedia(w http.ResponseWriter, r *http.Request) {
	programID, episodeID, topicID, id, ok := a.mediaPath(w, r)
	if !ok {
		return
	}

	var patch store.MediaItemPatch
	if err := decodeBody(r, &patch); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	m, err := a.Store.UpdateMediaItem(programID, episodeID, topicID, id, patch)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, m)
}

func (a *API) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	programID, episodeID, topicID, id, ok := a.mediaPath(w, r)
	if !ok {
		return
	}

	m, err := a.Store.DeleteMediaItem(programID, episodeID, topicID, id)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, m)
}

func (a *API) handleReorderMedia(w http.ResponseWriter, r *http.Request) {
	programID, episodeID, topicID, ok := a.topicScope(w, r)
	if !ok {
		return
	}

	// Clients send ids either as numbers or as string-encoded numbers,
	// so the body is decoded loosely and coerced here.
	var body struct {
		Order []any `json:"order"`
	}
	if err := decodeBody(r, &body); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	items := a.Store.ReorderMedia(programID, episodeID, topicID, coerceIDs(body.Order))
	a.writeJSON(w, http.StatusOK, items)
}

// coerceIDs accepts numeric and string-encoded ids, dropping anything else.
func coerceIDs(raw []any) []int {
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case float64:
			out = append(out, int(n))
		case string:
			if id, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				out = append(out, id)
			}
		}
	}
	return out
}
