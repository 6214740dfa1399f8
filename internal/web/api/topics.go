package api

import (
	"net/http"

	"github.com/Mister-sp/girr-remake-sub000/internal/store"
)

func (a *API) handleListTopics(w http.ResponseWriter, r *http.Request) {
	programID, episodeID, ok := a.episodeScope(w, r)
	if !ok {
		return
	}
	a.writeJSON(w, http.StatusOK, a.Store.ListTopics(programID, episodeID))
}

func (a *API) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	programID, episodeID, ok := a.episodeScope(w, r)
	if !ok {
		return
	}

	var t store.Topic
	if err := decodeBody(r, &t); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created := a.Store.CreateTopic(programID, episodeID, t)
	a.writeJSON(w, http.StatusCreated, created)
}

// topicPath parses the three-level topic path without hitting the store.
func (a *API) topicPath(w http.ResponseWriter, r *http.Request) (programID, episodeID, id int, ok bool) {
	programID, ok = pathInt(r, "programID")
	if !ok {
		a.writeError(w, http.StatusBadRequest, "invalid program id")
		return 0, 0, 0, false
	}
	episodeID, ok = pathInt(r, "episodeID")
	if !ok {
		a.writeError(w, http.StatusBadRequest, "invalid episode id")
		return 0, 0, 0, false
	}
	id, ok = pathInt(r, "topicID")
	if !ok {
		a.writeError(w, http.StatusBadRequest, "invalid topic id")
		return 0, 0, 0, false
	}
	return programID, episodeID, id, true
}

func (a *API) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	programID, episodeID, id, ok := a.topicPath(w, r)
	if !ok {
		return
	}

	t, err := a.Store.GetTopic(programID, episodeID, id)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, t)
}

func (a *API) handleUpdateTopic(w http.ResponseWriter, r *http.Request) {
	programID, episodeID, id, ok := a.topicPath(w, r)
	if !ok {
		return
	}

	var patch store.TopicPatch
	if err := decodeBody(r, &patch); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	t, err := a.Store.UpdateTopic(programID, episodeID, id, patch)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, t)
}

func (a *API) handleDeleteTopic(w http.ResponseWriter, r *http.Request) {
	programID, episodeID, id, ok := a.topicPath(w, r)
	if !ok {
		return
	}

	t, err := a.Store.DeleteTopic(programID, episodeID, id)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, t)
}
