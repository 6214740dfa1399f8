package api

import (
	"net/http"

	"github.com/Mister-sp/girr-remake-sub000/internal/store"
)

func (a *API) handleListEpisodes(w http.ResponseWriter, r *http.Request) {
	programID, ok := a.programScope(w, r)
	if !ok {
		return
	}
	a.writeJSON(w, http.StatusOK, a.Store.ListEpisodes(programID))
}

func (a *API) handleCreateEpisode(w http.ResponseWriter, r *http.Request) {
	programID, ok := a.programScope(w, r)
	if !ok {
		return
	}

	var e store.Episode
	if err := decodeBody(r, &e); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created := a.Store.CreateEpisode(programID, e)
	a.writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleGetEpisode(w http.ResponseWriter, r *http.Request) {
	programID, ok := pathInt(r, "programID")
	if !ok {
		a.writeError(w, http.StatusBadRequest, "invalid program id")
		return
	}
	id, ok := pathInt(r, "episodeID")
	if !ok {
		a.writeError(w, http.StatusBadRequest, "invalid episode id")
		return
	}

	e, err := a.Store.GetEpisode(programID, id)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, e)
}

func (a *API) handleUpdateEpisode(w http.ResponseWriter, r *http.Request) {
	programID, ok := pathInt(r, "programID")
	if !ok {
		a.writeError(w, http.StatusBadRequest, "invalid program id")
		return
	}
	id, ok := pathInt(r, "episodeID")
	if !ok {
		a.writeError(w, http.StatusBadRequest, "invalid episode id")
		return
	}

	var patch store.EpisodePatch
	if err := decodeBody(r, &patch); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	e, err := a.Store.UpdateEpisode(programID, id, patch)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, e)
}

func (a *API) handleDeleteEpisode(w http.ResponseWriter, r *http.Request) {
	programID, ok := pathInt(r, "programID")
	if !ok {
		a.writeError(w, http.StatusBadRequest, "invalid program id")
		return
	}
	id, ok := pathInt(r, "episodeID")
	if !ok {
		a.writeError(w, http.StatusBadRequest, "invalid episode id")
		return
	}

	e, err := a.Store.DeleteEpisode(programID, id)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, e)
}
