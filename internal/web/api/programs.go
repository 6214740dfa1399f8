package api

import (
	"net/http"

	"github.com/Mister-sp/girr-remake-sub000/internal/store"
)

func (a *API) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.Store.ListPrograms())
}

func (a *API) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	var p store.Program
	if err := decodeBody(r, &p); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created := a.Store.CreateProgram(p)
	a.writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "programID")
	if !ok {
		a.writeError(w, http.StatusBadRequest, "invalid program id")
		return
	}

	p, err := a.Store.GetProgram(id)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, p)
}

func (a *API) handleUpdateProgram(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "programID")
	if !ok {
		a.writeError(w, http.StatusBadRequest, "invalid program id")
		return
	}

	var patch store.ProgramPatch
	if err := decodeBody(r, &patch); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p, err := a.Store.UpdateProgram(id, patch)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, p)
}

func (a *API) handleDeleteProgram(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "programID")
	if !ok {
		a.writeError(w, http.StatusBadRequest, "invalid program id")
		return
	}

	p, err := a.Store.DeleteProgram(id)
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, p)
}
