package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/Mister-sp/girr-remake-sub000/internal/uploads"
)

// handleUpload stores one multipart file (field "file") in the uploads
// directory and returns the URL it will be served from. Uploaded logos
// and media end up referenced from program and media item records.
func (a *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.Uploads.MaxBytes()+512*1024)
	if err := r.ParseMultipartForm(a.Uploads.MaxBytes()); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	stored, err := a.Uploads.Save(file, header.Filename)
	if err != nil {
		if errors.Is(err, uploads.ErrTooLarge) {
			a.writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		a.Log.Error().Err(err).Msg("upload: store failed")
		a.writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	a.writeJSON(w, http.StatusCreated, map[string]any{
		"url":      "/uploads/" + stored.Name,
		"name":     stored.Name,
		"filename": header.Filename,
		"size":     stored.Size,
	})
}

func (a *API) handleListUploads(w http.ResponseWriter, r *http.Request) {
	files, err := a.Uploads.List()
	if err != nil {
		a.Log.Error().Err(err).Msg("upload: list failed")
		a.writeError(w, http.StatusInternalServerError, "failed to list uploads")
		return
	}
	a.writeJSON(w, http.StatusOK, files)
}

func (a *API) handleDeleteUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	err := a.Uploads.Remove(name)
	switch {
	case err == nil:
		a.writeJSON(w, http.StatusOK, map[string]string{"deleted": name})
	case errors.Is(err, uploads.ErrBadName):
		a.writeError(w, http.StatusBadRequest, "invalid file name")
	case errors.Is(err, os.ErrNotExist):
		a.writeError(w, http.StatusNotFound, "not found")
	default:
		a.Log.Error().Err(err).Msg("upload: delete failed")
		a.writeError(w, http.StatusInternalServerError, "failed to delete upload")
	}
}
