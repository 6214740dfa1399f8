package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Mister-sp/girr-remake-sub000/internal/relay"
	"github.com/Mister-sp/girr-remake-sub000/internal/store"
	"github.com/Mister-sp/girr-remake-sub000/internal/uploads"
)

// API holds dependencies for all API handlers.
type API struct {
	Store       *store.Store
	Hub         *relay.Hub
	Transitions *TransitionStore
	Uploads     *uploads.Manager
	Log         zerolog.Logger
}

// RegisterRoutes registers the REST surface on the given router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/health", a.handleHealth)

	r.Get("/scene", a.handleGetScene)
	r.Post("/scene", a.handleUpdateScene)

	r.Get("/settings/transitions", a.handleGetTransitions)
	r.Put("/settings/transitions", a.handleUpdateTransitions)

	r.Post("/upload", a.handleUpload)
	r.Get("/uploads", a.handleListUploads)
	r.Delete("/uploads/{name}", a.handleDeleteUpload)

	r.Route("/programs", func(r chi.Router) {
		r.Get("/", a.handleListPrograms)
		r.Post("/", a.handleCreateProgram)
		r.Route("/{programID}", func(r chi.Router) {
			r.Get("/", a.handleGetProgram)
			r.Put("/", a.handleUpdateProgram)
			r.Delete("/", a.handleDeleteProgram)
			r.Route("/episodes", func(r chi.Router) {
				r.Get("/", a.handleListEpisodes)
				r.Post("/", a.handleCreateEpisode)
				r.Route("/{episodeID}", func(r chi.Router) {
					r.Get("/", a.handleGetEpisode)
					r.Put("/", a.handleUpdateEpisode)
					r.Delete("/", a.handleDeleteEpisode)
					r.Route("/topics", func(r chi.Router) {
						r.Get("/", a.handleListTopics)
						r.Post("/", a.handleCreateTopic)
						r.Route("/{topicID}", func(r chi.Router) {
							r.Get("/", a.handleGetTopic)
							r.Put("/", a.handleUpdateTopic)
							r.Delete("/", a.handleDeleteTopic)
							r.Route("/media", func(r chi.Router) {
								r.Get("/", a.handleListMedia)
								r.Post("/", a.handleCreateMedia)
								r.Post("/reorder", a.handleReorderMedia)
								r.Route("/{mediaID}", func(r chi.Router) {
									r.Get("/", a.handleGetMedia)
									r.Put("/", a.handleUpdateMedia)
									r.Delete("/", a.handleDeleteMedia)
								})
							})
						})
					})
				})
			})
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	media, titrage := a.Hub.Status()
	a.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"obs":    map[string]bool{"media": media, "titrage": titrage},
	})
}

// writeJSON writes a JSON response with the given status code.
func (a *API) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.Log.Error().Err(err).Msg("api: failed to write JSON response")
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, msg string) {
	a.writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps a store outcome onto an HTTP status.
func (a *API) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		a.writeError(w, http.StatusNotFound, "not found")
		return
	}
	a.writeError(w, http.StatusInternalServerError, err.Error())
}

// pathInt parses an integer chi path parameter.
func pathInt(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, false
	}
	return v, true
}

// decodeBody decodes a JSON request body into dst with a sane size cap.
func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 2*1024*1024)).Decode(dst)
}

// Ancestor scope helpers. The store trusts its caller on referential
// integrity, so parent existence is validated here, in one place, before
// any child is created or listed under a missing ancestor chain.

// programScope parses {programID} and confirms the program exists.
func (a *API) programScope(w http.ResponseWriter, r *http.Request) (int, bool) {
	programID, ok := pathInt(r, "programID")
	if !ok {
		a.writeError(w, http.StatusBadRequest, "invalid program id")
		return 0, false
	}
	if _, err := a.Store.GetProgram(programID); err != nil {
		a.writeStoreError(w, err)
		return 0, false
	}
	return programID, true
}

// episodeScope parses {programID}/{episodeID} and confirms the chain.
func (a *API) episodeScope(w http.ResponseWriter, r *http.Request) (programID, episodeID int, ok bool) {
	programID, ok = a.programScope(w, r)
	if !ok {
		return 0, 0, false
	}
	episodeID, ok = pathInt(r, "episodeID")
	if !ok {
		a.writeError(w, http.StatusBadRequest, "invalid episode id")
		return 0, 0, false
	}
	if _, err := a.Store.GetEpisode(programID, episodeID); err != nil {
		a.writeStoreError(w, err)
		return 0, 0, false
	}
	return programID, episodeID, true
}

// topicScope parses {programID}/{episodeID}/{topicID} and confirms the chain.
func (a *API) topicScope(w http.ResponseWriter, r *http.Request) (programID, episodeID, topicID int, ok bool) {
	programID, episodeID, ok = a.episodeScope(w, r)
	if !ok {
		return 0, 0, 0, false
	}
	topicID, ok = pathInt(r, "topicID")
	if !ok {
		a.writeError(w, http.StatusBadRequest, "invalid topic id")
		return 0, 0, 0, false
	}
	if _, err := a.Store.GetTopic(programID, episodeID, topicID); err != nil {
		a.writeStoreError(w, err)
		return 0, 0, 0, false
	}
	return programID, episodeID, topicID, true
}
