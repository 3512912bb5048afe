package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"webvlc/src/command"
	"webvlc/src/intake"
	"webvlc/src/player"
	"webvlc/src/resource"
)

var errBadRequest = errors.New("bad request")

// API contains the state that is accessible over the REST API.
type API struct {
	store      *player.Store
	controller *command.Controller
	intake     *intake.Intake
	uploads    *spool

	// Held while uploads are applied to the playlist so pruning never sees a
	// half applied upload.
	mutate sync.Mutex
}

// InitRouter attaches all API routes to the specified router.
//
// Uploaded files are kept in the uploads filesystem for as long as they are
// referenced by the playlist.
func InitRouter(r chi.Router, store *player.Store, controller *command.Controller, in *intake.Intake, uploads afero.Fs) {
	newAPI(store, controller, in, uploads).routes(r)
}

func newAPI(store *player.Store, controller *command.Controller, in *intake.Intake, uploads afero.Fs) *API {
	return &API{
		store:      store,
		controller: controller,
		intake:     in,
		uploads:    newSpool(uploads),
	}
}

func (api *API) routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(jsonCtx)
		r.Get("/state", api.state)
		r.Post("/command", api.command)
		r.Route("/playlist", func(r chi.Router) {
			r.Get("/", api.playlistContents)
			r.Get("/search", api.playlistSearch)
			r.Post("/", api.playlistOpen)
			r.Put("/", api.playlistAdd)
			r.Patch("/", api.playlistMove)
			r.Delete("/", api.playlistClear)
			r.Delete("/{index}", api.playlistRemove)
		})
		r.Post("/current", api.setCurrent)
		r.Delete("/subtitle", api.subtitleClear)
	})
	r.Get("/playlist.m3u", api.playlistExport)
	r.Get("/events", api.events)
}

// mapError determines the HTTP status for an error.
func mapError(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, player.ErrIndexOutOfRange),
		errors.Is(err, command.ErrUnknownCommand):
		return http.StatusBadRequest
	case errors.Is(err, resource.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes an error to the client.
//
// An attempt is made to tune the response format to the requestor.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapError(err)
	if status >= 500 {
		log.Errorf("Error serving %s: %v", r.RemoteAddr, err)
	} else {
		log.Debugf("Rejected request from %s: %v", r.RemoteAddr, err)
	}
	w.WriteHeader(status)

	if r.Header.Get("X-Requested-With") == "" {
		w.Write([]byte(err.Error()))
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func jsonCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
