package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/afero"

	"webvlc/src/command"
	"webvlc/src/handler/api"
	"webvlc/src/intake"
	"webvlc/src/player"
	"webvlc/src/resource"
	"webvlc/src/util"
)

// Services bundles everything the HTTP interface exposes.
type Services struct {
	Store      *player.Store
	Controller *command.Controller
	Intake     *intake.Intake
	Resources  *resource.Server
	// Uploads holds files uploaded through the API.
	Uploads afero.Fs
}

// New creates the root router. The API lives below /data and registered
// resources below /blob, which must match the URL root the resource server
// was created with.
func New(services Services) chi.Router {
	service := chi.NewRouter()
	service.Use(util.LogHandler)
	service.Use(middleware.Recoverer)
	service.Use(middleware.Compress(5))

	service.Get("/", redirectToState)
	service.Route("/data", func(r chi.Router) {
		api.InitRouter(r, services.Store, services.Controller, services.Intake, services.Uploads)
	})
	service.Method(http.MethodGet, "/blob/{id}", services.Resources)
	service.Method(http.MethodHead, "/blob/{id}", services.Resources)

	return service
}

func redirectToState(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/data/state", http.StatusTemporaryRedirect)
}
