package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"

	"webvlc/src/command"
	"webvlc/src/intake"
	"webvlc/src/player"
	"webvlc/src/resource"
)

func newTestRouter() (http.Handler, *resource.Server) {
	store := player.NewStore()
	resources := resource.NewServer("/")
	return New(Services{
		Store:      store,
		Controller: command.NewController(store, player.NewNullSurface(), resources),
		Intake:     intake.New(store, resources),
		Resources:  resources,
		Uploads:    afero.NewMemMapFs(),
	}), resources
}

func TestRoutes(t *testing.T) {
	router, resources := newTestRouter()
	url, err := resources.CreateText("a.vtt", "text/vtt", []byte("WEBVTT\n"))
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Unexpected status for %s: %v", url, rec.Code)
	}
	if body, _ := io.ReadAll(rec.Body); string(body) != "WEBVTT\n" {
		t.Fatalf("Unexpected body: %q", body)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blob/blob-nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Unexpected status for unknown resource: %v", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/data/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Unexpected status for state: %v", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("Unexpected status for root: %v", rec.Code)
	}
}
