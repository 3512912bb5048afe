package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"webvlc/src/command"
	"webvlc/src/intake"
	"webvlc/src/player"
	"webvlc/src/playlistfile"
)

func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debugf("Could not write response to %s: %v", r.RemoteAddr, err)
	}
}

func (api *API) playlistContents(w http.ResponseWriter, r *http.Request) {
	state := api.store.State()
	writeJSON(w, r, map[string]interface{}{
		"current": state.CurrentIndex,
		"entries": jsonEntries(state.Playlist),
	})
}

// playlistOpen replaces the playlist with the uploaded files.
func (api *API) playlistOpen(w http.ResponseWriter, r *http.Request) {
	api.upload(w, r, api.intake.Open)
}

// playlistAdd adds the uploaded files to the playlist.
func (api *API) playlistAdd(w http.ResponseWriter, r *http.Request) {
	api.upload(w, r, api.intake.Add)
}

func (api *API) upload(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, files []player.SourceHandle) (intake.Result, error)) {
	api.mutate.Lock()
	defer api.mutate.Unlock()
	defer func() {
		api.uploads.prune(api.store.State())
	}()

	files, err := api.uploads.receive(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	res, err := apply(r.Context(), files)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

// playlistSearch selects entries from the playlist with a keyword query, see
// player.CompileSearchQuery.
func (api *API) playlistSearch(w http.ResponseWriter, r *http.Request) {
	results, err := player.Search(api.store.State().Playlist, r.FormValue("query"))
	if err != nil {
		WriteError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	type jsonResult struct {
		Index   int                             `json:"index"`
		Entry   jsonEntry                       `json:"entry"`
		Matches map[string][]player.SearchMatch `json:"matches"`
	}
	out := make([]jsonResult, len(results))
	for i, res := range results {
		out[i] = jsonResult{
			Index:   res.Index,
			Entry:   jsonEntries([]player.Entry{res.Entry})[0],
			Matches: res.Matches,
		}
	}
	writeJSON(w, r, map[string]interface{}{"results": out})
}

func (api *API) playlistMove(w http.ResponseWriter, r *http.Request) {
	var data struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := decodeBody(r, &data); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := api.store.MoveInPlaylist(data.From, data.To); err != nil {
		WriteError(w, r, err)
		return
	}
	w.Write([]byte("{}"))
}

func (api *API) playlistRemove(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		WriteError(w, r, fmt.Errorf("%w: invalid index: %v", errBadRequest, err))
		return
	}
	api.mutate.Lock()
	defer api.mutate.Unlock()
	if err := api.store.RemoveAt(index); err != nil {
		WriteError(w, r, err)
		return
	}
	api.uploads.prune(api.store.State())
	w.Write([]byte("{}"))
}

func (api *API) playlistClear(w http.ResponseWriter, r *http.Request) {
	api.mutate.Lock()
	defer api.mutate.Unlock()
	if err := api.controller.Do(r.Context(), command.ClearPlaylist, 0); err != nil {
		WriteError(w, r, err)
		return
	}
	api.uploads.prune(api.store.State())
	w.Write([]byte("{}"))
}

// playlistExport writes the playlist as M3U. Only names are known, so the
// paths are relative to wherever the files are kept.
func (api *API) playlistExport(w http.ResponseWriter, r *http.Request) {
	state := api.store.State()
	entries := make([]playlistfile.Entry, len(state.Playlist))
	for i, entry := range state.Playlist {
		entries[i] = playlistfile.Entry{
			Path:  entry.Name,
			Title: entry.Name,
		}
	}
	w.Header().Set("Content-Type", "audio/x-mpegurl")
	w.Header().Set("Content-Disposition", `attachment; filename="playlist.m3u"`)
	if err := playlistfile.WriteM3U(w, entries); err != nil {
		log.Debugf("Could not write playlist to %s: %v", r.RemoteAddr, err)
	}
}
