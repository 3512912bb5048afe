package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"

	"webvlc/src/command"
	"webvlc/src/intake"
	"webvlc/src/player"
	"webvlc/src/resource"
)

type testAPI struct {
	*API
	router    chi.Router
	resources *resource.Server
}

func newTestAPI() *testAPI {
	store := player.NewStore()
	resources := resource.NewServer("/")
	ctl := command.NewController(store, player.NewNullSurface(), resources)
	api := newAPI(store, ctl, intake.New(store, resources), afero.NewMemMapFs())
	router := chi.NewRouter()
	api.routes(router)
	return &testAPI{API: api, router: router, resources: resources}
}

func (ta *testAPI) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	ta.router.ServeHTTP(rec, req)
	return rec
}

func (ta *testAPI) doJSON(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return ta.do(t, method, path, strings.NewReader(body), "application/json")
}

func (ta *testAPI) upload(t *testing.T, method string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		io.WriteString(fw, content)
	}
	mw.Close()
	return ta.do(t, method, "/playlist", &buf, mw.FormDataContentType())
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("Unexpected status: %v != %v, body: %q", rec.Code, status, rec.Body.String())
	}
}

func playlistNames(state player.State) []string {
	names := make([]string, len(state.Playlist))
	for i, entry := range state.Playlist {
		names[i] = entry.Name
	}
	return names
}

func TestUploadAndPlaylist(t *testing.T) {
	ta := newTestAPI()
	rec := ta.upload(t, http.MethodPost, map[string]string{
		"b 10.mp3": "bbbb",
		"b 9.mp3":  "bbb",
		"a.srt":    "1\n00:00:01,000 --> 00:00:02,000\nHi\n",
	})
	expectStatus(t, rec, http.StatusOK)
	var res intake.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Media != 2 || res.Subtitle != "a.srt" {
		t.Fatalf("Unexpected result: %#v", res)
	}
	if names := playlistNames(ta.store.State()); strings.Join(names, ",") != "b 9.mp3,b 10.mp3" {
		t.Fatalf("Unexpected playlist: %v", names)
	}
	// The subtitle has been converted, so only the media are kept.
	if n := ta.uploads.len(); n != 2 {
		t.Fatalf("Unexpected number of spooled uploads: %v", n)
	}

	rec = ta.upload(t, http.MethodPut, map[string]string{"c.mp3": "c"})
	expectStatus(t, rec, http.StatusOK)

	rec = ta.do(t, http.MethodGet, "/playlist", nil, "")
	expectStatus(t, rec, http.StatusOK)
	var contents struct {
		Current int `json:"current"`
		Entries []struct {
			Name     string `json:"name"`
			Size     int64  `json:"size"`
			SizeText string `json:"size_text"`
			Kind     string `json:"kind"`
		} `json:"entries"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&contents); err != nil {
		t.Fatal(err)
	}
	if contents.Current != 0 || len(contents.Entries) != 3 {
		t.Fatalf("Unexpected contents: %+v", contents)
	}
	if e := contents.Entries[1]; e.Name != "b 10.mp3" || e.Size != 4 || e.SizeText != "4 B" || e.Kind != "audio" {
		t.Fatalf("Unexpected entry: %+v", e)
	}

	expectStatus(t, ta.doJSON(t, http.MethodPatch, "/playlist", `{"from": 2, "to": 0}`), http.StatusOK)
	if names := playlistNames(ta.store.State()); names[0] != "c.mp3" {
		t.Fatalf("Unexpected playlist after move: %v", names)
	}

	expectStatus(t, ta.do(t, http.MethodDelete, "/playlist/0", nil, ""), http.StatusOK)
	if n := ta.uploads.len(); n != 2 {
		t.Fatalf("Removed upload was not pruned: %v", n)
	}
	expectStatus(t, ta.do(t, http.MethodDelete, "/playlist/9", nil, ""), http.StatusBadRequest)
	expectStatus(t, ta.do(t, http.MethodDelete, "/playlist/x", nil, ""), http.StatusBadRequest)

	expectStatus(t, ta.do(t, http.MethodDelete, "/playlist", nil, ""), http.StatusOK)
	state := ta.store.State()
	if len(state.Playlist) != 0 || state.Subtitle != nil {
		t.Fatalf("Playlist was not cleared")
	}
	if ta.uploads.len() != 0 || ta.resources.Len() != 0 {
		t.Fatalf("Resources were not released: uploads=%v resources=%v", ta.uploads.len(), ta.resources.Len())
	}
}

func TestUploadWithoutFiles(t *testing.T) {
	ta := newTestAPI()
	rec := ta.upload(t, http.MethodPost, map[string]string{})
	expectStatus(t, rec, http.StatusBadRequest)
	rec = ta.doJSON(t, http.MethodPost, "/playlist", "{}")
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestCommandsAndState(t *testing.T) {
	ta := newTestAPI()
	ta.upload(t, http.MethodPost, map[string]string{"a.mp3": "a", "b.mp3": "b"})

	expectStatus(t, ta.doJSON(t, http.MethodPost, "/command", `{"command": "next"}`), http.StatusOK)
	expectStatus(t, ta.doJSON(t, http.MethodPost, "/command", `{"command": "volume", "arg": 0.5}`), http.StatusOK)
	expectStatus(t, ta.doJSON(t, http.MethodPost, "/command", `{"command": "toggle-repeat"}`), http.StatusOK)
	expectStatus(t, ta.doJSON(t, http.MethodPost, "/command", `{"command": "explode"}`), http.StatusBadRequest)
	expectStatus(t, ta.doJSON(t, http.MethodPost, "/command", `{"command": `), http.StatusBadRequest)

	rec := ta.do(t, http.MethodGet, "/state", nil, "")
	expectStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Unexpected content type: %q", ct)
	}
	var state struct {
		CurrentIndex int     `json:"current_index"`
		Volume       float64 `json:"volume"`
		Repeat       string  `json:"repeat"`
		TimeText     string  `json:"time_text"`
		Duration     float64 `json:"duration"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if state.CurrentIndex != 1 || state.Volume != 0.5 || state.Repeat != "all" || state.TimeText != "0:00" {
		t.Fatalf("Unexpected state: %+v", state)
	}

	expectStatus(t, ta.doJSON(t, http.MethodPost, "/current", `{"index": 0}`), http.StatusOK)
	expectStatus(t, ta.doJSON(t, http.MethodPost, "/current", `{"index": 5}`), http.StatusBadRequest)
	if index := ta.store.State().CurrentIndex; index != 0 {
		t.Fatalf("Unexpected index: %v", index)
	}
}

func TestSubtitleClear(t *testing.T) {
	ta := newTestAPI()
	ta.upload(t, http.MethodPost, map[string]string{"a.mp4": "a", "a.vtt": "WEBVTT\n"})
	if ta.store.State().Subtitle == nil {
		t.Fatalf("Subtitle was not loaded")
	}
	expectStatus(t, ta.do(t, http.MethodDelete, "/subtitle", nil, ""), http.StatusOK)
	if ta.store.State().Subtitle != nil || ta.resources.Len() != 0 {
		t.Fatalf("Subtitle was not cleared")
	}
}

func TestPlaylistExport(t *testing.T) {
	ta := newTestAPI()
	ta.upload(t, http.MethodPost, map[string]string{"One.MP3": "1", "two.ogg": "2"})
	rec := ta.do(t, http.MethodGet, "/playlist.m3u", nil, "")
	expectStatus(t, rec, http.StatusOK)
	expect := "#EXTM3U\n#EXTINF:-1,One.MP3\nOne.MP3\n#EXTINF:-1,two.ogg\ntwo.ogg\n"
	if body := rec.Body.String(); body != expect {
		t.Fatalf("Unexpected playlist: %q", body)
	}
}

func TestPlaylistSearch(t *testing.T) {
	ta := newTestAPI()
	ta.upload(t, http.MethodPost, map[string]string{"live.mp3": "1", "Live Show.mkv": "2", "studio.mp3": "3"})

	rec := ta.do(t, http.MethodGet, "/playlist/search?query=live+kind:audio", nil, "")
	expectStatus(t, rec, http.StatusOK)
	var res struct {
		Results []struct {
			Index int `json:"index"`
			Entry struct {
				Name string `json:"name"`
			} `json:"entry"`
		} `json:"results"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 1 || res.Results[0].Entry.Name != "live.mp3" {
		t.Fatalf("Unexpected results: %+v", res.Results)
	}

	expectStatus(t, ta.do(t, http.MethodGet, "/playlist/search?query=", nil, ""), http.StatusBadRequest)
}

func TestEvents(t *testing.T) {
	ta := newTestAPI()
	server := httptest.NewServer(ta.router)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/events", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if ct := res.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Unexpected content type: %q", ct)
	}

	events := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(res.Body)
		for scanner.Scan() {
			if line := scanner.Text(); strings.HasPrefix(line, "event: ") {
				events <- strings.TrimPrefix(line, "event: ")
			}
		}
		close(events)
	}()
	expectEvent := func(name string) {
		t.Helper()
		select {
		case event := <-events:
			if event != name {
				t.Fatalf("Unexpected event: %q != %q", event, name)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Timeout waiting for %q", name)
		}
	}
	expectEvent("state")
	ta.store.SetVolume(0.3)
	expectEvent("volume")
	ta.store.ToggleShuffle()
	expectEvent("mode")
}

func TestMapError(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("%w: nope", errBadRequest):          http.StatusBadRequest,
		fmt.Errorf("x: %w", player.ErrIndexOutOfRange): http.StatusBadRequest,
		fmt.Errorf("x: %w", command.ErrUnknownCommand): http.StatusBadRequest,
		fmt.Errorf("x: %w", resource.ErrNotFound):      http.StatusNotFound,
		errors.New("disk on fire"):                     http.StatusInternalServerError,
	}
	for err, status := range cases {
		if s := mapError(err); s != status {
			t.Fatalf("Unexpected status for %v: %v != %v", err, s, status)
		}
	}
}
