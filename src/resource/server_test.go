package resource

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type closingHandle struct {
	textHandle
	contentType string
	closed      bool
}

func (h *closingHandle) ContentType() string { return h.contentType }
func (h *closingHandle) Close() error {
	h.closed = true
	return nil
}

func fetch(t *testing.T, sv *Server, url string, header http.Header) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	sv.ServeHTTP(rec, req)
	return rec.Result()
}

func TestCreateAndServe(t *testing.T) {
	sv := NewServer("/")
	url, err := sv.CreateText("sub.vtt", "text/vtt", []byte("WEBVTT\n\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "/blob/blob-") {
		t.Fatalf("Unexpected url: %q", url)
	}

	res := fetch(t, sv, url, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("Unexpected status: %v", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "text/vtt" {
		t.Fatalf("Unexpected content type: %q", ct)
	}
	body, _ := io.ReadAll(res.Body)
	if string(body) != "WEBVTT\n\n" {
		t.Fatalf("Unexpected body: %q", body)
	}
}

func TestRangeRequest(t *testing.T) {
	sv := NewServer("/")
	url, err := sv.CreateText("a.mp3", "audio/mpeg", []byte("0123456789"))
	if err != nil {
		t.Fatal(err)
	}
	res := fetch(t, sv, url, http.Header{"Range": {"bytes=2-4"}})
	if res.StatusCode != http.StatusPartialContent {
		t.Fatalf("Unexpected status: %v", res.StatusCode)
	}
	body, _ := io.ReadAll(res.Body)
	if string(body) != "234" {
		t.Fatalf("Unexpected body: %q", body)
	}
}

func TestHandleContentTypeWins(t *testing.T) {
	sv := NewServer("/")
	handle := &closingHandle{textHandle: textHandle{name: "x", body: []byte("x")}, contentType: "video/webm"}
	url, err := sv.Create(handle, "audio/webm")
	if err != nil {
		t.Fatal(err)
	}
	if ct := fetch(t, sv, url, nil).Header.Get("Content-Type"); ct != "video/webm" {
		t.Fatalf("Unexpected content type: %q", ct)
	}
}

func TestRevoke(t *testing.T) {
	sv := NewServer("http://localhost:3000/")
	handle := &closingHandle{textHandle: textHandle{name: "x", body: []byte("x")}}
	url, err := sv.Create(handle, "")
	if err != nil {
		t.Fatal(err)
	}
	if sv.Len() != 1 {
		t.Fatalf("Unexpected number of resources: %v", sv.Len())
	}
	if err := sv.Revoke(url); err != nil {
		t.Fatal(err)
	}
	if !handle.closed {
		t.Fatalf("Handle was not closed")
	}
	if sv.Len() != 0 {
		t.Fatalf("Resource was not removed")
	}
	if res := fetch(t, sv, "/blob/"+url[strings.LastIndex(url, "/")+1:], nil); res.StatusCode != http.StatusNotFound {
		t.Fatalf("Unexpected status after revoking: %v", res.StatusCode)
	}
	if err := sv.Revoke(url); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Unexpected error revoking twice: %v", err)
	}
}
