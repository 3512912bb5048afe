package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"webvlc/src/player"
)

// Maximum amount of upload data held in memory while parsing a request, the
// remainder is buffered on disk by net/http.
const maxUploadMemory = 32 << 20

// spool keeps uploaded files around after the request that uploaded them has
// finished.
type spool struct {
	fs afero.Fs

	lock  sync.Mutex
	paths map[string]struct{}
}

func newSpool(fs afero.Fs) *spool {
	return &spool{fs: fs, paths: map[string]struct{}{}}
}

type uploadHandle struct {
	fs          afero.Fs
	path        string
	name        string
	size        int64
	contentType string
}

func (h uploadHandle) Name() string        { return h.name }
func (h uploadHandle) Size() int64         { return h.size }
func (h uploadHandle) ContentType() string { return h.contentType }
func (h uploadHandle) Open() (io.ReadCloser, error) {
	return h.fs.Open(h.path)
}

// receive stores all files of the "files" field of a multipart request.
func (sp *spool) receive(r *http.Request) ([]player.SourceHandle, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: no files", errBadRequest)
	}
	handles := make([]player.SourceHandle, 0, len(headers))
	for _, header := range headers {
		handle, err := sp.store(header)
		if err != nil {
			return nil, err
		}
		handles = append(handles, handle)
	}
	return handles, nil
}

func (sp *spool) store(header *multipart.FileHeader) (uploadHandle, error) {
	src, err := header.Open()
	if err != nil {
		return uploadHandle{}, err
	}
	defer src.Close()

	name := path.Base(header.Filename)
	dir := "/" + uuid.NewString()
	if err := sp.fs.MkdirAll(dir, 0o755); err != nil {
		return uploadHandle{}, err
	}
	dst, err := sp.fs.Create(path.Join(dir, name))
	if err != nil {
		return uploadHandle{}, err
	}
	size, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return uploadHandle{}, fmt.Errorf("could not store upload %q: %w", name, err)
	}

	sp.lock.Lock()
	sp.paths[dir] = struct{}{}
	sp.lock.Unlock()
	return uploadHandle{
		fs:          sp.fs,
		path:        path.Join(dir, name),
		name:        name,
		size:        size,
		contentType: contentType(header),
	}, nil
}

// contentType returns the type the client declared for the file. The generic
// binary type says nothing, so the type is then derived from the name.
func contentType(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	if ct == "application/octet-stream" {
		return ""
	}
	return ct
}

// prune removes all uploads that are no longer in the playlist.
func (sp *spool) prune(state player.State) {
	inUse := map[string]struct{}{}
	for _, entry := range state.Playlist {
		if h, ok := entry.Handle.(uploadHandle); ok {
			inUse[path.Dir(h.path)] = struct{}{}
		}
	}
	sp.lock.Lock()
	defer sp.lock.Unlock()
	for dir := range sp.paths {
		if _, ok := inUse[dir]; ok {
			continue
		}
		if err := sp.fs.RemoveAll(dir); err != nil {
			log.Warnf("Could not remove upload %q: %v", dir, err)
			continue
		}
		delete(sp.paths, dir)
	}
}

func (sp *spool) len() int {
	sp.lock.Lock()
	defer sp.lock.Unlock()
	return len(sp.paths)
}
