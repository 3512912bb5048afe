package resource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ErrNotFound is returned when a URL does not refer to a registered resource.
var ErrNotFound = errors.New("resource not found")

// A Handle provides the bytes of a resource. Every call to Open must return a
// fresh reader positioned at the start.
type Handle interface {
	Name() string
	ContentType() string
	Open() (io.ReadCloser, error)
}

type entry struct {
	handle  Handle
	mime    string
	created time.Time
}

// Server makes byte handles addressable by URL for as long as they are
// registered. Resources must be revoked once they are no longer needed.
type Server struct {
	urlRoot string

	lock      sync.RWMutex
	resources map[string]entry
}

// NewServer creates a server that hands out URLs below urlRoot. The root
// must end in a slash.
func NewServer(urlRoot string) *Server {
	return &Server{
		urlRoot:   urlRoot,
		resources: map[string]entry{},
	}
}

// Create registers a handle and returns the URL it can be fetched from. The
// mime argument is a hint which is used only if the handle does not report a
// content type itself.
func (sv *Server) Create(handle Handle, mime string) (string, error) {
	if handle == nil {
		return "", fmt.Errorf("unable to create resource: nil handle")
	}
	id := "blob-" + uuid.NewString()
	sv.lock.Lock()
	sv.resources[id] = entry{handle: handle, mime: mime, created: time.Now()}
	sv.lock.Unlock()
	url := sv.urlRoot + "blob/" + id
	log.WithFields(log.Fields{"url": url, "name": handle.Name()}).Debug("Created resource")
	return url, nil
}

// CreateText registers an in-memory body.
func (sv *Server) CreateText(name, mime string, body []byte) (string, error) {
	return sv.Create(textHandle{name: name, body: body}, mime)
}

// Revoke releases the resource at the URL. Handles implementing io.Closer are
// closed.
func (sv *Server) Revoke(url string) error {
	id := path.Base(url)
	sv.lock.Lock()
	res, ok := sv.resources[id]
	delete(sv.resources, id)
	sv.lock.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	log.WithField("url", url).Debug("Revoked resource")
	if closer, ok := res.handle.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Len returns the number of live resources.
func (sv *Server) Len() int {
	sv.lock.RLock()
	defer sv.lock.RUnlock()
	return len(sv.resources)
}

func (sv *Server) lookup(id string) (entry, bool) {
	sv.lock.RLock()
	defer sv.lock.RUnlock()
	res, ok := sv.resources[id]
	return res, ok
}

func (sv *Server) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	entry, ok := sv.lookup(path.Base(req.URL.Path))
	if !ok {
		http.NotFound(res, req)
		return
	}

	contentType := entry.handle.ContentType()
	if contentType == "" {
		contentType = entry.mime
	}
	if contentType != "" {
		res.Header().Set("Content-Type", contentType)
	}

	r, err := entry.handle.Open()
	if err != nil {
		log.Errorf("Could not open resource %q: %v", entry.handle.Name(), err)
		http.Error(res, "Could not open resource", http.StatusInternalServerError)
		return
	}
	defer r.Close()

	if rs, ok := r.(io.ReadSeeker); ok {
		http.ServeContent(res, req, entry.handle.Name(), entry.created, rs)
		return
	}
	if sized, ok := entry.handle.(interface{ Size() int64 }); ok && sized.Size() > 0 {
		res.Header().Set("Content-Length", strconv.FormatInt(sized.Size(), 10))
	}
	if req.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(res, r); err != nil && !isClosedConn(err) {
		log.Debugf("Error streaming resource %q: %v", entry.handle.Name(), err)
	}
}

func isClosedConn(err error) bool {
	return strings.Contains(err.Error(), "broken pipe") || strings.Contains(err.Error(), "connection reset")
}

type textHandle struct {
	name string
	body []byte
}

func (h textHandle) Name() string        { return h.name }
func (h textHandle) ContentType() string { return "" }
func (h textHandle) Size() int64         { return int64(len(h.body)) }
func (h textHandle) Open() (io.ReadCloser, error) {
	return readSeekNopCloser{bytes.NewReader(h.body)}, nil
}

type readSeekNopCloser struct {
	*bytes.Reader
}

func (readSeekNopCloser) Close() error { return nil }
