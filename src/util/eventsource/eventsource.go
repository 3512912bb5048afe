package eventsource

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventSource writes server-sent events to a single client.
type EventSource struct {
	w       io.Writer
	flusher http.Flusher

	lock sync.Mutex
	id   uint64
}

// Begin writes the event stream headers. The stream ends when the request
// context is done.
func Begin(w http.ResponseWriter, r *http.Request) (*EventSource, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("could not start event source: response writer does not support flushing")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &EventSource{w: w, flusher: flusher}, nil
}

// Event writes a single named event.
func (es *EventSource) Event(event, body string) {
	es.lock.Lock()
	defer es.lock.Unlock()
	es.id++
	fmt.Fprintf(es.w, "id: %d\n", es.id)
	fmt.Fprintf(es.w, "event: %s\n", event)
	fmt.Fprintf(es.w, "data: %s\n\n", body)
	es.flusher.Flush()
}

// EventJSON writes a named event with a JSON encoded body.
func (es *EventSource) EventJSON(event string, body interface{}) {
	b, err := json.Marshal(body)
	if err != nil {
		log.Errorf("Could not marshal event %q: %v", event, err)
		return
	}
	es.Event(event, string(b))
}
